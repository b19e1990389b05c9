package models

import "time"

// EventStatus represents the lifecycle state of a live event as reported by
// the external feed.
type EventStatus string

const (
	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusFinal      EventStatus = "final"
	EventStatusCancelled  EventStatus = "cancelled"
	EventStatusPostponed  EventStatus = "postponed"
)

// EventRecord is the read-only view of a live event supplied by the external
// sports-data provider. Scores are aligned with Participants and remain empty
// until the event goes live.
type EventRecord struct {
	EventID      string      `json:"event_id"`
	League       League      `json:"league"`
	Participants []string    `json:"participants"`
	Scores       []float64   `json:"scores,omitempty"`
	StartTime    time.Time   `json:"start_time"`
	Status       EventStatus `json:"status"`
	StatusDetail string      `json:"status_detail,omitempty"`
}

// IsFinished reports whether the event has reached a finished status.
func (e *EventRecord) IsFinished() bool {
	return e.Status == EventStatusFinal
}

// IsAbandoned reports whether the feed cancelled or indefinitely postponed
// the event. Bets on abandoned events settle VOID.
func (e *EventRecord) IsAbandoned() bool {
	return e.Status == EventStatusCancelled || e.Status == EventStatusPostponed
}

// ScoreFor returns the score for the named participant.
func (e *EventRecord) ScoreFor(participant string) (float64, bool) {
	for i, p := range e.Participants {
		if p == participant && i < len(e.Scores) {
			return e.Scores[i], true
		}
	}
	return 0, false
}

// TotalScore returns the combined score across all participants.
func (e *EventRecord) TotalScore() (float64, bool) {
	if len(e.Scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range e.Scores {
		sum += s
	}
	return sum, true
}

// TimeWindow bounds an event directory query.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}
