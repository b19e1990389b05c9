package eventfeed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/slip-tracker/internal/models"
)

// parseScoreboard converts a scoreboard payload into event records. Events the
// tracker cannot anchor (no competitors, unparseable start time) are skipped
// rather than failing the whole payload.
func parseScoreboard(league models.League, payload scoreboardResponse) []models.EventRecord {
	records := make([]models.EventRecord, 0, len(payload.Events))
	for _, ev := range payload.Events {
		rec, err := parseEvent(league, ev)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// parseEvent maps one feed event onto an EventRecord. Participants come back
// away first, home second, matching the "Away @ Home" slip convention, with
// scores index aligned.
func parseEvent(league models.League, ev apiEvent) (models.EventRecord, error) {
	if len(ev.Competitions) == 0 || len(ev.Competitions[0].Competitors) == 0 {
		return models.EventRecord{}, fmt.Errorf("event %s: no competitors", ev.ID)
	}

	start, err := time.Parse(time.RFC3339, ev.Date)
	if err != nil {
		return models.EventRecord{}, fmt.Errorf("event %s: start time: %w", ev.ID, err)
	}

	competitors := ev.Competitions[0].Competitors
	participants := make([]string, 0, len(competitors))
	scores := make([]float64, 0, len(competitors))

	// away before home regardless of feed order
	for _, side := range []string{"away", "home"} {
		for _, comp := range competitors {
			if comp.HomeAway != side {
				continue
			}
			participants = append(participants, comp.Team.ShortDisplayName)
			scores = append(scores, parseScore(comp.Score))
		}
	}
	// individual sports carry no home/away designation
	if len(participants) == 0 {
		for _, comp := range competitors {
			participants = append(participants, comp.Team.ShortDisplayName)
			scores = append(scores, parseScore(comp.Score))
		}
	}

	return models.EventRecord{
		EventID:      ev.ID,
		League:       league,
		Participants: participants,
		Scores:       scores,
		StartTime:    start.UTC(),
		Status:       parseStatus(ev.Status.Type),
		StatusDetail: ev.Status.Type.Detail,
	}, nil
}

func parseScore(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseStatus maps the feed's state machine onto the tracker's. Abandoned
// games surface as post/pre states with a telltale detail string.
func parseStatus(st apiStatusType) models.EventStatus {
	detail := strings.ToLower(st.Detail)
	switch {
	case strings.Contains(detail, "postponed"):
		return models.EventStatusPostponed
	case strings.Contains(detail, "cancel"):
		return models.EventStatusCancelled
	}

	switch st.State {
	case "pre":
		return models.EventStatusScheduled
	case "in":
		return models.EventStatusInProgress
	case "post":
		if st.Completed {
			return models.EventStatusFinal
		}
		return models.EventStatusInProgress
	}
	return models.EventStatusScheduled
}
