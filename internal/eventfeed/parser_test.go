package eventfeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/slip-tracker/internal/models"
)

func apiGame(id, date, state, detail string, completed bool) apiEvent {
	return apiEvent{
		ID:     id,
		Date:   date,
		Status: apiEventStatus{Type: apiStatusType{State: state, Detail: detail, Completed: completed}},
		Competitions: []apiCompetition{{
			Competitors: []apiCompetitor{
				{HomeAway: "home", Score: "102", Team: apiTeam{ShortDisplayName: "Celtics"}},
				{HomeAway: "away", Score: "97", Team: apiTeam{ShortDisplayName: "Lakers"}},
			},
		}},
	}
}

func TestParseEventAwayFirst(t *testing.T) {
	rec, err := parseEvent(models.LeagueNBA, apiGame("401", "2025-11-02T23:30:00Z", "in", "3rd Quarter", false))
	require.NoError(t, err)

	// away before home regardless of feed order, scores index aligned
	assert.Equal(t, []string{"Lakers", "Celtics"}, rec.Participants)
	assert.Equal(t, []float64{97, 102}, rec.Scores)
	assert.Equal(t, "401", rec.EventID)
	assert.Equal(t, models.LeagueNBA, rec.League)
	assert.Equal(t, time.Date(2025, 11, 2, 23, 30, 0, 0, time.UTC), rec.StartTime)
	assert.Equal(t, models.EventStatusInProgress, rec.Status)
}

func TestParseStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		state     string
		detail    string
		completed bool
		want      models.EventStatus
	}{
		{"scheduled", "pre", "Sun 7:30 PM", false, models.EventStatusScheduled},
		{"in progress", "in", "2nd Half", false, models.EventStatusInProgress},
		{"final", "post", "Final", true, models.EventStatusFinal},
		{"post but not completed", "post", "End of 4th", false, models.EventStatusInProgress},
		{"postponed overrides state", "pre", "Postponed", false, models.EventStatusPostponed},
		{"cancelled overrides state", "post", "Canceled", false, models.EventStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStatus(apiStatusType{State: tt.state, Detail: tt.detail, Completed: tt.completed})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScoreboardSkipsBrokenEvents(t *testing.T) {
	payload := scoreboardResponse{Events: []apiEvent{
		apiGame("401", "2025-11-02T23:30:00Z", "pre", "", false),
		{ID: "402", Date: "not a timestamp", Competitions: []apiCompetition{{Competitors: []apiCompetitor{{Team: apiTeam{ShortDisplayName: "Heat"}}}}}},
		{ID: "403", Date: "2025-11-02T23:30:00Z"}, // no competitors
	}}

	records := parseScoreboard(models.LeagueNBA, payload)
	require.Len(t, records, 1)
	assert.Equal(t, "401", records[0].EventID)
}

func TestParseEventIndividualSport(t *testing.T) {
	ev := apiEvent{
		ID:   "600",
		Date: "2025-11-02T23:30:00Z",
		Competitions: []apiCompetition{{
			Competitors: []apiCompetitor{
				{Score: "", Team: apiTeam{ShortDisplayName: "Jon Jones"}},
				{Score: "", Team: apiTeam{ShortDisplayName: "Stipe Miocic"}},
			},
		}},
	}

	rec, err := parseEvent(models.LeagueUFC, ev)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jon Jones", "Stipe Miocic"}, rec.Participants)
	assert.Equal(t, []float64{0, 0}, rec.Scores)
}
