package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/slip-tracker/internal/models"
)

func finalEvent(away, home string, awayScore, homeScore float64) models.EventRecord {
	return models.EventRecord{
		EventID:      "401",
		League:       models.LeagueNBA,
		Participants: []string{away, home},
		Scores:       []float64{awayScore, homeScore},
		Status:       models.EventStatusFinal,
	}
}

func legWith(betType models.BetType, participants []string, side models.Side, line *float64) models.ParsedLeg {
	return models.ParsedLeg{
		LegID:        "leg-0-abc",
		League:       models.LeagueNBA,
		BetType:      betType,
		Participants: participants,
		Side:         side,
		Line:         line,
		Odds:         -110,
	}
}

func linePtr(v float64) *float64 { return &v }

func TestSettleSpread(t *testing.T) {
	tests := []struct {
		name   string
		line   float64
		picked float64
		opp    float64
		want   models.LegResult
	}{
		{"favorite covers", -5.5, 110, 100, models.LegResultWon},
		{"favorite wins but misses cover", -5.5, 104, 100, models.LegResultLost},
		{"underdog covers on a loss", 5.5, 100, 104, models.LegResultWon},
		{"exact line pushes", -4, 104, 100, models.LegResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := legWith(models.BetTypeSpread, []string{"Lakers"}, models.SideNone, linePtr(tt.line))
			event := finalEvent("Lakers", "Celtics", tt.picked, tt.opp)
			assert.Equal(t, tt.want, SettleLeg(leg, event, 0, false))
		})
	}
}

func TestSettleTotal(t *testing.T) {
	tests := []struct {
		name  string
		side  models.Side
		line  float64
		away  float64
		home  float64
		want  models.LegResult
	}{
		{"over hits", models.SideOver, 224.5, 115, 112, models.LegResultWon},
		{"over misses", models.SideOver, 224.5, 110, 112, models.LegResultLost},
		{"under hits", models.SideUnder, 224.5, 110, 112, models.LegResultWon},
		{"exact total pushes", models.SideOver, 224, 112, 112, models.LegResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := legWith(models.BetTypeTotal, []string{"Lakers @ Celtics"}, tt.side, linePtr(tt.line))
			event := finalEvent("Lakers", "Celtics", tt.away, tt.home)
			assert.Equal(t, tt.want, SettleLeg(leg, event, 0, false))
		})
	}
}

func TestSettleMoneyline(t *testing.T) {
	tests := []struct {
		name   string
		picked string
		away   float64
		home   float64
		want   models.LegResult
	}{
		{"picked side wins", "Lakers", 110, 100, models.LegResultWon},
		{"picked side loses", "Lakers", 100, 110, models.LegResultLost},
		{"draw pushes", "Lakers", 100, 100, models.LegResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := legWith(models.BetTypeMoneyline, []string{tt.picked, "Celtics"}, models.SideNone, nil)
			event := finalEvent("Lakers", "Celtics", tt.away, tt.home)
			assert.Equal(t, tt.want, SettleLeg(leg, event, 0, false))
		})
	}
}

func TestSettleProp(t *testing.T) {
	tests := []struct {
		name      string
		side      models.Side
		line      *float64
		stat      float64
		statFound bool
		want      models.LegResult
	}{
		{"over hits", models.SideOver, linePtr(285.5), 301, true, models.LegResultWon},
		{"over misses", models.SideOver, linePtr(285.5), 244, true, models.LegResultLost},
		{"under hits", models.SideUnder, linePtr(285.5), 244, true, models.LegResultWon},
		{"exact line pushes", models.SideOver, linePtr(300), 300, true, models.LegResultPush},
		{"anytime scorer hits", models.SideYes, nil, 1, true, models.LegResultWon},
		{"anytime scorer misses", models.SideYes, nil, 0, true, models.LegResultLost},
		{"stat never produced voids", models.SideOver, linePtr(285.5), 0, false, models.LegResultVoid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := legWith(models.BetTypeProp, []string{"Patrick Mahomes"}, tt.side, tt.line)
			event := finalEvent("Chiefs", "Bills", 27, 20)
			assert.Equal(t, tt.want, SettleLeg(leg, event, tt.stat, tt.statFound))
		})
	}
}

func TestSettleLifecycleGuards(t *testing.T) {
	leg := legWith(models.BetTypeSpread, []string{"Lakers"}, models.SideNone, linePtr(-5.5))

	inProgress := finalEvent("Lakers", "Celtics", 55, 50)
	inProgress.Status = models.EventStatusInProgress
	assert.Equal(t, models.LegResultPending, SettleLeg(leg, inProgress, 0, false))

	cancelled := finalEvent("Lakers", "Celtics", 0, 0)
	cancelled.Status = models.EventStatusCancelled
	assert.Equal(t, models.LegResultVoid, SettleLeg(leg, cancelled, 0, false))

	postponed := finalEvent("Lakers", "Celtics", 0, 0)
	postponed.Status = models.EventStatusPostponed
	assert.Equal(t, models.LegResultVoid, SettleLeg(leg, postponed, 0, false))
}

func TestRollUpSlip(t *testing.T) {
	b := func(results ...models.LegResult) []models.LegEventBinding {
		out := make([]models.LegEventBinding, len(results))
		for i, r := range results {
			out[i] = models.LegEventBinding{Result: r}
		}
		return out
	}

	tests := []struct {
		name string
		in   []models.LegEventBinding
		want models.SettlementStatus
	}{
		{"all won", b(models.LegResultWon, models.LegResultWon), models.SettlementWon},
		{"any lost loses", b(models.LegResultWon, models.LegResultLost), models.SettlementLost},
		{"pending stays live", b(models.LegResultWon, models.LegResultPending), models.SettlementLive},
		{"lost beats pending", b(models.LegResultPending, models.LegResultLost), models.SettlementLost},
		{"push drops out of parlay", b(models.LegResultWon, models.LegResultPush), models.SettlementWon},
		{"all push", b(models.LegResultPush, models.LegResultPush), models.SettlementPushed},
		{"all void", b(models.LegResultVoid, models.LegResultVoid), models.SettlementVoid},
		{"no bindings", nil, models.SettlementPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RollUpSlip(tt.in))
		})
	}
}
