package tracker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/slip-tracker/internal/matcher"
	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/repository"
)

type fakeFeed struct {
	events []models.EventRecord
	stats  map[string]float64
	err    error
}

func (f *fakeFeed) EventsInWindow(ctx context.Context, league models.League, window models.TimeWindow) ([]models.EventRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.EventRecord
	for _, e := range f.events {
		if window.Contains(e.StartTime) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeFeed) EventByID(ctx context.Context, league models.League, eventID string, day time.Time) (models.EventRecord, error) {
	if f.err != nil {
		return models.EventRecord{}, f.err
	}
	for _, e := range f.events {
		if e.EventID == eventID {
			return e, nil
		}
	}
	return models.EventRecord{}, models.ErrNotFound
}

func (f *fakeFeed) PlayerStat(ctx context.Context, league models.League, eventID, player, stat string) (float64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	v, ok := f.stats[player]
	return v, ok, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newService(t *testing.T, feed *fakeFeed, maxAttempts int) *Service {
	t.Helper()
	log := quietLogger()
	m := matcher.New(feed, matcher.Config{MatchThreshold: 0.6, MaxAttempts: maxAttempts}, log)
	return NewService(
		repository.NewMemorySlipRepository(),
		repository.NewMemoryTrackedBetRepository(),
		m,
		feed,
		Config{},
		log,
	)
}

func moneylineSlip(ingestedAt time.Time) *models.ParsedSlip {
	return &models.ParsedSlip{
		SlipID:       uuid.New(),
		SourceFormat: models.FormatFanDuel,
		Legs: []models.ParsedLeg{{
			LegID:        "leg-0-aaaaaaaaaaaa",
			League:       models.LeagueNFL,
			BetType:      models.BetTypeMoneyline,
			Participants: []string{"Chiefs", "Bills"},
			Odds:         -130,
			Confidence:   1.0,
		}},
		IngestedAt: ingestedAt,
	}
}

func TestTrackCreatesPendingBet(t *testing.T) {
	svc := newService(t, &fakeFeed{}, 2)
	ctx := context.Background()

	slip := moneylineSlip(time.Now().UTC())
	bet, err := svc.Track(ctx, slip)
	require.NoError(t, err)

	assert.Equal(t, slip.SlipID, bet.SlipID)
	assert.Equal(t, models.SettlementPending, bet.Status)
	require.Len(t, bet.Bindings, 1)
	assert.Equal(t, "leg-0-aaaaaaaaaaaa", bet.Bindings[0].LegID)
	assert.Equal(t, models.MatchStatusUnmatched, bet.Bindings[0].MatchStatus)
	assert.Equal(t, models.LegResultPending, bet.Bindings[0].Result)

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, bet.ID, got.ID)

	bySlip, err := svc.GetTrackedBetBySlip(ctx, slip.SlipID)
	require.NoError(t, err)
	assert.Equal(t, bet.ID, bySlip.ID)
}

func TestTrackStakeSourceSelection(t *testing.T) {
	ctx := context.Background()
	stakeA := decimal.RequireFromString("6.00")
	stakeB := decimal.RequireFromString("6.00")

	stakedSlip := func() *models.ParsedSlip {
		slip := moneylineSlip(time.Now().UTC())
		slip.Legs = append(slip.Legs, slip.Legs[0])
		slip.Legs[1].LegID = "leg-1-bbbbbbbbbbbb"
		slip.Legs[0].Stake = &stakeA
		slip.Legs[1].Stake = &stakeB
		slip.TotalStake = decimal.RequireFromString("10.00")
		slip.StakeInconsistent = true
		return slip
	}

	// default: the slip-level figure settles
	svc := newService(t, &fakeFeed{}, 2)
	bet, err := svc.Track(ctx, stakedSlip())
	require.NoError(t, err)
	assert.True(t, bet.Stake.Equal(decimal.RequireFromString("10.00")))

	// legs source: the summed per-leg stakes settle instead
	log := quietLogger()
	feed := &fakeFeed{}
	svc = NewService(
		repository.NewMemorySlipRepository(),
		repository.NewMemoryTrackedBetRepository(),
		matcher.New(feed, matcher.Config{MatchThreshold: 0.6, MaxAttempts: 2}, log),
		feed,
		Config{StakeSource: models.StakeSourceLegs},
		log,
	)
	bet, err = svc.Track(ctx, stakedSlip())
	require.NoError(t, err)
	assert.True(t, bet.Stake.Equal(decimal.RequireFromString("12.00")))
}

func TestRefreshBindsAndSettlesWin(t *testing.T) {
	now := time.Now().UTC()
	feed := &fakeFeed{
		events: []models.EventRecord{{
			EventID:      "401",
			League:       models.LeagueNFL,
			Participants: []string{"Bills", "Chiefs"},
			Scores:       []float64{20, 27},
			StartTime:    now.Add(2 * time.Hour),
			Status:       models.EventStatusFinal,
		}},
	}
	svc := newService(t, feed, 48)
	ctx := context.Background()

	bet, err := svc.Track(ctx, moneylineSlip(now))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementWon, got.Status)
	require.NotNil(t, got.SettledAt)
	assert.Equal(t, models.MatchStatusMatched, got.Bindings[0].MatchStatus)
	assert.Equal(t, "401", got.Bindings[0].EventID)
	assert.Equal(t, models.LegResultWon, got.Bindings[0].Result)
}

func TestRefreshLiveTransition(t *testing.T) {
	now := time.Now().UTC()
	feed := &fakeFeed{
		events: []models.EventRecord{{
			EventID:      "402",
			League:       models.LeagueNFL,
			Participants: []string{"Bills", "Chiefs"},
			Scores:       []float64{7, 3},
			StartTime:    now.Add(-time.Hour),
			Status:       models.EventStatusInProgress,
		}},
	}
	svc := newService(t, feed, 48)
	ctx := context.Background()

	bet, err := svc.Track(ctx, moneylineSlip(now))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementLive, got.Status)
	assert.Equal(t, models.LegResultPending, got.Bindings[0].Result)
	assert.Nil(t, got.SettledAt)
}

func TestRefreshExhaustsToUnmatchable(t *testing.T) {
	feed := &fakeFeed{} // no events at all
	svc := newService(t, feed, 1)
	ctx := context.Background()

	bet, err := svc.Track(ctx, moneylineSlip(time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementUnmatchable, got.Status)
	assert.Equal(t, models.MatchStatusExpired, got.Bindings[0].MatchStatus)
	require.NotNil(t, got.SettledAt)
}

func TestRefreshFeedErrorKeepsPending(t *testing.T) {
	feed := &fakeFeed{err: models.ErrMatchTimeout}
	svc := newService(t, feed, 1)
	ctx := context.Background()

	bet, err := svc.Track(ctx, moneylineSlip(time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPending, got.Status)
	// a feed failure must not consume the single match attempt
	assert.Equal(t, 0, got.Bindings[0].Attempts)
	assert.Equal(t, models.MatchStatusUnmatched, got.Bindings[0].MatchStatus)
}

func TestRefreshPropTracksLiveValue(t *testing.T) {
	now := time.Now().UTC()
	line := 285.5
	feed := &fakeFeed{
		events: []models.EventRecord{{
			EventID:      "403",
			League:       models.LeagueNFL,
			Participants: []string{"Bills", "Chiefs"},
			Scores:       []float64{10, 14},
			StartTime:    now.Add(-time.Hour),
			Status:       models.EventStatusInProgress,
		}},
		stats: map[string]float64{"Patrick Mahomes": 150},
	}
	svc := newService(t, feed, 48)
	ctx := context.Background()

	slip := &models.ParsedSlip{
		SlipID:       uuid.New(),
		SourceFormat: models.FormatHardRock,
		Legs: []models.ParsedLeg{{
			LegID:        "leg-0-bbbbbbbbbbbb",
			League:       models.LeagueNFL,
			BetType:      models.BetTypeProp,
			Participants: []string{"Patrick Mahomes"},
			Stat:         "passingYards",
			Side:         models.SideOver,
			Line:         &line,
			Odds:         -115,
			RawBlock:     "OVER 285.5 -115\nPatrick Mahomes - Passing Yards\nChiefs vs Bills",
		}},
		IngestedAt: now,
	}
	bet, err := svc.Track(ctx, slip)
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementLive, got.Status)
	require.NotNil(t, got.Bindings[0].CurrentValue)
	assert.Equal(t, 150.0, *got.Bindings[0].CurrentValue)
	assert.Equal(t, models.LegResultPending, got.Bindings[0].Result)

	// final whistle: the line clears and the leg wins
	feed.events[0].Status = models.EventStatusFinal
	feed.stats["Patrick Mahomes"] = 301

	require.NoError(t, svc.RefreshAll(ctx))

	got, err = svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementWon, got.Status)
	assert.Equal(t, models.LegResultWon, got.Bindings[0].Result)
}

func TestRefreshVoidsAbandonedEvent(t *testing.T) {
	now := time.Now().UTC()
	feed := &fakeFeed{
		events: []models.EventRecord{{
			EventID:      "404",
			League:       models.LeagueNFL,
			Participants: []string{"Bills", "Chiefs"},
			StartTime:    now.Add(2 * time.Hour),
			Status:       models.EventStatusScheduled,
		}},
	}
	svc := newService(t, feed, 48)
	ctx := context.Background()

	bet, err := svc.Track(ctx, moneylineSlip(now))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))
	feed.events[0].Status = models.EventStatusCancelled
	require.NoError(t, svc.RefreshAll(ctx))

	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementVoid, got.Status)
	assert.Equal(t, models.LegResultVoid, got.Bindings[0].Result)
}

func TestRefreshParlayLostLegLosesSlip(t *testing.T) {
	now := time.Now().UTC()
	feed := &fakeFeed{
		events: []models.EventRecord{
			{
				EventID:      "405",
				League:       models.LeagueNFL,
				Participants: []string{"Bills", "Chiefs"},
				Scores:       []float64{31, 10},
				StartTime:    now.Add(time.Hour),
				Status:       models.EventStatusFinal,
			},
			{
				EventID:      "406",
				League:       models.LeagueNBA,
				Participants: []string{"Celtics", "Lakers"},
				Scores:       []float64{100, 90},
				StartTime:    now.Add(3 * time.Hour),
				Status:       models.EventStatusInProgress,
			},
		},
	}
	svc := newService(t, feed, 48)
	ctx := context.Background()

	slip := &models.ParsedSlip{
		SlipID:       uuid.New(),
		SourceFormat: models.FormatDraftKings,
		Legs: []models.ParsedLeg{
			{
				LegID:        "leg-0-cccccccccccc",
				League:       models.LeagueNFL,
				BetType:      models.BetTypeMoneyline,
				Participants: []string{"Chiefs", "Bills"},
				Odds:         -130,
			},
			{
				LegID:        "leg-1-dddddddddddd",
				League:       models.LeagueNBA,
				BetType:      models.BetTypeMoneyline,
				Participants: []string{"Lakers", "Celtics"},
				Odds:         110,
			},
		},
		IngestedAt: now,
	}
	bet, err := svc.Track(ctx, slip)
	require.NoError(t, err)

	require.NoError(t, svc.RefreshAll(ctx))

	// first leg lost; the parlay is dead even with the second event running
	got, err := svc.GetTrackedBet(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementLost, got.Status)
	assert.Equal(t, models.LegResultLost, got.Bindings[0].Result)
	assert.Equal(t, models.LegResultPending, got.Bindings[1].Result)
}

func TestRemoveTrackedBet(t *testing.T) {
	svc := newService(t, &fakeFeed{}, 2)
	ctx := context.Background()

	slip := moneylineSlip(time.Now().UTC())
	bet, err := svc.Track(ctx, slip)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTrackedBet(ctx, bet.ID))

	_, err = svc.GetTrackedBet(ctx, bet.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.True(t, errors.Is(svc.RemoveTrackedBet(ctx, bet.ID), models.ErrNotFound))
}

func TestRefreshCancelledContext(t *testing.T) {
	svc := newService(t, &fakeFeed{}, 2)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := svc.Track(ctx, moneylineSlip(time.Now().UTC()))
	require.NoError(t, err)

	cancel()
	assert.ErrorIs(t, svc.RefreshAll(ctx), context.Canceled)
}
