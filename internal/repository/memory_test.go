package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/slip-tracker/internal/models"
)

func trackedBet(status models.SettlementStatus, createdAt time.Time) *models.TrackedBet {
	slipID := uuid.New()
	return &models.TrackedBet{
		ID:     uuid.New(),
		SlipID: slipID,
		Slip: models.ParsedSlip{
			SlipID:       slipID,
			SourceFormat: models.FormatFanDuel,
			Legs: []models.ParsedLeg{{
				LegID:        "leg-0-abc",
				BetType:      models.BetTypeMoneyline,
				Participants: []string{"Chiefs"},
				Odds:         120,
			}},
			IngestedAt: createdAt,
		},
		Bindings: []models.LegEventBinding{{
			LegID:       "leg-0-abc",
			MatchStatus: models.MatchStatusUnmatched,
			Result:      models.LegResultPending,
		}},
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMemoryTrackedBetCRUD(t *testing.T) {
	repo := NewMemoryTrackedBetRepository()
	ctx := context.Background()

	bet := trackedBet(models.SettlementPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, bet))

	got, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, bet.ID, got.ID)
	assert.Equal(t, models.SettlementPending, got.Status)

	bySlip, err := repo.GetBySlipID(ctx, bet.SlipID)
	require.NoError(t, err)
	assert.Equal(t, bet.ID, bySlip.ID)

	got.Status = models.SettlementWon
	require.NoError(t, repo.Update(ctx, got))
	updated, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementWon, updated.Status)

	require.NoError(t, repo.Delete(ctx, bet.ID))
	_, err = repo.GetByID(ctx, bet.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, bet.ID), models.ErrNotFound)
}

func TestMemoryTrackedBetGetActiveSkipsTerminal(t *testing.T) {
	repo := NewMemoryTrackedBetRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	older := trackedBet(models.SettlementPending, base.Add(-2*time.Hour))
	newer := trackedBet(models.SettlementLive, base.Add(-1*time.Hour))
	settled := trackedBet(models.SettlementWon, base)

	for _, b := range []*models.TrackedBet{newer, settled, older} {
		require.NoError(t, repo.Create(ctx, b))
	}

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	// oldest first for fair refresh scheduling
	assert.Equal(t, older.ID, active[0].ID)
	assert.Equal(t, newer.ID, active[1].ID)
}

func TestMemoryTrackedBetCloneIsolation(t *testing.T) {
	repo := NewMemoryTrackedBetRepository()
	ctx := context.Background()

	bet := trackedBet(models.SettlementPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, bet))

	got, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	got.Bindings[0].MatchStatus = models.MatchStatusMatched

	again, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUnmatched, again.Bindings[0].MatchStatus)
}

func TestMemorySlipRepository(t *testing.T) {
	repo := NewMemorySlipRepository()
	ctx := context.Background()

	first := &models.ParsedSlip{SlipID: uuid.New(), IngestedAt: time.Now().UTC().Add(-time.Hour)}
	second := &models.ParsedSlip{SlipID: uuid.New(), IngestedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetByID(ctx, first.SlipID)
	require.NoError(t, err)
	assert.Equal(t, first.SlipID, got.SlipID)

	recent, err := repo.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.SlipID, recent[0].SlipID)

	require.NoError(t, repo.Delete(ctx, first.SlipID))
	_, err = repo.GetByID(ctx, first.SlipID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
