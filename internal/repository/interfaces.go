package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/slip-tracker/internal/models"
)

// SlipRepository defines the interface for parsed slip persistence
type SlipRepository interface {
	Create(ctx context.Context, slip *models.ParsedSlip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ParsedSlip, error)
	GetRecent(ctx context.Context, limit int) ([]*models.ParsedSlip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TrackedBetRepository defines the interface for tracked bet persistence
type TrackedBetRepository interface {
	Create(ctx context.Context, bet *models.TrackedBet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedBet, error)
	GetBySlipID(ctx context.Context, slipID uuid.UUID) (*models.TrackedBet, error)
	// GetActive returns bets not yet in a terminal settlement state, oldest
	// first, for the matcher's refresh pass.
	GetActive(ctx context.Context) ([]*models.TrackedBet, error)
	List(ctx context.Context, limit int) ([]*models.TrackedBet, error)
	Update(ctx context.Context, bet *models.TrackedBet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
