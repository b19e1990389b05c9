package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/slip-tracker/internal/database"
	"github.com/yourusername/slip-tracker/internal/models"
)

// PostgresTrackedBetRepository implements TrackedBetRepository for PostgreSQL.
// The embedded slip and the leg bindings travel as JSONB documents; the
// settlement status is a plain column so the refresh pass can filter on it.
type PostgresTrackedBetRepository struct {
	db *database.DB
}

// NewPostgresTrackedBetRepository creates a new tracked bet repository
func NewPostgresTrackedBetRepository(db *database.DB) TrackedBetRepository {
	return &PostgresTrackedBetRepository{db: db}
}

// Create inserts a tracked bet
func (r *PostgresTrackedBetRepository) Create(ctx context.Context, bet *models.TrackedBet) error {
	slip, bindings, err := encodeBet(bet)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tracked_bets (id, slip_id, slip, bindings, stake, status, created_at, updated_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.SlipID, slip, bindings, bet.Stake, bet.Status, bet.CreatedAt, bet.UpdatedAt, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tracked bet: %w", err)
	}
	return nil
}

// GetByID retrieves a tracked bet by ID
func (r *PostgresTrackedBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedBet, error) {
	bet, err := scanTrackedBet(r.db.GetPool().QueryRow(ctx, selectTrackedBet+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked bet: %w", err)
	}
	return bet, nil
}

// GetBySlipID retrieves the tracked bet created for a slip
func (r *PostgresTrackedBetRepository) GetBySlipID(ctx context.Context, slipID uuid.UUID) (*models.TrackedBet, error) {
	bet, err := scanTrackedBet(r.db.GetPool().QueryRow(ctx, selectTrackedBet+` WHERE slip_id = $1`, slipID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked bet by slip: %w", err)
	}
	return bet, nil
}

// GetActive retrieves bets not yet in a terminal state, oldest first
func (r *PostgresTrackedBetRepository) GetActive(ctx context.Context) ([]*models.TrackedBet, error) {
	query := selectTrackedBet + `
		WHERE status IN ('PENDING', 'LIVE')
		ORDER BY created_at ASC
	`
	return r.queryBets(ctx, query)
}

// List retrieves tracked bets, newest first
func (r *PostgresTrackedBetRepository) List(ctx context.Context, limit int) ([]*models.TrackedBet, error) {
	query := selectTrackedBet + `
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.queryBets(ctx, query, limit)
}

// Update persists binding and settlement changes
func (r *PostgresTrackedBetRepository) Update(ctx context.Context, bet *models.TrackedBet) error {
	slip, bindings, err := encodeBet(bet)
	if err != nil {
		return err
	}

	query := `
		UPDATE tracked_bets SET
			slip = $2, bindings = $3, stake = $4, status = $5, updated_at = $6, settled_at = $7
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, slip, bindings, bet.Stake, bet.Status, bet.UpdatedAt, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tracked bet: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a tracked bet
func (r *PostgresTrackedBetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	commandTag, err := r.db.GetPool().Exec(ctx, `DELETE FROM tracked_bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tracked bet: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const selectTrackedBet = `
	SELECT id, slip_id, slip, bindings, stake, status, created_at, updated_at, settled_at
	FROM tracked_bets
`

func (r *PostgresTrackedBetRepository) queryBets(ctx context.Context, query string, args ...interface{}) ([]*models.TrackedBet, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.TrackedBet
	for rows.Next() {
		bet, err := scanTrackedBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func encodeBet(bet *models.TrackedBet) (slip, bindings []byte, err error) {
	slip, err = json.Marshal(bet.Slip)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode slip: %w", err)
	}
	bindings, err = json.Marshal(bet.Bindings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode bindings: %w", err)
	}
	return slip, bindings, nil
}

func scanTrackedBet(row pgx.Row) (*models.TrackedBet, error) {
	bet := &models.TrackedBet{}
	var slip, bindings []byte

	err := row.Scan(
		&bet.ID, &bet.SlipID, &slip, &bindings, &bet.Stake, &bet.Status,
		&bet.CreatedAt, &bet.UpdatedAt, &bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slip, &bet.Slip); err != nil {
		return nil, fmt.Errorf("failed to decode slip: %w", err)
	}
	if err := json.Unmarshal(bindings, &bet.Bindings); err != nil {
		return nil, fmt.Errorf("failed to decode bindings: %w", err)
	}
	return bet, nil
}
