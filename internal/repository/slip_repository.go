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

// PostgresSlipRepository implements SlipRepository for PostgreSQL. Legs are
// stored as JSONB: they are always read and written as a unit with the slip.
type PostgresSlipRepository struct {
	db *database.DB
}

// NewPostgresSlipRepository creates a new slip repository
func NewPostgresSlipRepository(db *database.DB) SlipRepository {
	return &PostgresSlipRepository{db: db}
}

// Create inserts a parsed slip
func (r *PostgresSlipRepository) Create(ctx context.Context, slip *models.ParsedSlip) error {
	legs, err := json.Marshal(slip.Legs)
	if err != nil {
		return fmt.Errorf("failed to encode legs: %w", err)
	}

	query := `
		INSERT INTO slips (id, source_format, legs, total_stake, total_payout, total_odds,
		                   stake_inconsistent, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		slip.SlipID, slip.SourceFormat, legs, slip.TotalStake, slip.TotalPayout,
		slip.TotalOdds, slip.StakeInconsistent, slip.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slip: %w", err)
	}
	return nil
}

// GetByID retrieves a slip by ID
func (r *PostgresSlipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ParsedSlip, error) {
	query := `
		SELECT id, source_format, legs, total_stake, total_payout, total_odds,
		       stake_inconsistent, ingested_at
		FROM slips WHERE id = $1
	`

	slip, err := scanSlip(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slip: %w", err)
	}
	return slip, nil
}

// GetRecent retrieves the most recently ingested slips
func (r *PostgresSlipRepository) GetRecent(ctx context.Context, limit int) ([]*models.ParsedSlip, error) {
	query := `
		SELECT id, source_format, legs, total_stake, total_payout, total_odds,
		       stake_inconsistent, ingested_at
		FROM slips
		ORDER BY ingested_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent slips: %w", err)
	}
	defer rows.Close()

	var slips []*models.ParsedSlip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slip: %w", err)
		}
		slips = append(slips, slip)
	}
	return slips, rows.Err()
}

// Delete removes a slip
func (r *PostgresSlipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	commandTag, err := r.db.GetPool().Exec(ctx, `DELETE FROM slips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slip: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanSlip(row pgx.Row) (*models.ParsedSlip, error) {
	slip := &models.ParsedSlip{}
	var legs []byte

	err := row.Scan(
		&slip.SlipID, &slip.SourceFormat, &legs, &slip.TotalStake, &slip.TotalPayout,
		&slip.TotalOdds, &slip.StakeInconsistent, &slip.IngestedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(legs, &slip.Legs); err != nil {
		return nil, fmt.Errorf("failed to decode legs: %w", err)
	}
	return slip, nil
}
