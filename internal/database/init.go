package database

import (
	"context"
	"fmt"

	"github.com/yourusername/slip-tracker/internal/config"
)

// schema is applied idempotently at startup. Legs, slips and bindings travel
// as JSONB documents; only the columns the daemon filters on are relational.
const schema = `
CREATE TABLE IF NOT EXISTS slips (
	id                 UUID PRIMARY KEY,
	source_format      TEXT NOT NULL,
	legs               JSONB NOT NULL,
	total_stake        NUMERIC NOT NULL DEFAULT 0,
	total_payout       NUMERIC,
	total_odds         INTEGER,
	stake_inconsistent BOOLEAN NOT NULL DEFAULT FALSE,
	ingested_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_slips_ingested_at ON slips (ingested_at DESC);

CREATE TABLE IF NOT EXISTS tracked_bets (
	id         UUID PRIMARY KEY,
	slip_id    UUID NOT NULL REFERENCES slips (id) ON DELETE CASCADE,
	slip       JSONB NOT NULL,
	bindings   JSONB NOT NULL,
	stake      NUMERIC(12, 2) NOT NULL DEFAULT 0,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	settled_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_tracked_bets_status ON tracked_bets (status, created_at);
CREATE INDEX IF NOT EXISTS idx_tracked_bets_slip_id ON tracked_bets (slip_id);
`

// Initialize creates a database connection pool and ensures the schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}
