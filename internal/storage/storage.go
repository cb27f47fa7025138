// Package storage persists per-cycle pool observations and scored
// snapshots in Postgres. Observations accumulate into the time series the
// scorers consume; snapshots back the offline rank view.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// DB wraps the sqlx handle with the schema bootstrap.
type DB struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string, log zerolog.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &DB{db: db, log: log.With().Str("component", "storage").Logger()}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS pool_observations (
	pool_id        TEXT             NOT NULL,
	venue          TEXT             NOT NULL,
	pair           TEXT             NOT NULL,
	observed_at    TIMESTAMPTZ      NOT NULL,
	volume_usd     DOUBLE PRECISION NOT NULL,
	spread_pct     DOUBLE PRECISION NOT NULL,
	depth_10bps    DOUBLE PRECISION,
	depth_1pct     DOUBLE PRECISION,
	depth_5pct     DOUBLE PRECISION,
	PRIMARY KEY (pool_id, observed_at)
);

CREATE INDEX IF NOT EXISTS idx_pool_observations_observed_at
	ON pool_observations (observed_at);

CREATE TABLE IF NOT EXISTS scored_snapshots (
	snapshot_id    TEXT             NOT NULL,
	pool_id        TEXT             NOT NULL,
	venue          TEXT             NOT NULL,
	pair           TEXT             NOT NULL,
	score          DOUBLE PRECISION NOT NULL,
	tier           TEXT             NOT NULL,
	sub_scores     JSONB            NOT NULL,
	volume_usd_24h DOUBLE PRECISION NOT NULL,
	computed_at    TIMESTAMPTZ      NOT NULL,
	PRIMARY KEY (snapshot_id, pool_id)
);

CREATE INDEX IF NOT EXISTS idx_scored_snapshots_computed_at
	ON scored_snapshots (computed_at);
`

// Migrate creates the schema when missing.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	d.log.Debug().Msg("schema ready")
	return nil
}

// Observations returns the observation store.
func (d *DB) Observations() *ObservationStore {
	return &ObservationStore{db: d.db}
}

// Snapshots returns the scored snapshot store.
func (d *DB) Snapshots() *SnapshotStore {
	return &SnapshotStore{db: d.db}
}
