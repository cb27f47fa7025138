package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Observation is one persisted measurement of a pool. Depth columns are
// nullable: the tickers feed does not always carry order book depth.
type Observation struct {
	PoolID     string          `db:"pool_id"`
	Venue      string          `db:"venue"`
	Pair       string          `db:"pair"`
	ObservedAt time.Time       `db:"observed_at"`
	VolumeUSD  float64         `db:"volume_usd"`
	SpreadPct  float64         `db:"spread_pct"`
	Depth10Bps sql.NullFloat64 `db:"depth_10bps"`
	Depth1Pct  sql.NullFloat64 `db:"depth_1pct"`
	Depth5Pct  sql.NullFloat64 `db:"depth_5pct"`
}

// ObservationStore reads and writes pool observations.
type ObservationStore struct {
	db *sqlx.DB
}

const insertObservation = `
INSERT INTO pool_observations
	(pool_id, venue, pair, observed_at, volume_usd, spread_pct, depth_10bps, depth_1pct, depth_5pct)
VALUES
	(:pool_id, :venue, :pair, :observed_at, :volume_usd, :spread_pct, :depth_10bps, :depth_1pct, :depth_5pct)
ON CONFLICT (pool_id, observed_at) DO UPDATE SET
	volume_usd = EXCLUDED.volume_usd,
	spread_pct = EXCLUDED.spread_pct,
	depth_10bps = EXCLUDED.depth_10bps,
	depth_1pct = EXCLUDED.depth_1pct,
	depth_5pct = EXCLUDED.depth_5pct`

// SaveBatch upserts one cycle of observations in a single transaction.
func (s *ObservationStore) SaveBatch(ctx context.Context, observations []Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin observations tx: %w", err)
	}
	defer tx.Rollback()

	for _, obs := range observations {
		if _, err := tx.NamedExecContext(ctx, insertObservation, obs); err != nil {
			return fmt.Errorf("insert observation %s@%s: %w", obs.PoolID, obs.ObservedAt, err)
		}
	}

	return tx.Commit()
}

// LoadSince returns all observations at or after the cutoff, grouped by
// pool and ordered ascending by timestamp within each pool.
func (s *ObservationStore) LoadSince(ctx context.Context, cutoff time.Time) (map[string][]Observation, error) {
	var rows []Observation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT pool_id, venue, pair, observed_at, volume_usd, spread_pct, depth_10bps, depth_1pct, depth_5pct
		FROM pool_observations
		WHERE observed_at >= $1
		ORDER BY pool_id, observed_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	byPool := make(map[string][]Observation)
	for _, row := range rows {
		byPool[row.PoolID] = append(byPool[row.PoolID], row)
	}
	return byPool, nil
}
