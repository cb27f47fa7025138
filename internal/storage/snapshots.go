package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

// SnapshotStore persists scored result sets for the offline rank view.
type SnapshotStore struct {
	db *sqlx.DB
}

// SaveResults writes one snapshot's results.
func (s *SnapshotStore) SaveResults(ctx context.Context, snapshotID string, results []domain.CompositeResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		subs, err := json.Marshal(r.SubScores)
		if err != nil {
			return fmt.Errorf("marshal sub-scores for %s: %w", r.PoolID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO scored_snapshots
				(snapshot_id, pool_id, venue, pair, score, tier, sub_scores, volume_usd_24h, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (snapshot_id, pool_id) DO NOTHING`,
			snapshotID, r.PoolID, r.Venue, r.Pair, r.Score, r.Tier, subs, r.VolumeUSD24h, r.ComputedAt)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.PoolID, err)
		}
	}

	return tx.Commit()
}

// LatestResults loads the most recent snapshot's results and its id, or an
// empty id when nothing has been scored yet.
func (s *SnapshotStore) LatestResults(ctx context.Context) (string, []domain.CompositeResult, error) {
	var snapshotID string
	err := s.db.GetContext(ctx, &snapshotID, `
		SELECT snapshot_id FROM scored_snapshots
		ORDER BY computed_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("find latest snapshot: %w", err)
	}

	type row struct {
		PoolID       string    `db:"pool_id"`
		Venue        string    `db:"venue"`
		Pair         string    `db:"pair"`
		Score        float64   `db:"score"`
		Tier         string    `db:"tier"`
		SubScores    []byte    `db:"sub_scores"`
		VolumeUSD24h float64   `db:"volume_usd_24h"`
		ComputedAt   time.Time `db:"computed_at"`
	}

	var rows []row
	err = s.db.SelectContext(ctx, &rows, `
		SELECT pool_id, venue, pair, score, tier, sub_scores, volume_usd_24h, computed_at
		FROM scored_snapshots
		WHERE snapshot_id = $1
		ORDER BY pool_id`, snapshotID)
	if err != nil {
		return "", nil, fmt.Errorf("load snapshot %s: %w", snapshotID, err)
	}

	results := make([]domain.CompositeResult, 0, len(rows))
	for _, r := range rows {
		res := domain.CompositeResult{
			PoolID:       r.PoolID,
			Venue:        r.Venue,
			Pair:         r.Pair,
			Score:        r.Score,
			Tier:         r.Tier,
			VolumeUSD24h: r.VolumeUSD24h,
			ComputedAt:   r.ComputedAt,
		}
		if len(r.SubScores) > 0 {
			if err := json.Unmarshal(r.SubScores, &res.SubScores); err != nil {
				return "", nil, fmt.Errorf("unmarshal sub-scores for %s: %w", res.PoolID, err)
			}
		}
		results = append(results, res)
	}
	return snapshotID, results, nil
}
