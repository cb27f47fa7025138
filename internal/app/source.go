package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/cache"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/engine"
	httpapi "github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/interfaces/http"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/storage"
)

// SnapshotSource serves the latest report, cache first, snapshot store as
// fallback. Store-backed reports carry identity-only metrics; filters that
// predicate on the pair still work, history-based ones see empty series.
type SnapshotSource struct {
	cache *cache.Cache
	store *storage.SnapshotStore
	log   zerolog.Logger
}

var _ httpapi.Source = (*SnapshotSource)(nil)

// NewSnapshotSource builds the read-side source. Cache may be nil.
func NewSnapshotSource(c *cache.Cache, store *storage.SnapshotStore, log zerolog.Logger) *SnapshotSource {
	return &SnapshotSource{
		cache: c,
		store: store,
		log:   log.With().Str("component", "snapshot_source").Logger(),
	}
}

// Latest implements httpapi.Source.
func (s *SnapshotSource) Latest(ctx context.Context) (engine.Report, error) {
	if s.cache != nil {
		report, err := s.cache.GetLatest(ctx)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Msg("cache read failed, falling back to store")
		}
	}

	snapshotID, results, err := s.store.LatestResults(ctx)
	if err != nil {
		return engine.Report{}, err
	}
	if snapshotID == "" {
		return engine.Report{}, httpapi.ErrNoSnapshot
	}

	report := engine.Report{
		SnapshotID: snapshotID,
		Pools:      make([]domain.ScoredPool, 0, len(results)),
	}
	for _, r := range results {
		report.ComputedAt = r.ComputedAt
		report.Pools = append(report.Pools, domain.ScoredPool{
			Metrics: domain.PoolMetrics{PoolID: r.PoolID, Venue: r.Venue, Pair: r.Pair},
			Result:  r,
		})
	}
	return report, nil
}
