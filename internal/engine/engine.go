// Package engine runs one scoring pass over an immutable snapshot of pool
// metrics: normalize, score the five factors, combine, classify.
package engine

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/metrics"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/composite"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/factors"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// ExcludedPool records one pool rejected from a pass, with the reason.
// Exclusions are always reported explicitly, never a silent gap.
type ExcludedPool struct {
	PoolID string `json:"pool_id"`
	Venue  string `json:"venue"`
	Reason string `json:"reason"`
}

// Report is the complete output of one scoring pass.
type Report struct {
	SnapshotID string              `json:"snapshot_id"`
	ComputedAt time.Time           `json:"computed_at"`
	Pools      []domain.ScoredPool `json:"pools"`
	Excluded   []ExcludedPool      `json:"excluded"`
}

// Engine scores snapshots under a fixed policy configuration. Engines are
// cheap; build one per policy rather than mutating a shared instance.
type Engine struct {
	cfg     config.Config
	workers int
	log     zerolog.Logger
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithWorkers overrides the shard worker count.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New builds an engine for one policy. The configuration must already be
// validated; New re-checks it and panics on a broken policy since scoring
// with undefined weights must never start.
func New(cfg config.Config, log zerolog.Logger, opts ...Option) *Engine {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	e := &Engine{
		cfg:     cfg,
		workers: runtime.GOMAXPROCS(0),
		log:     log.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreSnapshot scores every pool in the snapshot. Pools with malformed
// identity fields are excluded and reported; one bad record never aborts
// the rest. Output order matches input order, and every result carries the
// same computedAt stamp, so identical snapshots score byte-identically.
func (e *Engine) ScoreSnapshot(pools []domain.PoolMetrics, computedAt time.Time) Report {
	start := time.Now()

	slots := make([]slot, len(pools))

	workers := e.workers
	if workers > len(pools) {
		workers = len(pools)
	}
	if workers < 1 {
		workers = 1
	}

	// Shard by stride; each worker writes only its own indices, so there is
	// no shared mutable state to protect.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(pools); i += workers {
				slots[i] = e.scoreOne(pools[i], computedAt)
			}
		}(w)
	}
	wg.Wait()

	report := Report{
		SnapshotID: uuid.New().String(),
		ComputedAt: computedAt,
		Pools:      make([]domain.ScoredPool, 0, len(pools)),
	}
	for _, s := range slots {
		if s.excluded != nil {
			report.Excluded = append(report.Excluded, *s.excluded)
			continue
		}
		report.Pools = append(report.Pools, s.scored)
	}

	metrics.PoolsScored.Add(float64(len(report.Pools)))
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.LastScanTimestamp.Set(float64(computedAt.Unix()))

	e.log.Info().
		Int("scored", len(report.Pools)).
		Int("excluded", len(report.Excluded)).
		Dur("elapsed", time.Since(start)).
		Msg("scoring pass complete")

	return report
}

// slot holds the outcome for one input index so workers never contend.
type slot struct {
	scored   domain.ScoredPool
	excluded *ExcludedPool
}

func (e *Engine) scoreOne(m domain.PoolMetrics, computedAt time.Time) (s slot) {
	if err := m.Validate(); err != nil {
		e.log.Warn().Err(err).Str("pool", m.PoolID).Str("venue", m.Venue).Msg("pool excluded")
		metrics.PoolsExcluded.WithLabelValues("invalid_metrics").Inc()
		s.excluded = &ExcludedPool{PoolID: m.PoolID, Venue: m.Venue, Reason: err.Error()}
		return s
	}

	nm := normalize.Normalize(m, e.cfg)
	subs := factors.ScoreAll(nm, e.cfg)
	score := composite.Compute(subs, e.cfg)
	if len(m.History) < e.cfg.History.MinBuckets {
		// Thin history bounds the whole composite, not just the capped
		// factors: strong depth and spread must not lift a days-old pool
		// above the Standard band.
		score = math.Min(score, composite.ThinHistoryCeiling(e.cfg.Tiers))
	}
	tier := composite.Classify(score, e.cfg.Tiers)

	s.scored = domain.ScoredPool{
		Metrics: m,
		Result: domain.CompositeResult{
			PoolID:       m.PoolID,
			Venue:        m.Venue,
			Pair:         m.Pair,
			Score:        score,
			Tier:         tier.String(),
			SubScores:    subs,
			VolumeUSD24h: m.Volume24h(),
			ComputedAt:   computedAt,
		},
	}
	return s
}
