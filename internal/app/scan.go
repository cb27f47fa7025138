package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/cache"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/engine"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/providers"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/storage"
)

// TickerSource fetches one cycle of venue tickers.
type TickerSource interface {
	FetchTickers(ctx context.Context) ([]providers.Ticker, error)
}

// MetaSource resolves token contract addresses to metadata.
type MetaSource interface {
	FetchTokenMeta(ctx context.Context, addresses []string) (map[string]providers.TokenMeta, error)
}

// Scanner runs the full pipeline: fetch, persist, build history, score,
// publish.
type Scanner struct {
	cfg     config.Config
	engine  *engine.Engine
	tickers TickerSource
	meta    MetaSource
	db      *storage.DB
	cache   *cache.Cache
	log     zerolog.Logger
}

// NewScanner wires the pipeline. Cache may be nil; publication is then
// store-only.
func NewScanner(cfg config.Config, eng *engine.Engine, tickers TickerSource, meta MetaSource, db *storage.DB, c *cache.Cache, log zerolog.Logger) *Scanner {
	return &Scanner{
		cfg:     cfg,
		engine:  eng,
		tickers: tickers,
		meta:    meta,
		db:      db,
		cache:   c,
		log:     log.With().Str("component", "scanner").Logger(),
	}
}

// Run executes one scan cycle and returns the scoring report.
func (s *Scanner) Run(ctx context.Context) (engine.Report, error) {
	now := time.Now().UTC()

	tickers, err := s.tickers.FetchTickers(ctx)
	if err != nil {
		return engine.Report{}, fmt.Errorf("fetch tickers: %w", err)
	}
	if len(tickers) == 0 {
		return engine.Report{}, fmt.Errorf("no tickers returned")
	}

	meta, err := s.meta.FetchTokenMeta(ctx, tokenLegs(tickers))
	if err != nil {
		// Symbol resolution is cosmetic; scoring proceeds on addresses.
		s.log.Warn().Err(err).Msg("token metadata unavailable, using truncated addresses")
		meta = map[string]providers.TokenMeta{}
	}

	observations := ObservationsFromTickers(tickers, meta, now)
	if err := s.db.Observations().SaveBatch(ctx, observations); err != nil {
		return engine.Report{}, fmt.Errorf("persist observations: %w", err)
	}
	s.log.Info().Int("observations", len(observations)).Msg("cycle observations stored")

	cutoff := now.Add(-time.Duration(s.cfg.History.FullHistoryDays * 24 * float64(time.Hour)))
	byPool, err := s.db.Observations().LoadSince(ctx, cutoff)
	if err != nil {
		return engine.Report{}, fmt.Errorf("load history: %w", err)
	}

	pools := BuildPoolMetrics(byPool)
	report := s.engine.ScoreSnapshot(pools, now)

	if err := s.publish(ctx, report); err != nil {
		return engine.Report{}, err
	}
	return report, nil
}

func (s *Scanner) publish(ctx context.Context, report engine.Report) error {
	results := make([]domain.CompositeResult, 0, len(report.Pools))
	for _, p := range report.Pools {
		results = append(results, p.Result)
	}
	if err := s.db.Snapshots().SaveResults(ctx, report.SnapshotID, results); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, report); err != nil {
			// Cache publication is best-effort; the store already has it.
			s.log.Warn().Err(err).Msg("cache publish failed")
		}
	}
	return nil
}

// tokenLegs collects the distinct base and target legs across all tickers.
func tokenLegs(tickers []providers.Ticker) []string {
	seen := make(map[string]struct{}, len(tickers)*2)
	out := make([]string, 0, len(tickers)*2)
	for _, t := range tickers {
		for _, leg := range []string{t.Base, t.Target} {
			if _, ok := seen[leg]; ok {
				continue
			}
			seen[leg] = struct{}{}
			out = append(out, leg)
		}
	}
	return out
}
