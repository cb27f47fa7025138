// Package factors implements the five independent quality factor scorers.
// Each scorer is a pure function from normalized metrics to a sub-score in
// [0,100], registered in a static table so new factors can be added without
// touching the composite combination logic.
package factors

import (
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// Scorer computes one factor sub-score in [0,100] from normalized metrics.
type Scorer func(normalize.Metrics, config.Config) float64

// registry is the static factor table. Defined once at startup, never
// mutated at runtime.
var registry = map[domain.Factor]Scorer{
	domain.FactorVolumeConsistency:     VolumeConsistency,
	domain.FactorSpreadEfficiency:      SpreadEfficiency,
	domain.FactorMarketDepth:           MarketDepth,
	domain.FactorHistoricalReliability: HistoricalReliability,
	domain.FactorCrossExchangeStanding: CrossExchangeStanding,
}

// Lookup returns the scorer for a factor name.
func Lookup(f domain.Factor) (Scorer, bool) {
	s, ok := registry[f]
	return s, ok
}

// ScoreAll evaluates every registered factor in canonical order.
func ScoreAll(nm normalize.Metrics, cfg config.Config) domain.SubScores {
	subs := make(domain.SubScores, len(domain.Factors))
	for _, f := range domain.Factors {
		subs[f] = registry[f](nm, cfg)
	}
	return subs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
