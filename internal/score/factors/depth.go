package factors

import (
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// MarketDepth aggregates the normalized depth ladder into one figure,
// weighting near-mid depth most heavily since that is what a typical trade
// consumes.
func MarketDepth(nm normalize.Metrics, cfg config.Config) float64 {
	w := cfg.DepthWeights
	score := 100 * (w.Within10Bps*nm.DepthLadder.Within10Bps +
		w.Within1Pct*nm.DepthLadder.Within1Pct +
		w.Within5Pct*nm.DepthLadder.Within5Pct)
	return clamp(score, 0, 100)
}
