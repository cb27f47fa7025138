package factors

import (
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// CrossExchangeStanding compares the pool against the strongest venue
// quoting the same pair. A best-in-class pool scores high even when its
// absolute numbers are modest. With no comparable venue the factor returns
// the neutral midpoint rather than penalizing.
func CrossExchangeStanding(nm normalize.Metrics, _ config.Config) float64 {
	if !nm.HasComparables {
		return 100 * normalize.Neutral
	}
	return clamp(100*(0.5*nm.VolumeShare+0.5*nm.DepthShare), 0, 100)
}
