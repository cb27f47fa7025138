package factors

import (
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// HistoricalReliability rewards long observation and penalizes collapse
// events. The history ratio multiplies the whole score, so a pool observed
// for one day cannot reach the top of this factor regardless of its other
// metrics. A confidence floor, not a bonus.
func HistoricalReliability(nm normalize.Metrics, _ config.Config) float64 {
	return clamp(100*nm.HistoryRatio*(1-nm.CollapseRate), 0, 100)
}
