package factors

import (
	"math"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// SpreadEfficiency rewards tight quotes with a concave transform: the square
// root makes a move from 0.01% to 0.02% cost far more than 1% to 1.01%,
// matching how spread actually hurts execution.
func SpreadEfficiency(nm normalize.Metrics, _ config.Config) float64 {
	return clamp(100*(1-math.Sqrt(nm.Spread)), 0, 100)
}
