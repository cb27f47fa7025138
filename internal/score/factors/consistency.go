package factors

import (
	"math"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

// VolumeConsistency penalizes spiky, one-off activity: the sub-score falls
// with the coefficient of variation of the normalized volume series. A
// series shorter than the configured minimum is capped at the insufficient
// ceiling: thin evidence is treated as risk, not as missing-data-neutral.
// This is deliberately asymmetric from the normalizer's neutral fill.
func VolumeConsistency(nm normalize.Metrics, cfg config.Config) float64 {
	n := len(nm.Volume)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range nm.Volume {
		sum += v
	}
	mean := sum / float64(n)
	if mean <= 0 {
		return 0
	}

	var sq float64
	for _, v := range nm.Volume {
		d := v - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(n)) / mean

	score := 100 * (1 - clamp(cv, 0, 1))
	if n < cfg.History.MinBuckets {
		score = math.Min(score, cfg.History.InsufficientCeiling)
	}
	return clamp(score, 0, 100)
}
