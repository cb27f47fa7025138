// Package composite combines factor sub-scores into the single 0-100
// quality figure and classifies it into a tier.
package composite

import (
	"math"
	"strings"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

// Compute returns the weighted composite score, rounded to one decimal.
// Weights are taken from the supplied policy, never from process state, so
// two passes with different weight tables cannot interfere.
func Compute(subs domain.SubScores, cfg config.Config) float64 {
	weights := cfg.Weights.ByFactor()

	var score float64
	for _, f := range domain.Factors {
		score += weights[f] * subs[f]
	}
	return Round(score)
}

// Round fixes composite precision at one decimal place.
func Round(score float64) float64 {
	return math.Round(score*10) / 10
}

// ThinHistoryCeiling is the highest composite a pool with fewer than the
// minimum history buckets may carry: one rounding step below the Quality
// boundary, so thin evidence can never classify above Standard no matter
// how strong the other factors look.
func ThinHistoryCeiling(tiers config.TiersConfig) float64 {
	return Round(tiers.Quality - 0.1)
}

// Classify maps a composite score to its tier using closed-open boundaries:
// a score exactly on a boundary belongs to the higher tier.
func Classify(score float64, tiers config.TiersConfig) domain.Tier {
	switch {
	case score >= tiers.Premium:
		return domain.TierPremium
	case score >= tiers.Quality:
		return domain.TierQuality
	case score >= tiers.Standard:
		return domain.TierStandard
	default:
		return domain.TierRisky
	}
}

// Less is the total ranking order: higher composite first, ties broken by
// higher historical reliability, then higher market depth, then lexical
// pool id. Guarantees deterministic ordering even on exact score collisions.
func Less(a, b domain.CompositeResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if ar, br := a.SubScores[domain.FactorHistoricalReliability], b.SubScores[domain.FactorHistoricalReliability]; ar != br {
		return ar > br
	}
	if ad, bd := a.SubScores[domain.FactorMarketDepth], b.SubScores[domain.FactorMarketDepth]; ad != bd {
		return ad > bd
	}
	return strings.Compare(a.PoolID, b.PoolID) < 0
}
