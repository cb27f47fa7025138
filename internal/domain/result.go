package domain

import "time"

// Factor names the five quality factors. Each is registered in the scorer
// table and carries a weight in the composite.
type Factor string

const (
	FactorVolumeConsistency     Factor = "volume_consistency"
	FactorSpreadEfficiency      Factor = "spread_efficiency"
	FactorMarketDepth           Factor = "market_depth"
	FactorHistoricalReliability Factor = "historical_reliability"
	FactorCrossExchangeStanding Factor = "cross_exchange_standing"
)

// Factors lists all factors in canonical order. Iteration over this slice,
// never over a map, keeps scoring output deterministic.
var Factors = []Factor{
	FactorVolumeConsistency,
	FactorSpreadEfficiency,
	FactorMarketDepth,
	FactorHistoricalReliability,
	FactorCrossExchangeStanding,
}

// SubScores maps each factor to its sub-score in [0,100]. Exactly the five
// canonical factors are present.
type SubScores map[Factor]float64

// Tier is the discrete quality bucket derived from the composite score.
type Tier int

const (
	TierRisky Tier = iota
	TierStandard
	TierQuality
	TierPremium
)

func (t Tier) String() string {
	switch t {
	case TierPremium:
		return "Premium"
	case TierQuality:
		return "Quality"
	case TierStandard:
		return "Standard"
	default:
		return "Risky"
	}
}

// ParseTier maps a tier label back to its ordered value. Unknown labels map
// to TierRisky.
func ParseTier(s string) Tier {
	switch s {
	case "Premium", "premium":
		return TierPremium
	case "Quality", "quality":
		return TierQuality
	case "Standard", "standard":
		return TierStandard
	default:
		return TierRisky
	}
}

// CompositeResult is the scored output record for one pool. SubScores are
// retained for explainability; VolumeUSD24h is carried for filters and
// display so consumers do not need the raw metrics.
type CompositeResult struct {
	PoolID       string    `json:"pool_id" db:"pool_id"`
	Venue        string    `json:"venue" db:"venue"`
	Pair         string    `json:"pair" db:"pair"`
	Score        float64   `json:"score" db:"score"`
	Tier         string    `json:"tier" db:"tier"`
	SubScores    SubScores `json:"sub_scores" db:"-"`
	VolumeUSD24h float64   `json:"volume_usd_24h" db:"volume_usd_24h"`
	ComputedAt   time.Time `json:"computed_at" db:"computed_at"`
}

// ScoredPool pairs a result with the metrics it was derived from, for
// filters that predicate on raw metrics as well as the score.
type ScoredPool struct {
	Metrics PoolMetrics     `json:"metrics"`
	Result  CompositeResult `json:"result"`
}
