package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

// Config is the full scoring policy: factor weights, tier boundaries, filter
// thresholds, normalization ceilings, and history floors. It is loaded once
// at startup and passed by value into the engine, so two concurrent scoring
// passes with different policies cannot interfere.
type Config struct {
	Weights       WeightsConfig       `yaml:"weights"`
	Tiers         TiersConfig         `yaml:"tiers"`
	Normalization NormalizationConfig `yaml:"normalization"`
	History       HistoryConfig       `yaml:"history"`
	DepthWeights  DepthWeightsConfig  `yaml:"depth_weights"`
	Filters       FiltersConfig       `yaml:"filters"`
}

// WeightsConfig allocates the composite across the five factors. Weights
// must sum to 1.0 within tolerance and each must lie in (0,1).
type WeightsConfig struct {
	VolumeConsistency     float64 `yaml:"volume_consistency"`
	SpreadEfficiency      float64 `yaml:"spread_efficiency"`
	MarketDepth           float64 `yaml:"market_depth"`
	HistoricalReliability float64 `yaml:"historical_reliability"`
	CrossExchangeStanding float64 `yaml:"cross_exchange_standing"`
}

// ByFactor returns the weight table keyed by factor name.
func (w WeightsConfig) ByFactor() map[domain.Factor]float64 {
	return map[domain.Factor]float64{
		domain.FactorVolumeConsistency:     w.VolumeConsistency,
		domain.FactorSpreadEfficiency:      w.SpreadEfficiency,
		domain.FactorMarketDepth:           w.MarketDepth,
		domain.FactorHistoricalReliability: w.HistoricalReliability,
		domain.FactorCrossExchangeStanding: w.CrossExchangeStanding,
	}
}

// TiersConfig holds the lower bounds of the upper three tiers. Scores below
// the standard bound classify as Risky. Bounds must strictly decrease.
type TiersConfig struct {
	Premium  float64 `yaml:"premium"`
	Quality  float64 `yaml:"quality"`
	Standard float64 `yaml:"standard"`
}

// NormalizationConfig sets the ceilings used to map raw metrics onto [0,1].
// Values beyond a ceiling clamp to 1 rather than being discarded.
type NormalizationConfig struct {
	VolumeCeilingUSD float64 `yaml:"volume_ceiling_usd"`
	DepthCeilingUSD  float64 `yaml:"depth_ceiling_usd"`
	SpreadCeilingPct float64 `yaml:"spread_ceiling_pct"`
}

// HistoryConfig sets the evidence floors for history-sensitive factors.
type HistoryConfig struct {
	// MinBuckets is the minimum series length for volume consistency to be
	// scored on variance; below it the sub-score is capped at
	// InsufficientCeiling.
	MinBuckets int `yaml:"min_buckets"`
	// FullHistoryDays is the observation span needed for full reliability
	// confidence.
	FullHistoryDays float64 `yaml:"full_history_days"`
	// InsufficientCeiling caps volume consistency when evidence is thin.
	InsufficientCeiling float64 `yaml:"insufficient_ceiling"`
	// CollapseDrop is the bucket-over-bucket fractional drop in volume or
	// depth counted as a collapse event.
	CollapseDrop float64 `yaml:"collapse_drop"`
}

// DepthWeightsConfig weights the depth distance buckets; near-mid depth
// counts most since that is what a typical trade consumes.
type DepthWeightsConfig struct {
	Within10Bps float64 `yaml:"within_10bps"`
	Within1Pct  float64 `yaml:"within_1pct"`
	Within5Pct  float64 `yaml:"within_5pct"`
}

// FiltersConfig holds the named-filter thresholds.
type FiltersConfig struct {
	WhaleMinVolumeUSD     float64 `yaml:"whale_min_volume_usd"`
	SharkMinVolumeUSD     float64 `yaml:"shark_min_volume_usd"`
	CommunityMinVolumeUSD float64 `yaml:"community_min_volume_usd"`
	MomentumWindow        int     `yaml:"momentum_window"`
	HotPicksMinTier       string  `yaml:"hot_picks_min_tier"`
	// TrendingQuantile is the volume quantile a pool must reach relative
	// to the rest of the set to count as trending.
	TrendingQuantile float64 `yaml:"trending_quantile"`
}

const weightSumTolerance = 0.001

// Default returns the shipped policy configuration.
func Default() Config {
	return Config{
		Weights: WeightsConfig{
			VolumeConsistency:     0.25,
			SpreadEfficiency:      0.20,
			MarketDepth:           0.25,
			HistoricalReliability: 0.15,
			CrossExchangeStanding: 0.15,
		},
		Tiers: TiersConfig{
			Premium:  80,
			Quality:  50,
			Standard: 20,
		},
		Normalization: NormalizationConfig{
			VolumeCeilingUSD: 1_000_000_000,
			DepthCeilingUSD:  100_000_000,
			SpreadCeilingPct: 5.0,
		},
		History: HistoryConfig{
			MinBuckets:          7,
			FullHistoryDays:     90,
			InsufficientCeiling: 30,
			CollapseDrop:        0.8,
		},
		DepthWeights: DepthWeightsConfig{
			Within10Bps: 0.5,
			Within1Pct:  0.3,
			Within5Pct:  0.2,
		},
		Filters: FiltersConfig{
			WhaleMinVolumeUSD:     1_000_000,
			SharkMinVolumeUSD:     100_000,
			CommunityMinVolumeUSD: 10_000,
			MomentumWindow:        6,
			HotPicksMinTier:       "quality",
			TrendingQuantile:      0.8,
		},
	}
}

// Load reads a policy configuration from a YAML file and validates it.
// Missing file fields keep their zero values, so files are expected to be
// complete; partial overrides go through LoadOrDefault.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault starts from defaults and overlays a YAML file when path is
// non-empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the policy invariants. Any failure is fatal at startup:
// scoring must never silently degrade to an undefined weighting.
func (c Config) Validate() error {
	weights := c.Weights.ByFactor()
	var sum float64
	for factor, w := range weights {
		if w <= 0 || w >= 1 {
			return fmt.Errorf("%w: weight for %s is %.4f, must be in (0,1)", domain.ErrConfiguration, factor, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: factor weights sum to %.4f, expected 1.0 ± %.3f", domain.ErrConfiguration, sum, weightSumTolerance)
	}

	if !(c.Tiers.Premium > c.Tiers.Quality && c.Tiers.Quality > c.Tiers.Standard) {
		return fmt.Errorf("%w: tier boundaries must strictly decrease, got premium=%.1f quality=%.1f standard=%.1f",
			domain.ErrConfiguration, c.Tiers.Premium, c.Tiers.Quality, c.Tiers.Standard)
	}
	if c.Tiers.Premium > 100 || c.Tiers.Standard <= 0 {
		return fmt.Errorf("%w: tier boundaries must lie in (0,100]", domain.ErrConfiguration)
	}

	if c.Normalization.VolumeCeilingUSD <= 0 || c.Normalization.DepthCeilingUSD <= 0 || c.Normalization.SpreadCeilingPct <= 0 {
		return fmt.Errorf("%w: normalization ceilings must be positive", domain.ErrConfiguration)
	}

	if c.History.MinBuckets < 2 {
		return fmt.Errorf("%w: history min_buckets %d, must be at least 2", domain.ErrConfiguration, c.History.MinBuckets)
	}
	if c.History.FullHistoryDays <= 0 {
		return fmt.Errorf("%w: full_history_days must be positive", domain.ErrConfiguration)
	}
	if c.History.InsufficientCeiling < 0 || c.History.InsufficientCeiling > 100 {
		return fmt.Errorf("%w: insufficient_ceiling %.1f outside [0,100]", domain.ErrConfiguration, c.History.InsufficientCeiling)
	}
	if c.History.CollapseDrop <= 0 || c.History.CollapseDrop >= 1 {
		return fmt.Errorf("%w: collapse_drop %.2f outside (0,1)", domain.ErrConfiguration, c.History.CollapseDrop)
	}

	depthSum := c.DepthWeights.Within10Bps + c.DepthWeights.Within1Pct + c.DepthWeights.Within5Pct
	if math.Abs(depthSum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: depth bucket weights sum to %.4f, expected 1.0", domain.ErrConfiguration, depthSum)
	}

	if c.Filters.MomentumWindow < 1 {
		return fmt.Errorf("%w: momentum_window must be at least 1", domain.ErrConfiguration)
	}
	if c.Filters.WhaleMinVolumeUSD < c.Filters.SharkMinVolumeUSD || c.Filters.SharkMinVolumeUSD < c.Filters.CommunityMinVolumeUSD {
		return fmt.Errorf("%w: volume tier cut-offs must decrease from whale to community", domain.ErrConfiguration)
	}
	if c.Filters.TrendingQuantile <= 0 || c.Filters.TrendingQuantile >= 1 {
		return fmt.Errorf("%w: trending_quantile %.2f outside (0,1)", domain.ErrConfiguration, c.Filters.TrendingQuantile)
	}

	return nil
}
