package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBrokenPolicies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "weights not summing to one", mutate: func(c *Config) { c.Weights.MarketDepth = 0.5 }},
		{name: "zero weight", mutate: func(c *Config) { c.Weights.SpreadEfficiency = 0 }},
		{name: "weight at one", mutate: func(c *Config) { c.Weights.VolumeConsistency = 1 }},
		{name: "tiers not decreasing", mutate: func(c *Config) { c.Tiers.Quality = 85 }},
		{name: "standard tier at zero", mutate: func(c *Config) { c.Tiers.Standard = 0; c.Tiers.Quality = 50 }},
		{name: "negative volume ceiling", mutate: func(c *Config) { c.Normalization.VolumeCeilingUSD = -1 }},
		{name: "min buckets below two", mutate: func(c *Config) { c.History.MinBuckets = 1 }},
		{name: "collapse drop at one", mutate: func(c *Config) { c.History.CollapseDrop = 1 }},
		{name: "insufficient ceiling above hundred", mutate: func(c *Config) { c.History.InsufficientCeiling = 101 }},
		{name: "depth weights not summing to one", mutate: func(c *Config) { c.DepthWeights.Within5Pct = 0.4 }},
		{name: "momentum window zero", mutate: func(c *Config) { c.Filters.MomentumWindow = 0 }},
		{name: "shark above whale", mutate: func(c *Config) { c.Filters.SharkMinVolumeUSD = 2_000_000 }},
		{name: "trending quantile at one", mutate: func(c *Config) { c.Filters.TrendingQuantile = 1 }},
		{name: "trending quantile at zero", mutate: func(c *Config) { c.Filters.TrendingQuantile = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadOrDefaultOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quality.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  premium: 85
filters:
  whale_min_volume_usd: 5000000
`), 0o644))

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)

	assert.Equal(t, 85.0, cfg.Tiers.Premium)
	assert.Equal(t, 5_000_000.0, cfg.Filters.WhaleMinVolumeUSD)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.25, cfg.Weights.VolumeConsistency)
	assert.Equal(t, 50.0, cfg.Tiers.Quality)
}

func TestLoadOrDefaultEmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("weights: [broken"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("overlay breaking invariants", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tiers:\n  premium: 10\n"), 0o644))
		_, err := LoadOrDefault(path)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
