package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

func dailyHistory(volumes []float64, spread float64, depth domain.DepthProfile) []domain.MetricPoint {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]domain.MetricPoint, 0, len(volumes))
	for i, v := range volumes {
		pts = append(pts, domain.MetricPoint{
			Timestamp: start.AddDate(0, 0, i),
			VolumeUSD: v,
			SpreadPct: spread,
			Depth:     depth,
		})
	}
	return pts
}

func TestNormalizeVolumeScaling(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		volume float64
		want   float64
		delta  float64
	}{
		{name: "zero volume maps to zero", volume: 0, want: 0},
		{name: "ceiling clamps to one", volume: cfg.Normalization.VolumeCeilingUSD, want: 1, delta: 1e-9},
		{name: "above ceiling still one", volume: cfg.Normalization.VolumeCeilingUSD * 100, want: 1},
		{
			name:   "mid-range is log scaled",
			volume: 50_000,
			want:   math.Log10(50_001) / math.Log10(1+cfg.Normalization.VolumeCeilingUSD),
			delta:  1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.PoolMetrics{
				PoolID:  "p1",
				Venue:   "uniswap_v3",
				Pair:    "WETH/USDC",
				History: dailyHistory([]float64{tt.volume}, 0.1, domain.DepthProfile{}),
			}
			nm := Normalize(m, cfg)
			assert.Len(t, nm.Volume, 1)
			assert.InDelta(t, tt.want, nm.Volume[0], tt.delta)
		})
	}
}

func TestNormalizeVolumeMonotonic(t *testing.T) {
	cfg := config.Default()

	volumes := []float64{0, 100, 10_000, 1_000_000, 100_000_000, cfg.Normalization.VolumeCeilingUSD}
	var prev float64 = -1
	for _, v := range volumes {
		m := domain.PoolMetrics{
			PoolID: "p1", Venue: "v", Pair: "A/B",
			History: dailyHistory([]float64{v}, 0.1, domain.DepthProfile{}),
		}
		got := Normalize(m, cfg).Volume[0]
		assert.Greater(t, got, prev, "volume %v must normalize above %v's value", v, prev)
		prev = got
	}
}

func TestNormalizeSpread(t *testing.T) {
	cfg := config.Default()

	m := domain.PoolMetrics{
		PoolID:  "p1",
		Venue:   "uniswap_v3",
		Pair:    "WETH/USDC",
		History: dailyHistory([]float64{1000}, 0.05, domain.DepthProfile{}),
	}
	nm := Normalize(m, cfg)
	assert.InDelta(t, 0.01, nm.Spread, 1e-12)

	m.History = dailyHistory([]float64{1000}, 50, domain.DepthProfile{})
	nm = Normalize(m, cfg)
	assert.Equal(t, 1.0, nm.Spread)
}

func TestNormalizeMissingInputsAreNeutral(t *testing.T) {
	cfg := config.Default()

	t.Run("empty history", func(t *testing.T) {
		nm := Normalize(domain.PoolMetrics{PoolID: "p1", Venue: "v", Pair: "A/B"}, cfg)
		assert.Equal(t, Neutral, nm.Spread)
		assert.Equal(t, Neutral, nm.DepthLadder.Within10Bps)
		assert.Equal(t, Neutral, nm.DepthLadder.Within1Pct)
		assert.Equal(t, Neutral, nm.DepthLadder.Within5Pct)
		assert.Empty(t, nm.Volume)
	})

	t.Run("unobserved depth", func(t *testing.T) {
		nan := math.NaN()
		m := domain.PoolMetrics{
			PoolID: "p1", Venue: "v", Pair: "A/B",
			History: dailyHistory([]float64{1000}, 0.1, domain.DepthProfile{Within10Bps: nan, Within1Pct: nan, Within5Pct: nan}),
		}
		nm := Normalize(m, cfg)
		assert.Equal(t, Neutral, nm.DepthLadder.Within10Bps)
		assert.Equal(t, Neutral, nm.DepthLadder.Within1Pct)
		assert.Equal(t, Neutral, nm.DepthLadder.Within5Pct)
	})
}

func TestNormalizeHistoryRatio(t *testing.T) {
	cfg := config.Default()

	m := domain.PoolMetrics{PoolID: "p1", Venue: "v", Pair: "A/B", ObservedDays: 45}
	assert.InDelta(t, 0.5, Normalize(m, cfg).HistoryRatio, 1e-9)

	m.ObservedDays = 900
	assert.Equal(t, 1.0, Normalize(m, cfg).HistoryRatio)
}

func TestCollapseRate(t *testing.T) {
	cfg := config.Default()

	m := domain.PoolMetrics{
		PoolID: "p1", Venue: "v", Pair: "A/B",
		History: dailyHistory([]float64{100_000, 10_000, 100_000}, 0.1, domain.DepthProfile{}),
	}
	// One collapse across two transitions: 100K -> 10K is a 90% drop.
	assert.InDelta(t, 0.5, Normalize(m, cfg).CollapseRate, 1e-9)

	m.History = dailyHistory([]float64{100_000, 90_000, 95_000}, 0.1, domain.DepthProfile{})
	assert.Zero(t, Normalize(m, cfg).CollapseRate)
}

func TestShares(t *testing.T) {
	cfg := config.Default()
	depth := domain.DepthProfile{Within10Bps: 50_000, Within1Pct: 50_000, Within5Pct: 50_000}

	t.Run("no comparables is neutral", func(t *testing.T) {
		m := domain.PoolMetrics{
			PoolID: "p1", Venue: "v", Pair: "A/B",
			History: dailyHistory([]float64{50_000}, 0.1, depth),
		}
		nm := Normalize(m, cfg)
		assert.False(t, nm.HasComparables)
		assert.Equal(t, Neutral, nm.VolumeShare)
		assert.Equal(t, Neutral, nm.DepthShare)
	})

	t.Run("share against strongest comparable", func(t *testing.T) {
		m := domain.PoolMetrics{
			PoolID: "p1", Venue: "v", Pair: "A/B",
			History: dailyHistory([]float64{50_000}, 0.1, depth),
			Comparables: []domain.VenueQuote{
				{Venue: "other", VolumeUSD: 25_000, DepthUSD: 75_000},
				{Venue: "small", VolumeUSD: 1_000, DepthUSD: 1_000},
			},
		}
		nm := Normalize(m, cfg)
		assert.True(t, nm.HasComparables)
		assert.InDelta(t, 50_000.0/75_000, nm.VolumeShare, 1e-9)
		assert.InDelta(t, 150_000.0/225_000, nm.DepthShare, 1e-9)
	})

	t.Run("unobserved own depth is neutral", func(t *testing.T) {
		nan := math.NaN()
		m := domain.PoolMetrics{
			PoolID: "p1", Venue: "v", Pair: "A/B",
			History:     dailyHistory([]float64{50_000}, 0.1, domain.DepthProfile{Within10Bps: nan, Within1Pct: nan, Within5Pct: nan}),
			Comparables: []domain.VenueQuote{{Venue: "other", VolumeUSD: 25_000, DepthUSD: 75_000}},
		}
		nm := Normalize(m, cfg)
		assert.Equal(t, Neutral, nm.DepthShare)
	})
}
