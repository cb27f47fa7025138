package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/normalize"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestVolumeConsistency(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		volume []float64
		want   float64
		delta  float64
	}{
		{name: "empty series scores zero", volume: nil, want: 0},
		{name: "steady series scores full", volume: repeat(0.5, 30), want: 100},
		{
			// mean 0.5, stddev 0.3, cv 0.6
			name:   "spiky series is penalized",
			volume: []float64{0.2, 0.8, 0.2, 0.8, 0.2, 0.8, 0.2, 0.8},
			want:   40,
			delta:  1e-9,
		},
		{name: "short series capped at insufficient ceiling", volume: repeat(0.5, 2), want: 30},
		{name: "all-zero series scores zero", volume: repeat(0, 10), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VolumeConsistency(normalize.Metrics{Volume: tt.volume}, cfg)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestSpreadEfficiency(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		spread float64
		want   float64
		delta  float64
	}{
		{name: "zero spread is perfect", spread: 0, want: 100},
		{name: "ceiling spread scores zero", spread: 1, want: 0},
		{name: "one percent of ceiling", spread: 0.01, want: 90},
		{name: "quarter of ceiling", spread: 0.25, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpreadEfficiency(normalize.Metrics{Spread: tt.spread}, cfg)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestMarketDepth(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		ladder normalize.Depth
		want   float64
	}{
		{name: "full ladder", ladder: normalize.Depth{Within10Bps: 1, Within1Pct: 1, Within5Pct: 1}, want: 100},
		{name: "neutral ladder", ladder: normalize.Depth{Within10Bps: 0.5, Within1Pct: 0.5, Within5Pct: 0.5}, want: 50},
		{name: "near-mid depth dominates", ladder: normalize.Depth{Within10Bps: 1}, want: 50},
		{name: "far depth counts least", ladder: normalize.Depth{Within5Pct: 1}, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarketDepth(normalize.Metrics{DepthLadder: tt.ladder}, cfg)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestHistoricalReliability(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name     string
		ratio    float64
		collapse float64
		want     float64
	}{
		{name: "full history no collapses", ratio: 1, collapse: 0, want: 100},
		{name: "third of history", ratio: 1.0 / 3, collapse: 0, want: 100.0 / 3},
		{name: "collapses halve the score", ratio: 1, collapse: 0.5, want: 50},
		{name: "no history scores zero", ratio: 0, collapse: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HistoricalReliability(normalize.Metrics{HistoryRatio: tt.ratio, CollapseRate: tt.collapse}, cfg)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCrossExchangeStanding(t *testing.T) {
	cfg := config.Default()

	t.Run("no comparables is neutral", func(t *testing.T) {
		got := CrossExchangeStanding(normalize.Metrics{HasComparables: false}, cfg)
		assert.Equal(t, 50.0, got)
	})

	t.Run("shares average into the score", func(t *testing.T) {
		nm := normalize.Metrics{HasComparables: true, VolumeShare: 1, DepthShare: 0}
		assert.InDelta(t, 50, CrossExchangeStanding(nm, cfg), 1e-9)

		nm = normalize.Metrics{HasComparables: true, VolumeShare: 2.0 / 3, DepthShare: 2.0 / 3}
		assert.InDelta(t, 200.0/3, CrossExchangeStanding(nm, cfg), 1e-9)
	})
}

func TestScoreAll(t *testing.T) {
	cfg := config.Default()
	nm := normalize.Metrics{
		Volume:       repeat(0.5, 30),
		Spread:       0.01,
		DepthLadder:  normalize.Depth{Within10Bps: 0.6, Within1Pct: 0.6, Within5Pct: 0.6},
		HistoryRatio: 0.5,
	}

	subs := ScoreAll(nm, cfg)
	assert.Len(t, subs, len(domain.Factors))
	for _, f := range domain.Factors {
		score, ok := subs[f]
		assert.True(t, ok, "missing factor %s", f)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestLookup(t *testing.T) {
	for _, f := range domain.Factors {
		_, ok := Lookup(f)
		assert.True(t, ok, "factor %s not registered", f)
	}
	_, ok := Lookup(domain.Factor("nonsense"))
	assert.False(t, ok)
}
