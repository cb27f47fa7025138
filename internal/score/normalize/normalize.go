// Package normalize rescales raw pool metrics onto [0,1] so the factor
// scorers never see unbounded or missing values.
package normalize

import (
	"math"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

// Neutral is the sentinel for missing inputs. A pool with an absent field
// neither wins nor loses on it.
const Neutral = 0.5

// Depth holds the normalized depth ladder.
type Depth struct {
	Within10Bps float64
	Within1Pct  float64
	Within5Pct  float64
}

// Metrics is the normalized view of one pool. Every numeric field lies in
// [0,1]; derived fields (shares, collapse rate) are computed here so the
// scorers stay pure functions over bounded inputs.
type Metrics struct {
	PoolID string
	Venue  string
	Pair   string

	// Volume is the log-scaled volume series, one value per time bucket.
	Volume []float64
	// Spread is the latest clamped spread; Neutral when unobserved.
	Spread float64
	// DepthLadder is the latest log-scaled depth per distance bucket;
	// Neutral when unobserved.
	DepthLadder Depth

	// HistoryRatio is observed days over the full-confidence horizon.
	HistoryRatio float64
	// CollapseRate is the fraction of bucket transitions where volume or
	// total depth dropped beyond the configured collapse threshold.
	CollapseRate float64

	// VolumeShare and DepthShare compare the pool against the strongest
	// comparable venue: v/(v+best). Neutral when no comparable exists.
	VolumeShare    float64
	DepthShare     float64
	HasComparables bool
}

// Normalize maps raw pool metrics into the bounded domain. It is total:
// missing inputs become Neutral, out-of-range values clamp at the ceilings,
// and it never fails.
func Normalize(m domain.PoolMetrics, cfg config.Config) Metrics {
	nm := Metrics{
		PoolID:       m.PoolID,
		Venue:        m.Venue,
		Pair:         m.Pair,
		HistoryRatio: clamp(m.ObservedDays/cfg.History.FullHistoryDays, 0, 1),
	}

	nm.Volume = make([]float64, 0, len(m.History))
	for _, pt := range m.History {
		nm.Volume = append(nm.Volume, logScale(pt.VolumeUSD, cfg.Normalization.VolumeCeilingUSD))
	}

	if pt, ok := m.Latest(); ok {
		nm.Spread = spreadScale(pt.SpreadPct, cfg.Normalization.SpreadCeilingPct)
		nm.DepthLadder = Depth{
			Within10Bps: logScale(pt.Depth.Within10Bps, cfg.Normalization.DepthCeilingUSD),
			Within1Pct:  logScale(pt.Depth.Within1Pct, cfg.Normalization.DepthCeilingUSD),
			Within5Pct:  logScale(pt.Depth.Within5Pct, cfg.Normalization.DepthCeilingUSD),
		}
	} else {
		nm.Spread = Neutral
		nm.DepthLadder = Depth{Within10Bps: Neutral, Within1Pct: Neutral, Within5Pct: Neutral}
	}

	nm.CollapseRate = collapseRate(m.History, cfg.History.CollapseDrop)
	nm.VolumeShare, nm.DepthShare, nm.HasComparables = shares(m)

	return nm
}

// logScale maps v onto [0,1] with a heavy-tail-aware log transform so a
// single outlier pool cannot dominate rankings. Monotone, clamped at the
// ceiling.
func logScale(v, ceiling float64) float64 {
	if math.IsNaN(v) {
		return Neutral
	}
	if v <= 0 {
		return 0
	}
	return clamp(math.Log10(1+v)/math.Log10(1+ceiling), 0, 1)
}

// spreadScale clamps the spread linearly against the ceiling. The concave
// small-spread sensitivity lives in the spread scorer, not here, so the
// normalized value stays monotone in the raw spread.
func spreadScale(spreadPct, ceiling float64) float64 {
	if math.IsNaN(spreadPct) {
		return Neutral
	}
	return clamp(spreadPct/ceiling, 0, 1)
}

func collapseRate(history []domain.MetricPoint, drop float64) float64 {
	if len(history) < 2 {
		return 0
	}

	collapses := 0
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if prev.VolumeUSD > 0 && cur.VolumeUSD < prev.VolumeUSD*(1-drop) {
			collapses++
			continue
		}
		if prev.Depth.Total() > 0 && cur.Depth.Total() < prev.Depth.Total()*(1-drop) {
			collapses++
		}
	}
	return float64(collapses) / float64(len(history)-1)
}

// shares computes the pool's standing against the strongest comparable
// venue on raw values; v/(v+best) is bounded in [0,1] by construction.
func shares(m domain.PoolMetrics) (volumeShare, depthShare float64, ok bool) {
	if len(m.Comparables) == 0 {
		return Neutral, Neutral, false
	}

	var bestVolume, bestDepth float64
	for _, c := range m.Comparables {
		bestVolume = math.Max(bestVolume, c.VolumeUSD)
		bestDepth = math.Max(bestDepth, c.DepthUSD)
	}

	volume := m.Volume24h()
	depth := 0.0
	if pt, has := m.Latest(); has {
		depth = pt.Depth.Total()
	}

	volumeShare = share(volume, bestVolume)
	depthShare = share(depth, bestDepth)
	return volumeShare, depthShare, true
}

func share(own, best float64) float64 {
	if math.IsNaN(own) || math.IsNaN(best) || own+best <= 0 {
		return Neutral
	}
	return own / (own + best)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
