package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DepthProfile holds available liquidity at increasing distances from mid.
// Buckets are cumulative-exclusive: Within1Pct does not include Within10Bps.
type DepthProfile struct {
	Within10Bps float64 `json:"within_10bps"`
	Within1Pct  float64 `json:"within_1pct"`
	Within5Pct  float64 `json:"within_5pct"`
}

// Total returns the summed depth across all distance buckets.
func (d DepthProfile) Total() float64 {
	return d.Within10Bps + d.Within1Pct + d.Within5Pct
}

// Unobserved depth is carried as NaN in memory, which encoding/json
// rejects; on the wire it becomes null instead.
type depthProfileJSON struct {
	Within10Bps *float64 `json:"within_10bps"`
	Within1Pct  *float64 `json:"within_1pct"`
	Within5Pct  *float64 `json:"within_5pct"`
}

func (d DepthProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(depthProfileJSON{
		Within10Bps: nanToNull(d.Within10Bps),
		Within1Pct:  nanToNull(d.Within1Pct),
		Within5Pct:  nanToNull(d.Within5Pct),
	})
}

func (d *DepthProfile) UnmarshalJSON(data []byte) error {
	var raw depthProfileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Within10Bps = nullToNaN(raw.Within10Bps)
	d.Within1Pct = nullToNaN(raw.Within1Pct)
	d.Within5Pct = nullToNaN(raw.Within5Pct)
	return nil
}

func nanToNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nullToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MetricPoint is one time bucket of observed pool activity.
type MetricPoint struct {
	Timestamp time.Time    `json:"timestamp"`
	VolumeUSD float64      `json:"volume_usd"`
	SpreadPct float64      `json:"spread_pct"`
	Depth     DepthProfile `json:"depth"`
}

// VenueQuote is a comparable quote for the same token pair on another venue.
// DepthUSD may be NaN when the venue's depth is unobserved.
type VenueQuote struct {
	Venue     string  `json:"venue"`
	VolumeUSD float64 `json:"volume_usd"`
	DepthUSD  float64 `json:"depth_usd"`
}

type venueQuoteJSON struct {
	Venue     string   `json:"venue"`
	VolumeUSD float64  `json:"volume_usd"`
	DepthUSD  *float64 `json:"depth_usd"`
}

func (q VenueQuote) MarshalJSON() ([]byte, error) {
	return json.Marshal(venueQuoteJSON{
		Venue:     q.Venue,
		VolumeUSD: q.VolumeUSD,
		DepthUSD:  nanToNull(q.DepthUSD),
	})
}

func (q *VenueQuote) UnmarshalJSON(data []byte) error {
	var raw venueQuoteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Venue = raw.Venue
	q.VolumeUSD = raw.VolumeUSD
	q.DepthUSD = nullToNaN(raw.DepthUSD)
	return nil
}

// PoolMetrics is the immutable per-snapshot input record for one pool.
// It is produced by the data-fetch layer; the scoring engine only reads it.
type PoolMetrics struct {
	PoolID string `json:"pool_id"`
	Venue  string `json:"venue"`
	Pair   string `json:"pair"` // "BASE/QUOTE" symbol form

	History      []MetricPoint `json:"history"` // ascending by timestamp
	ObservedDays float64       `json:"observed_days"`
	Comparables  []VenueQuote  `json:"comparables,omitempty"`
}

// Validate checks the identity fields and series invariants. A failure means
// the record is malformed and the pool must be excluded from scoring.
func (m *PoolMetrics) Validate() error {
	if strings.TrimSpace(m.PoolID) == "" {
		return fmt.Errorf("%w: missing pool id", ErrInvalidMetrics)
	}
	if strings.TrimSpace(m.Venue) == "" {
		return fmt.Errorf("%w: pool %s missing venue", ErrInvalidMetrics, m.PoolID)
	}
	if strings.TrimSpace(m.Pair) == "" {
		return fmt.Errorf("%w: pool %s missing pair", ErrInvalidMetrics, m.PoolID)
	}

	var prev time.Time
	for i, pt := range m.History {
		if pt.VolumeUSD < 0 {
			return fmt.Errorf("%w: pool %s negative volume at bucket %d", ErrInvalidMetrics, m.PoolID, i)
		}
		if pt.SpreadPct < 0 {
			return fmt.Errorf("%w: pool %s negative spread at bucket %d", ErrInvalidMetrics, m.PoolID, i)
		}
		if pt.Depth.Within10Bps < 0 || pt.Depth.Within1Pct < 0 || pt.Depth.Within5Pct < 0 {
			return fmt.Errorf("%w: pool %s negative depth at bucket %d", ErrInvalidMetrics, m.PoolID, i)
		}
		if i > 0 && !pt.Timestamp.After(prev) {
			return fmt.Errorf("%w: pool %s unordered or duplicate timestamp at bucket %d", ErrInvalidMetrics, m.PoolID, i)
		}
		prev = pt.Timestamp
	}

	for _, c := range m.Comparables {
		if c.VolumeUSD < 0 || c.DepthUSD < 0 {
			return fmt.Errorf("%w: pool %s negative comparable metrics for venue %s", ErrInvalidMetrics, m.PoolID, c.Venue)
		}
	}

	return nil
}

// Latest returns the most recent metric point, or false when the series is
// empty.
func (m *PoolMetrics) Latest() (MetricPoint, bool) {
	if len(m.History) == 0 {
		return MetricPoint{}, false
	}
	return m.History[len(m.History)-1], true
}

// Volume24h is the volume of the most recent time bucket.
func (m *PoolMetrics) Volume24h() float64 {
	pt, ok := m.Latest()
	if !ok {
		return 0
	}
	return pt.VolumeUSD
}

// VolumeMomentum is the short-window volume delta: mean of the trailing
// window minus mean of the window before it. Used by the hot-picks filter
// against the same series the scorers consume.
func (m *PoolMetrics) VolumeMomentum(window int) float64 {
	n := len(m.History)
	if window < 1 || n < 2 {
		return 0
	}
	if window > n/2 {
		window = n / 2
	}

	var recent, prior float64
	for _, pt := range m.History[n-window:] {
		recent += pt.VolumeUSD
	}
	for _, pt := range m.History[n-2*window : n-window] {
		prior += pt.VolumeUSD
	}
	return (recent - prior) / float64(window)
}

// Tokens splits the pair into its base and quote legs.
func (m *PoolMetrics) Tokens() (base, quote string) {
	parts := strings.SplitN(m.Pair, "/", 2)
	if len(parts) != 2 {
		return m.Pair, ""
	}
	return parts[0], parts[1]
}
