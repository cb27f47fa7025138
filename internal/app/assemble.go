// Package app wires the data providers, storage, scoring engine, and cache
// into the scan pipeline and the read-side snapshot source.
package app

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/providers"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/storage"
)

// ObservationsFromTickers converts one tickers fetch into persistable
// observations. Pool identity is derived from the venue and the raw token
// legs so it stays stable across symbol-resolution changes; the display
// pair uses resolved symbols. Duplicate quotes for the same pool keep the
// higher volume.
func ObservationsFromTickers(tickers []providers.Ticker, meta map[string]providers.TokenMeta, observedAt time.Time) []storage.Observation {
	byPool := make(map[string]storage.Observation, len(tickers))

	for _, t := range tickers {
		venue := strings.ToLower(t.Market.Identifier)
		if venue == "" {
			venue = strings.ToLower(strings.ReplaceAll(t.Market.Name, " ", "_"))
		}
		if venue == "" || t.Base == "" || t.Target == "" {
			continue
		}

		poolID := fmt.Sprintf("%s:%s/%s", venue, strings.ToLower(t.Base), strings.ToLower(t.Target))
		pair := fmt.Sprintf("%s/%s",
			strings.ToUpper(providers.ResolveSymbol(t.Base, meta)),
			strings.ToUpper(providers.ResolveSymbol(t.Target, meta)))

		obs := storage.Observation{
			PoolID:     poolID,
			Venue:      venue,
			Pair:       pair,
			ObservedAt: observedAt,
			VolumeUSD:  t.ConvertedVolume.USD,
			SpreadPct:  t.BidAskSpreadPct,
		}

		if prev, ok := byPool[poolID]; ok && prev.VolumeUSD >= obs.VolumeUSD {
			continue
		}
		byPool[poolID] = obs
	}

	out := make([]storage.Observation, 0, len(byPool))
	for _, obs := range byPool {
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PoolID < out[j].PoolID })
	return out
}

// BuildPoolMetrics turns the accumulated observation history into the
// immutable scoring input. Comparables are the other pools trading the same
// pair, quoted from their latest observation. Output is ordered by pool id.
func BuildPoolMetrics(byPool map[string][]storage.Observation) []domain.PoolMetrics {
	ids := make([]string, 0, len(byPool))
	for id := range byPool {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Latest quote per pool, for cross-venue comparison by pair.
	type quote struct {
		poolID string
		venue  string
		volume float64
		depth  float64
	}
	byPair := make(map[string][]quote)
	for _, id := range ids {
		series := byPool[id]
		last := series[len(series)-1]
		byPair[last.Pair] = append(byPair[last.Pair], quote{
			poolID: id,
			venue:  last.Venue,
			volume: last.VolumeUSD,
			depth:  depthTotal(last),
		})
	}

	out := make([]domain.PoolMetrics, 0, len(ids))
	for _, id := range ids {
		series := byPool[id]
		last := series[len(series)-1]

		history := make([]domain.MetricPoint, 0, len(series))
		for _, obs := range series {
			history = append(history, domain.MetricPoint{
				Timestamp: obs.ObservedAt,
				VolumeUSD: obs.VolumeUSD,
				SpreadPct: obs.SpreadPct,
				Depth: domain.DepthProfile{
					Within10Bps: nullToNaN(obs.Depth10Bps),
					Within1Pct:  nullToNaN(obs.Depth1Pct),
					Within5Pct:  nullToNaN(obs.Depth5Pct),
				},
			})
		}

		var comparables []domain.VenueQuote
		for _, q := range byPair[last.Pair] {
			if q.poolID == id {
				continue
			}
			comparables = append(comparables, domain.VenueQuote{
				Venue:     q.venue,
				VolumeUSD: q.volume,
				DepthUSD:  q.depth,
			})
		}

		out = append(out, domain.PoolMetrics{
			PoolID:       id,
			Venue:        last.Venue,
			Pair:         last.Pair,
			History:      history,
			ObservedDays: observedDays(series),
			Comparables:  comparables,
		})
	}
	return out
}

// observedDays is the span of the series in days, counting the first bucket
// as one day of evidence.
func observedDays(series []storage.Observation) float64 {
	if len(series) == 0 {
		return 0
	}
	span := series[len(series)-1].ObservedAt.Sub(series[0].ObservedAt)
	return span.Hours()/24 + 1
}

func depthTotal(obs storage.Observation) float64 {
	d := domain.DepthProfile{
		Within10Bps: nullToNaN(obs.Depth10Bps),
		Within1Pct:  nullToNaN(obs.Depth1Pct),
		Within5Pct:  nullToNaN(obs.Depth5Pct),
	}
	return d.Total()
}

// nullToNaN maps an absent depth column onto the scorer's missing-value
// sentinel.
func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
