// Package rank applies named filters over scored pools and produces ordered
// views of the result set.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/config"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
)

// Predicate decides whether a scored pool passes a filter. Predicates are
// pure: they read the result and raw metrics, never mutate either.
type Predicate func(domain.ScoredPool) bool

// FilterDefinition is one named filter in the static registry. Most filters
// are per-pool predicates; population-relative filters set Select instead
// and see the whole result set.
type FilterDefinition struct {
	Name      string
	Label     string
	Predicate Predicate
	Select    func([]domain.ScoredPool) []domain.ScoredPool
}

// Registry holds the named filters for one policy configuration. Built once
// at startup, read-only afterwards.
type Registry struct {
	filters map[string]FilterDefinition
	order   []string
}

// majorTokens are the legs accepted by the major_pairs filter.
var majorTokens = []string{"USDT", "USDC", "DAI", "WETH", "WBTC"}

// NewRegistry builds the standard filter set from the policy thresholds.
func NewRegistry(cfg config.Config) *Registry {
	minTier := domain.ParseTier(cfg.Filters.HotPicksMinTier)

	defs := []FilterDefinition{
		{
			Name:      "whale_territory",
			Label:     fmt.Sprintf("Whale Territory (>=%s 24h volume)", formatUSD(cfg.Filters.WhaleMinVolumeUSD)),
			Predicate: minVolume(cfg.Filters.WhaleMinVolumeUSD),
		},
		{
			Name:      "shark_reef",
			Label:     fmt.Sprintf("Shark Reef (>=%s 24h volume)", formatUSD(cfg.Filters.SharkMinVolumeUSD)),
			Predicate: minVolume(cfg.Filters.SharkMinVolumeUSD),
		},
		{
			Name:      "community",
			Label:     fmt.Sprintf("Community (>=%s 24h volume)", formatUSD(cfg.Filters.CommunityMinVolumeUSD)),
			Predicate: minVolume(cfg.Filters.CommunityMinVolumeUSD),
		},
		{
			Name:  "hot_picks",
			Label: "Hot Picks (positive volume momentum)",
			Predicate: func(p domain.ScoredPool) bool {
				if domain.ParseTier(p.Result.Tier) < minTier {
					return false
				}
				return p.Metrics.VolumeMomentum(cfg.Filters.MomentumWindow) > 0
			},
		},
		{
			Name:   "trending",
			Label:  fmt.Sprintf("Trending (top %.0f%% by 24h volume)", 100*(1-cfg.Filters.TrendingQuantile)),
			Select: trendingSelect(cfg.Filters.TrendingQuantile),
		},
		{
			Name:  "top_rated",
			Label: "Top Rated (Premium tier only)",
			Predicate: func(p domain.ScoredPool) bool {
				return domain.ParseTier(p.Result.Tier) == domain.TierPremium
			},
		},
		{
			Name:  "major_pairs",
			Label: "Major Pairs (USDT/USDC/DAI/WETH/WBTC legs)",
			Predicate: func(p domain.ScoredPool) bool {
				base, quote := p.Metrics.Tokens()
				return isMajorToken(base) || isMajorToken(quote)
			},
		},
	}

	r := &Registry{filters: make(map[string]FilterDefinition, len(defs))}
	for _, d := range defs {
		r.filters[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r
}

func minVolume(threshold float64) Predicate {
	return func(p domain.ScoredPool) bool {
		return p.Result.VolumeUSD24h >= threshold
	}
}

// trendingSelect keeps pools at or above the volume quantile of the set.
// The threshold is population-relative, so this is a set-level filter, not
// a per-pool predicate. Input order is preserved.
func trendingSelect(quantile float64) func([]domain.ScoredPool) []domain.ScoredPool {
	return func(pools []domain.ScoredPool) []domain.ScoredPool {
		out := make([]domain.ScoredPool, 0, len(pools))
		if len(pools) == 0 {
			return out
		}

		volumes := make([]float64, len(pools))
		for i, p := range pools {
			volumes[i] = p.Result.VolumeUSD24h
		}
		sort.Float64s(volumes)

		idx := int(float64(len(volumes)) * quantile)
		if idx >= len(volumes) {
			idx = len(volumes) - 1
		}
		threshold := volumes[idx]

		for _, p := range pools {
			if p.Result.VolumeUSD24h >= threshold {
				out = append(out, p)
			}
		}
		return out
	}
}

// formatUSD renders a dollar threshold compactly: $10K, $100K, $1M.
func formatUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%gB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%gM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%gK", v/1e3)
	default:
		return fmt.Sprintf("$%g", v)
	}
}

func isMajorToken(token string) bool {
	upper := strings.ToUpper(token)
	for _, t := range majorTokens {
		if upper == t {
			return true
		}
	}
	return false
}

// Names lists the registered filters in definition order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions lists the registered filters in definition order.
func (r *Registry) Definitions() []FilterDefinition {
	out := make([]FilterDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.filters[name])
	}
	return out
}

// Apply returns the subsequence of pools passing the named filter. The
// input is never mutated. An unregistered name fails with ErrUnknownFilter
// and leaves the caller's slice untouched.
func (r *Registry) Apply(name string, pools []domain.ScoredPool) ([]domain.ScoredPool, error) {
	def, ok := r.filters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}

	if def.Select != nil {
		return def.Select(pools), nil
	}

	out := make([]domain.ScoredPool, 0, len(pools))
	for _, p := range pools {
		if def.Predicate(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// sortStable orders pools by the composite ranking order without mutating
// the input slice.
func sortStable(pools []domain.ScoredPool, less func(a, b domain.CompositeResult) bool) []domain.ScoredPool {
	out := make([]domain.ScoredPool, len(pools))
	copy(out, pools)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Result, out[j].Result)
	})
	return out
}
