package rank

import (
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/domain"
	"github.com/rotimiakinrinde/High-Liquidity-Pool-Finder/internal/score/composite"
)

// Options narrows a ranking request.
type Options struct {
	// Filter is an optional registered filter name.
	Filter string
	// Venue keeps only pools on the named venue when non-empty.
	Venue string
	// Limit truncates the ranked output when positive.
	Limit int
}

// Rank returns pools ordered descending by composite score with the
// documented tie-break chain (reliability, depth, pool id). The sort is
// stable and the input is never mutated, so two calls with identical input
// produce identical ordering.
func (r *Registry) Rank(pools []domain.ScoredPool, opts Options) ([]domain.ScoredPool, error) {
	working := pools
	if opts.Filter != "" {
		filtered, err := r.Apply(opts.Filter, pools)
		if err != nil {
			return nil, err
		}
		working = filtered
	}

	if opts.Venue != "" {
		kept := make([]domain.ScoredPool, 0, len(working))
		for _, p := range working {
			if p.Result.Venue == opts.Venue {
				kept = append(kept, p)
			}
		}
		working = kept
	}

	ranked := sortStable(working, composite.Less)
	if opts.Limit > 0 && opts.Limit < len(ranked) {
		ranked = ranked[:opts.Limit]
	}
	return ranked, nil
}
