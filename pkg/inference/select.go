/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: select.go
Description: Clique selection. Candidates are tried largest first; a clique is folded
only if it merges distinct alternatives, its coverage contains strings not verified
yet, and the oracle accepts every unverified coverage string.
*/

package inference

import (
	"context"
	"sort"

	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/sirupsen/logrus"
)

type selection struct {
	members  []int
	values   []string
	coverage []tokens.Tokens
	fresh    int
}

type rankedClique struct {
	members []int
	width   int
}

// rank orders cliques by size descending, then by covered tokens ascending. Ties keep
// the lexicographic order of the enumerator.
func (r *run) rank(cliques [][]int) []rankedClique {
	ranked := make([]rankedClique, len(cliques))
	for i, c := range cliques {
		width := 0
		for _, m := range c {
			width += r.forest.Span(r.bubbles[m]).Len()
		}
		ranked[i] = rankedClique{members: c, width: width}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if len(ranked[i].members) != len(ranked[j].members) {
			return len(ranked[i].members) > len(ranked[j].members)
		}
		return ranked[i].width < ranked[j].width
	})
	return ranked
}

// distinctValues returns the symbol sequences of the members in first-seen order.
func (r *run) distinctValues(members []int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range members {
		k := r.forest.SymbolKey(r.bubbles[m])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (r *run) selectClique(ctx context.Context, cliques [][]int) (*selection, error) {
	for _, rc := range r.rank(cliques) {
		values := r.distinctValues(rc.members)
		if len(values) < 2 {
			continue
		}

		coverage := r.coverage(rc.members)
		var fresh []tokens.Tokens
		for _, s := range coverage {
			if !r.known.Known(s) {
				fresh = append(fresh, s)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		verdicts := r.oracle.Batch(ctx, fresh)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rejected := 0
		for _, s := range fresh {
			if !verdicts[tokens.Key(s)] {
				rejected++
			}
		}
		if rejected > 0 {
			r.log.WithFields(logrus.Fields{
				"iteration":   r.iteration,
				"clique_size": len(rc.members),
				"coverage":    len(coverage),
				"rejected":    rejected,
			}).Debug("Clique rejected by oracle")
			continue
		}

		r.known.Merge(coverage)
		return &selection{
			members:  rc.members,
			values:   values,
			coverage: coverage,
			fresh:    len(fresh),
		}, nil
	}
	return nil, nil
}
