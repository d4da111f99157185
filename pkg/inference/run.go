/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: run.go
Description: Per-run state of the inference loop: the example forest, the
distributional matrices and the current bubbles with their class indices.
*/

package inference

import (
	"context"
	"fmt"
	"sort"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/graph"
	"github.com/kleascm/cfginfer/pkg/interval"
	"github.com/kleascm/cfginfer/pkg/matrix"
	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/kleascm/cfginfer/pkg/tree"
	"github.com/sirupsen/logrus"
)

type run struct {
	config   *Config
	log      *logrus.Entry
	oracle   *oracle.CachedOracle
	balancer *tokens.Balancer
	known    *oracle.Incremental
	namer    *grammar.Namer

	examples []tokens.Tokens
	forest   *tree.Forest
	grammar  *grammar.Grammar
	dm       *matrix.Distributional
	cdm      *matrix.Compressed

	// bubbles[i] has context class cons[i] and subsequence class subs[i] in cdm.
	bubbles []tree.Bubble
	cons    []int
	subs    []int

	iteration int
	state     State
}

func newRun(ctx context.Context, config *Config, o *oracle.CachedOracle, examples []tokens.Tokens, log *logrus.Entry) (*run, error) {
	r := &run{
		config:   config,
		log:      log,
		oracle:   o,
		balancer: config.balancer(),
		known:    oracle.NewIncremental(),
		namer:    grammar.NewNamer(config.NonterminalPrefix),
		examples: examples,
		forest:   tree.NewForest(),
		state:    StateInit,
	}

	for _, ex := range examples {
		r.forest.Build(ex, config.StartSymbol)
	}
	r.refreshGrammar()

	r.dm = matrix.NewDistributional(o, r.balancer)
	for i, ex := range examples {
		if err := r.dm.AddExample(ctx, ex); err != nil {
			return nil, fmt.Errorf("failed to add example %d to matrix: %w", i, err)
		}
	}
	r.cdm = matrix.NewCompressed(r.dm)
	r.log.WithFields(logrus.Fields{
		"subsequences": r.dm.NumSubseqs(),
		"contexts":     r.dm.NumContexts(),
		"requested":    r.dm.Requested(),
	}).Info("Matrix initialized")

	r.bubbles = r.forest.Extract(r.balancer)
	r.cons = make([]int, len(r.bubbles))
	r.subs = make([]int, len(r.bubbles))
	for i, b := range r.bubbles {
		con, ok := r.dm.ContextIndex(r.forest.Context(b))
		if !ok {
			return nil, inconsistent("bubble %s has no matrix column", b)
		}
		sub, ok := r.dm.SubseqIndex(r.forest.Seq(b))
		if !ok {
			return nil, inconsistent("bubble %s has no matrix row", b)
		}
		r.cons[i], r.subs[i] = con, sub
	}
	return r, nil
}

func (r *run) setState(s State) {
	r.state = s
	r.log.WithFields(logrus.Fields{"iteration": r.iteration, "state": s.String()}).Trace("State changed")
}

func (r *run) refreshGrammar() {
	r.grammar = r.forest.Grammar(r.config.StartSymbol)
	r.known.SetGrammar(r.grammar)
}

// buildGraph links bubbles that accept each other's subsequences in their contexts,
// then unlinks pairs from the same example whose spans cross.
func (r *run) buildGraph() *graph.UndirectedGraph {
	n := len(r.bubbles)
	g := graph.New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.cdm.Get(r.subs[j], r.cons[i]) && r.cdm.Get(r.subs[i], r.cons[j]) {
				g.AddEdge(i, j)
			}
		}
	}

	byExample := make(map[int][]int)
	spans := make([]interval.Span, n)
	for i, b := range r.bubbles {
		spans[i] = r.forest.Span(b)
		byExample[spans[i].Example] = append(byExample[spans[i].Example], i)
	}
	for _, group := range byExample {
		for a := 0; a < len(group); a++ {
			for b := a + 1; b < len(group); b++ {
				i, j := group[a], group[b]
				if g.HasEdge(i, j) && spans[i].Conflict(spans[j]) {
					g.RemoveEdge(i, j)
				}
			}
		}
	}
	return g
}

// coverage assembles every context of the clique's context classes with every
// subsequence of its subsequence classes.
func (r *run) coverage(members []int) []tokens.Tokens {
	conSet := make(map[int]struct{})
	subSet := make(map[int]struct{})
	for _, m := range members {
		for _, c := range r.cdm.ColSet(r.cons[m]) {
			conSet[c] = struct{}{}
		}
		for _, s := range r.cdm.RowSet(r.subs[m]) {
			subSet[s] = struct{}{}
		}
	}
	cons := sortedKeys(conSet)
	subs := sortedKeys(subSet)

	var out []tokens.Tokens
	seen := make(map[string]struct{})
	for _, c := range cons {
		con := r.dm.Context(c)
		for _, s := range subs {
			candidate := con.Assemble(r.dm.Subseq(s))
			k := tokens.Key(candidate)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, candidate)
		}
	}
	return out
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
