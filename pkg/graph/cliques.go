/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cliques.go
Description: Maximal clique enumeration by Bron-Kerbosch. Nodes whose closed
neighbourhoods coincide always share their maximal cliques, so they can be merged
before the search and expanded afterwards.
*/

package graph

import (
	"encoding/binary"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// CliqueOptions tunes MaximalCliques.
type CliqueOptions struct {
	// Pivot prunes branches with a maximum-degree pivot from P ∪ X.
	Pivot bool
	// Contract merges nodes with identical closed neighbourhoods first.
	Contract bool
	// MinSize drops smaller cliques from the result.
	MinSize int
}

// DefaultCliqueOptions pivots, contracts and drops singletons.
func DefaultCliqueOptions() CliqueOptions {
	return CliqueOptions{Pivot: true, Contract: true, MinSize: 2}
}

// MaximalCliques returns every maximal clique with at least opts.MinSize nodes. Each
// clique is sorted, and cliques are ordered lexicographically.
func (g *UndirectedGraph) MaximalCliques(opts CliqueOptions) [][]int {
	var cliques [][]int
	if opts.Contract {
		cliques = g.contractedCliques(opts.Pivot)
	} else {
		cliques = g.bronKerbosch(opts.Pivot)
	}

	out := cliques[:0]
	for _, c := range cliques {
		if len(c) >= opts.MinSize {
			sort.Ints(c)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessInts(out[i], out[j]) })
	return out
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (g *UndirectedGraph) bronKerbosch(pivot bool) [][]int {
	n := uint(len(g.adj))
	p := bitset.New(n)
	for v := uint(0); v < n; v++ {
		p.Set(v)
	}
	var out [][]int
	g.expand(nil, p, bitset.New(n), pivot, &out)
	return out
}

func (g *UndirectedGraph) expand(r []int, p, x *bitset.BitSet, pivot bool, out *[][]int) {
	if p.None() {
		if x.None() && len(r) > 0 {
			*out = append(*out, append([]int(nil), r...))
		}
		return
	}

	candidates := p.Clone()
	if pivot {
		u := g.pivot(p, x)
		candidates.InPlaceDifference(g.adj[u])
	}
	for v, ok := candidates.NextSet(0); ok; v, ok = candidates.NextSet(v + 1) {
		next := append(r[:len(r):len(r)], int(v))
		g.expand(next, p.Intersection(g.adj[v]), x.Intersection(g.adj[v]), pivot, out)
		p.Clear(v)
		x.Set(v)
	}
}

func (g *UndirectedGraph) pivot(p, x *bitset.BitSet) uint {
	union := p.Union(x)
	best, bestDeg := uint(0), -1
	for u, ok := union.NextSet(0); ok; u, ok = union.NextSet(u + 1) {
		if d := g.Degree(int(u)); d > bestDeg {
			best, bestDeg = u, d
		}
	}
	return best
}

// Contract groups nodes with identical closed neighbourhoods. It returns the quotient
// graph and the members of each quotient node.
func (g *UndirectedGraph) Contract() (*UndirectedGraph, [][]int) {
	groupOf := make(map[string]int)
	var groups [][]int
	for v := range g.adj {
		key := setKey(g.closed(v))
		idx, ok := groupOf[key]
		if !ok {
			idx = len(groups)
			groupOf[key] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], v)
	}

	q := New(len(groups))
	for a := range groups {
		for b := a + 1; b < len(groups); b++ {
			if g.HasEdge(groups[a][0], groups[b][0]) {
				q.AddEdge(a, b)
			}
		}
	}
	return q, groups
}

// setKey encodes the members of s exactly. Trailing empty words are dropped so equal
// sets of different capacity agree.
func setKey(s *bitset.BitSet) string {
	words := s.Bytes()
	for len(words) > 0 && words[len(words)-1] == 0 {
		words = words[:len(words)-1]
	}
	buf := make([]byte, 0, 8*len(words))
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}

func (g *UndirectedGraph) contractedCliques(pivot bool) [][]int {
	q, groups := g.Contract()
	var out [][]int
	for _, c := range q.bronKerbosch(pivot) {
		var members []int
		for _, v := range c {
			members = append(members, groups[v]...)
		}
		out = append(out, members)
	}
	return out
}
