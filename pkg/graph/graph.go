/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: graph.go
Description: Undirected graph over integer nodes with bitset adjacency.
*/

package graph

import (
	"github.com/bits-and-blooms/bitset"
)

// UndirectedGraph has nodes 0..n-1 and no self loops.
type UndirectedGraph struct {
	adj []*bitset.BitSet
}

// New returns n isolated nodes.
func New(n int) *UndirectedGraph {
	g := &UndirectedGraph{adj: make([]*bitset.BitSet, n)}
	for i := range g.adj {
		g.adj[i] = bitset.New(uint(n))
	}
	return g
}

// Len is the number of nodes.
func (g *UndirectedGraph) Len() int { return len(g.adj) }

// AddEdge connects u and v. Self loops are ignored.
func (g *UndirectedGraph) AddEdge(u, v int) {
	if u == v {
		return
	}
	g.adj[u].Set(uint(v))
	g.adj[v].Set(uint(u))
}

// RemoveEdge disconnects u and v.
func (g *UndirectedGraph) RemoveEdge(u, v int) {
	g.adj[u].Clear(uint(v))
	g.adj[v].Clear(uint(u))
}

// HasEdge reports whether u and v are adjacent.
func (g *UndirectedGraph) HasEdge(u, v int) bool {
	return g.adj[u].Test(uint(v))
}

// Degree is the number of neighbours of v.
func (g *UndirectedGraph) Degree(v int) int {
	return int(g.adj[v].Count())
}

// Neighbors lists the neighbours of v in increasing order.
func (g *UndirectedGraph) Neighbors(v int) []int {
	var out []int
	for u, ok := g.adj[v].NextSet(0); ok; u, ok = g.adj[v].NextSet(u + 1) {
		out = append(out, int(u))
	}
	return out
}

// NumEdges counts each edge once.
func (g *UndirectedGraph) NumEdges() int {
	n := 0
	for _, a := range g.adj {
		n += int(a.Count())
	}
	return n / 2
}

func (g *UndirectedGraph) closed(v int) *bitset.BitSet {
	c := g.adj[v].Clone()
	c.Set(uint(v))
	return c
}
