/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extract.go
Description: Bubble enumeration over the forest and the balance filter applied to it.
All traversals use explicit stacks so deep trees cannot exhaust the goroutine stack.
*/

package tree

import (
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// Bubbling returns every contiguous run of every child chain below root, chains in
// preorder and runs by start then end position.
func (f *Forest) Bubbling(root NodeID) []Bubble {
	var out []Bubble
	stack := []NodeID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := f.Children(n)
		for i := range children {
			for j := i; j < len(children); j++ {
				out = append(out, Bubble{Start: children[i], End: children[j]})
			}
		}
		for k := len(children) - 1; k >= 0; k-- {
			if f.nodes[children[k]].kind == KindNonterminal {
				stack = append(stack, children[k])
			}
		}
	}
	return out
}

// NtIndex maps every nonterminal name to its nodes, roots included.
func (f *Forest) NtIndex() map[string][]NodeID {
	index := make(map[string][]NodeID)
	for _, root := range f.roots {
		stack := []NodeID{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			index[f.nodes[n].name] = append(index[f.nodes[n].name], n)

			children := f.Children(n)
			for k := len(children) - 1; k >= 0; k-- {
				if f.nodes[children[k]].kind == KindNonterminal {
					stack = append(stack, children[k])
				}
			}
		}
	}
	return index
}

// unitChild returns the only child of n when that child is a nonterminal.
func (f *Forest) unitChild(n NodeID) NodeID {
	first, last := f.First(n), f.Last(n)
	if first == None || first != last || f.nodes[first].kind != KindNonterminal {
		return None
	}
	return first
}

// Values returns the token strings b stands for. A nonterminal bubble stands for the
// yield of every node carrying its name or any name reachable from it through unit
// productions.
func (f *Forest) Values(b Bubble, index map[string][]NodeID) []tokens.Tokens {
	if !f.IsNonterminal(b) {
		return []tokens.Tokens{f.Seq(b)}
	}

	start := f.nodes[b.Start].name
	visited := map[string]struct{}{start: {}}
	names := []string{start}
	for i := 0; i < len(names); i++ {
		for _, n := range index[names[i]] {
			c := f.unitChild(n)
			if c == None {
				continue
			}
			name := f.nodes[c].name
			if _, ok := visited[name]; !ok {
				visited[name] = struct{}{}
				names = append(names, name)
			}
		}
	}

	var out []tokens.Tokens
	seen := make(map[string]struct{})
	for _, name := range names {
		for _, n := range index[name] {
			v := f.Yield(n)
			k := tokens.Key(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, f.Seq(b))
	}
	return out
}

// Extract enumerates the bubbles of every tree and keeps those whose values are all
// balanced.
func (f *Forest) Extract(balancer *tokens.Balancer) []Bubble {
	index := f.NtIndex()
	var out []Bubble
	for _, root := range f.roots {
		for _, b := range f.Bubbling(root) {
			if balancer.BalancedAll(f.Values(b, index)) {
				out = append(out, b)
			}
		}
	}
	return out
}
