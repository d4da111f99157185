/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: prods.go
Description: Reading productions back out of the forest, and a plain text dump of a
tree for diagnostics.
*/

package tree

import (
	"strings"

	"github.com/kleascm/cfginfer/pkg/grammar"
)

// Prods lists one production per nonterminal node under root, in preorder.
func (f *Forest) Prods(root NodeID) []grammar.Prod {
	var out []grammar.Prod
	stack := []NodeID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := f.Children(n)
		if len(children) == 0 {
			continue
		}
		syms := make([]grammar.Symbol, len(children))
		for i, c := range children {
			syms[i] = f.Label(c)
		}
		out = append(out, grammar.Prod{Nonterminal: f.nodes[n].name, Symbols: syms})

		for k := len(children) - 1; k >= 0; k-- {
			if f.nodes[children[k]].kind == KindNonterminal {
				stack = append(stack, children[k])
			}
		}
	}
	return out
}

// Grammar collects the productions of every tree.
func (f *Forest) Grammar(start string) *grammar.Grammar {
	var prods []grammar.Prod
	for _, root := range f.roots {
		prods = append(prods, f.Prods(root)...)
	}
	return grammar.FromProds(start, prods)
}

// Pretty renders the tree under root, one node per line.
func (f *Forest) Pretty(root NodeID) string {
	type frame struct {
		n     NodeID
		depth int
	}
	var b strings.Builder
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.WriteString(strings.Repeat("  ", fr.depth))
		if f.nodes[fr.n].kind == KindLeaf {
			b.WriteString(f.nodes[fr.n].token.Text())
		} else {
			b.WriteString(f.nodes[fr.n].name)
		}
		b.WriteString("\n")

		children := f.Children(fr.n)
		for k := len(children) - 1; k >= 0; k-- {
			stack = append(stack, frame{n: children[k], depth: fr.depth + 1})
		}
	}
	return b.String()
}

// PrettyAll renders every tree.
func (f *Forest) PrettyAll() string {
	var b strings.Builder
	for _, root := range f.roots {
		b.WriteString(f.Pretty(root))
	}
	return b.String()
}
