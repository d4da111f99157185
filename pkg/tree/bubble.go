/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bubble.go
Description: Bubbles are contiguous runs of siblings. This file derives their tokens,
contexts and intervals and implements folding a bubble under a new nonterminal.
*/

package tree

import (
	"fmt"
	"strings"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/interval"
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// Bubble is the inclusive sibling span Start..End.
type Bubble struct {
	Start NodeID
	End   NodeID
}

// Single is the bubble over exactly n.
func Single(n NodeID) Bubble {
	return Bubble{Start: n, End: n}
}

func (b Bubble) String() string {
	return fmt.Sprintf("<%d..%d>", b.Start, b.End)
}

// Nodes walks the span left to right. A span broken by a fold stops at the sentinel
// closing its run, which is not part of the result.
func (f *Forest) Nodes(b Bubble) []NodeID {
	var out []NodeID
	for cur := b.Start; cur != None && f.nodes[cur].kind != KindSentinel; cur = f.nodes[cur].right {
		out = append(out, cur)
		if cur == b.End {
			break
		}
	}
	return out
}

// Len is the number of sibling nodes in the span.
func (f *Forest) Len(b Bubble) int {
	return len(f.Nodes(b))
}

// Owner returns the parent shared by the nodes of b.
func (f *Forest) Owner(b Bubble) NodeID {
	return f.nodes[b.Start].parent
}

// IsNonterminal reports whether b is a single nonterminal node.
func (f *Forest) IsNonterminal(b Bubble) bool {
	return b.Start == b.End && f.nodes[b.Start].kind == KindNonterminal
}

// IsProd reports whether b spans all children of a non-root nonterminal.
func (f *Forest) IsProd(b Bubble) bool {
	parent := f.nodes[b.Start].parent
	if parent == None || f.nodes[parent].parent == None {
		return false
	}
	return f.nodes[b.Start].left == f.nodes[parent].head && f.nodes[b.End].right == f.nodes[parent].tail
}

func (f *Forest) bounds(b Bubble) (int, int) {
	l := f.nodes[f.Leftmost(b.Start)].offset
	r := f.nodes[f.Rightmost(b.End)].offset + 1
	return l, r
}

// Seq returns the tokens covered by b.
func (f *Forest) Seq(b Bubble) tokens.Tokens {
	l, r := f.bounds(b)
	return f.examples[f.nodes[b.Start].example][l:r:r]
}

// Context returns the tokens of the example around b.
func (f *Forest) Context(b Bubble) tokens.Context {
	l, r := f.bounds(b)
	ctx, _ := tokens.Split(f.examples[f.nodes[b.Start].example], l, r)
	return ctx
}

// Span returns the token interval of b in its example.
func (f *Forest) Span(b Bubble) interval.Span {
	l, r := f.bounds(b)
	return interval.Span{Example: f.nodes[b.Start].example, Interval: interval.New(l, r)}
}

// Symbols returns the labels of the nodes in b.
func (f *Forest) Symbols(b Bubble) []grammar.Symbol {
	nodes := f.Nodes(b)
	out := make([]grammar.Symbol, len(nodes))
	for i, n := range nodes {
		out[i] = f.Label(n)
	}
	return out
}

// SymbolKey renders the labels of b. Terminals are quoted so they never collide with
// nonterminal names.
func (f *Forest) SymbolKey(b Bubble) string {
	syms := f.Symbols(b)
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Check verifies that b is a forward run of non-sentinel siblings.
func (f *Forest) Check(b Bubble) error {
	if b.Start < 0 || int(b.Start) >= len(f.nodes) || b.End < 0 || int(b.End) >= len(f.nodes) {
		return fmt.Errorf("bubble %s out of range: %w", b, ErrStructuralInconsistency)
	}
	if f.nodes[b.Start].parent == None {
		return fmt.Errorf("bubble %s starts at a root: %w", b, ErrStructuralInconsistency)
	}
	if f.nodes[b.Start].parent != f.nodes[b.End].parent {
		return fmt.Errorf("bubble %s crosses parents: %w", b, ErrStructuralInconsistency)
	}
	for cur := b.Start; cur != b.End; cur = f.nodes[cur].right {
		if f.nodes[cur].kind == KindSentinel || f.nodes[cur].right == None {
			return fmt.Errorf("bubble %s is not a forward run: %w", b, ErrStructuralInconsistency)
		}
	}
	if f.nodes[b.End].kind == KindSentinel {
		return fmt.Errorf("bubble %s ends on a sentinel: %w", b, ErrStructuralInconsistency)
	}
	return nil
}

// Fold moves the nodes of b under a new nonterminal called name, which takes the
// place of the span in its parent's chain.
func (f *Forest) Fold(b Bubble, name string) (NodeID, error) {
	if err := f.Check(b); err != nil {
		return None, err
	}
	s, e := b.Start, b.End
	example := f.nodes[s].example
	leftBound := f.nodes[s].left
	rightBound := f.nodes[e].right

	nn := blank(KindNonterminal, example)
	nn.name = name
	nn.parent = f.nodes[s].parent
	nn.left = leftBound
	nn.right = rightBound
	nt := f.alloc(nn)

	hn := blank(KindSentinel, example)
	hn.parent = nt
	hn.right = s
	head := f.alloc(hn)

	tn := blank(KindSentinel, example)
	tn.parent = nt
	tn.left = e
	tail := f.alloc(tn)

	f.nodes[nt].head = head
	f.nodes[nt].tail = tail
	f.nodes[leftBound].right = nt
	f.nodes[rightBound].left = nt
	f.nodes[s].left = head
	f.nodes[e].right = tail
	for cur := s; cur != tail; cur = f.nodes[cur].right {
		f.nodes[cur].parent = nt
	}
	return nt, nil
}
