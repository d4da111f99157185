/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: forest.go
Description: Arena of parse-tree nodes, one tree per example. Nodes are addressed by
NodeID and link to their parent and siblings. Every child chain is bounded by a head
and a tail sentinel, which makes folding a span a constant number of relinks.
*/

package tree

import (
	"errors"
	"fmt"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// ErrStructuralInconsistency reports a span or link that violates tree invariants.
var ErrStructuralInconsistency = errors.New("structural inconsistency")

// NodeID addresses a node inside a Forest.
type NodeID int

// None is the absent node.
const None NodeID = -1

// Kind distinguishes the three node roles.
type Kind uint8

const (
	KindSentinel Kind = iota
	KindLeaf
	KindNonterminal
)

func (k Kind) String() string {
	switch k {
	case KindSentinel:
		return "sentinel"
	case KindLeaf:
		return "leaf"
	case KindNonterminal:
		return "nonterminal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type node struct {
	kind    Kind
	token   tokens.Token
	name    string
	example int
	offset  int

	parent NodeID
	left   NodeID
	right  NodeID
	head   NodeID
	tail   NodeID
}

func blank(kind Kind, example int) node {
	return node{
		kind:    kind,
		example: example,
		offset:  -1,
		parent:  None,
		left:    None,
		right:   None,
		head:    None,
		tail:    None,
	}
}

// Forest owns the nodes of every example tree.
type Forest struct {
	nodes    []node
	roots    []NodeID
	examples []tokens.Tokens
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{}
}

func (f *Forest) alloc(n node) NodeID {
	f.nodes = append(f.nodes, n)
	return NodeID(len(f.nodes) - 1)
}

// Build adds the flat tree start -> t1 ... tn for example and returns its root.
func (f *Forest) Build(example tokens.Tokens, start string) NodeID {
	id := len(f.examples)
	f.examples = append(f.examples, example)

	rn := blank(KindNonterminal, id)
	rn.name = start
	root := f.alloc(rn)
	head := f.alloc(blank(KindSentinel, id))
	tail := f.alloc(blank(KindSentinel, id))
	f.nodes[head].parent = root
	f.nodes[tail].parent = root
	f.nodes[root].head = head
	f.nodes[root].tail = tail

	prev := head
	for i, tok := range example {
		ln := blank(KindLeaf, id)
		ln.token = tok
		ln.offset = i
		ln.parent = root
		ln.left = prev
		leaf := f.alloc(ln)
		f.nodes[prev].right = leaf
		prev = leaf
	}
	f.nodes[prev].right = tail
	f.nodes[tail].left = prev

	f.roots = append(f.roots, root)
	return root
}

// Roots returns the tree roots in example order.
func (f *Forest) Roots() []NodeID {
	return f.roots
}

// Example returns the tokens of example id.
func (f *Forest) Example(id int) tokens.Tokens {
	return f.examples[id]
}

// NumExamples is the number of trees.
func (f *Forest) NumExamples() int {
	return len(f.examples)
}

// NumNodes is the arena size, sentinels included.
func (f *Forest) NumNodes() int {
	return len(f.nodes)
}

func (f *Forest) Kind(n NodeID) Kind { return f.nodes[n].kind }
func (f *Forest) Parent(n NodeID) NodeID { return f.nodes[n].parent }
func (f *Forest) Left(n NodeID) NodeID { return f.nodes[n].left }
func (f *Forest) Right(n NodeID) NodeID { return f.nodes[n].right }
func (f *Forest) ExampleOf(n NodeID) int { return f.nodes[n].example }
func (f *Forest) Token(n NodeID) tokens.Token { return f.nodes[n].token }

// IsRoot reports whether n is the root of its tree.
func (f *Forest) IsRoot(n NodeID) bool {
	return f.nodes[n].kind == KindNonterminal && f.nodes[n].parent == None
}

// Name returns the nonterminal name of n, or the token type of a leaf.
func (f *Forest) Name(n NodeID) string {
	if f.nodes[n].kind == KindLeaf {
		return f.nodes[n].token.Type
	}
	return f.nodes[n].name
}

// Label returns n as a grammar symbol.
func (f *Forest) Label(n NodeID) grammar.Symbol {
	if f.nodes[n].kind == KindLeaf {
		return grammar.T(f.nodes[n].token.Type)
	}
	return grammar.N(f.nodes[n].name)
}

// First returns the first child of n, or None.
func (f *Forest) First(n NodeID) NodeID {
	if f.nodes[n].kind != KindNonterminal {
		return None
	}
	c := f.nodes[f.nodes[n].head].right
	if f.nodes[c].kind == KindSentinel {
		return None
	}
	return c
}

// Last returns the last child of n, or None.
func (f *Forest) Last(n NodeID) NodeID {
	if f.nodes[n].kind != KindNonterminal {
		return None
	}
	c := f.nodes[f.nodes[n].tail].left
	if f.nodes[c].kind == KindSentinel {
		return None
	}
	return c
}

// Children returns the child chain of n without its sentinels.
func (f *Forest) Children(n NodeID) []NodeID {
	var out []NodeID
	if f.nodes[n].kind != KindNonterminal {
		return out
	}
	for c := f.nodes[f.nodes[n].head].right; f.nodes[c].kind != KindSentinel; c = f.nodes[c].right {
		out = append(out, c)
	}
	return out
}

// Leftmost descends through first children to a leaf.
func (f *Forest) Leftmost(n NodeID) NodeID {
	for f.nodes[n].kind == KindNonterminal {
		c := f.First(n)
		if c == None {
			return None
		}
		n = c
	}
	return n
}

// Rightmost descends through last children to a leaf.
func (f *Forest) Rightmost(n NodeID) NodeID {
	for f.nodes[n].kind == KindNonterminal {
		c := f.Last(n)
		if c == None {
			return None
		}
		n = c
	}
	return n
}

// Yield returns the tokens under n.
func (f *Forest) Yield(n NodeID) tokens.Tokens {
	return f.Seq(Single(n))
}
