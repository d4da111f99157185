/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: forest_test.go
Description: Tests for tree construction, bubble queries, folding and extraction.
*/

package tree

import (
	"errors"
	"testing"

	"github.com/kleascm/cfginfer/pkg/interval"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, lines ...string) *Forest {
	t.Helper()
	f := NewForest()
	for _, l := range lines {
		f.Build(tokens.ParseLine(l), "n0")
	}
	return f
}

func TestBuild(t *testing.T) {
	f := build(t, "a b c")
	root := f.Roots()[0]
	children := f.Children(root)
	require.Len(t, children, 3)

	assert.True(t, f.IsRoot(root))
	assert.Equal(t, "n0", f.Name(root))
	assert.Equal(t, children[0], f.Leftmost(root))
	assert.Equal(t, children[2], f.Rightmost(root))
	assert.Equal(t, "a b c", f.Yield(root).String())
	assert.Equal(t, root, f.Parent(children[1]))
	assert.Equal(t, KindLeaf, f.Kind(children[1]))
}

func TestBubbleQueries(t *testing.T) {
	f := build(t, "a b c d")
	c := f.Children(f.Roots()[0])
	b := Bubble{Start: c[1], End: c[2]}

	assert.Equal(t, 2, f.Len(b))
	assert.Equal(t, "b c", f.Seq(b).String())
	assert.Equal(t, "a _ d", f.Context(b).String())
	assert.Equal(t, interval.Span{Example: 0, Interval: interval.New(1, 3)}, f.Span(b))
	assert.Equal(t, `"b" "c"`, f.SymbolKey(b))
	assert.False(t, f.IsNonterminal(b))
	assert.False(t, f.IsProd(Bubble{Start: c[0], End: c[3]}), "root children are not a production")
}

func TestBubblingCountsEveryRun(t *testing.T) {
	f := build(t, "a b c d")
	assert.Len(t, f.Bubbling(f.Roots()[0]), 10)
}

func TestFoldRelinks(t *testing.T) {
	f := build(t, "a b c d")
	root := f.Roots()[0]
	c := f.Children(root)

	nt, err := f.Fold(Bubble{Start: c[1], End: c[2]}, "n1")
	require.NoError(t, err)

	after := f.Children(root)
	require.Len(t, after, 3)
	assert.Equal(t, []NodeID{c[0], nt, c[3]}, after)
	assert.Equal(t, []NodeID{c[1], c[2]}, f.Children(nt))
	assert.Equal(t, nt, f.Parent(c[1]))
	assert.Equal(t, nt, f.Parent(c[2]))
	assert.Equal(t, root, f.Parent(nt))
	assert.Equal(t, "a b c d", f.Yield(root).String())
	assert.Equal(t, "b c", f.Yield(nt).String())

	assert.True(t, f.IsNonterminal(Single(nt)))
	assert.True(t, f.IsProd(Bubble{Start: c[1], End: c[2]}))
	assert.Equal(t, "n0: \"a\" n1 \"d\"\nn1: \"b\" \"c\"", f.Grammar("n0").String())
	assert.Equal(t, interval.New(1, 3), f.Span(Single(nt)).Interval)

	// runs of the new chain
	assert.Len(t, f.Bubbling(root), 6+3)
}

func TestFoldRejectsBrokenSpans(t *testing.T) {
	f := build(t, "a b c", "x y")
	c0 := f.Children(f.Roots()[0])
	c1 := f.Children(f.Roots()[1])

	_, err := f.Fold(Bubble{Start: c0[0], End: c1[1]}, "n1")
	assert.True(t, errors.Is(err, ErrStructuralInconsistency))

	_, err = f.Fold(Bubble{Start: c0[2], End: c0[0]}, "n1")
	assert.True(t, errors.Is(err, ErrStructuralInconsistency))

	_, err = f.Fold(Single(f.Roots()[0]), "n1")
	assert.True(t, errors.Is(err, ErrStructuralInconsistency))

	// nothing was changed by the failed attempts
	assert.Len(t, f.Children(f.Roots()[0]), 3)
}

func TestNodesStopBeforeSentinel(t *testing.T) {
	f := build(t, "a b c d")
	c := f.Children(f.Roots()[0])
	stale := Bubble{Start: c[2], End: c[3]}
	assert.Equal(t, 2, f.Len(stale))

	_, err := f.Fold(Bubble{Start: c[1], End: c[2]}, "n1")
	require.NoError(t, err)

	// c[2] now closes the run of n1
	assert.Equal(t, []NodeID{c[2]}, f.Nodes(stale))
	assert.Equal(t, 1, f.Len(stale))
	for _, n := range f.Nodes(stale) {
		assert.NotEqual(t, KindSentinel, f.Kind(n))
	}
}

func TestExtractFiltersUnbalanced(t *testing.T) {
	f := build(t, "( a )")
	bubbles := f.Extract(tokens.NewBalancer(nil))

	var seqs []string
	for _, b := range bubbles {
		seqs = append(seqs, f.Seq(b).String())
	}
	assert.ElementsMatch(t, []string{"( a )", "a"}, seqs)
	assert.Len(t, f.Extract(tokens.NoBalance()), 6)
}

func TestExtractIsIdempotent(t *testing.T) {
	f := build(t, "( a ) b", "c [ d ]")
	c := f.Children(f.Roots()[0])
	_, err := f.Fold(Bubble{Start: c[0], End: c[2]}, "n1")
	require.NoError(t, err)

	balancer := tokens.NewBalancer(nil)
	first := f.Extract(balancer)
	second := f.Extract(balancer)
	assert.Equal(t, first, second)
}

func TestValuesFollowUnitChains(t *testing.T) {
	f := build(t, "x", "y")
	x := f.Children(f.Roots()[0])[0]
	y := f.Children(f.Roots()[1])[0]

	n1x, err := f.Fold(Single(x), "n1")
	require.NoError(t, err)
	_, err = f.Fold(Single(y), "n1")
	require.NoError(t, err)
	n2, err := f.Fold(Single(n1x), "n2")
	require.NoError(t, err)

	values := f.Values(Single(n2), f.NtIndex())
	var got []string
	for _, v := range values {
		got = append(got, v.String())
	}
	assert.ElementsMatch(t, []string{"x", "y"}, got)
}

func TestPretty(t *testing.T) {
	f := build(t, "a b")
	c := f.Children(f.Roots()[0])
	_, err := f.Fold(Single(c[1]), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n0\n  a\n  n1\n    b\n", f.Pretty(f.Roots()[0]))
}
