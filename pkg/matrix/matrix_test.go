/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: matrix_test.go
Description: Tests for the distributional matrix and its compressed form. The
compressed cells are checked against a brute-force conjunction over raw cells.
*/

package matrix_test

import (
	"context"
	"hash/fnv"
	"io"
	"sync"
	"testing"

	"github.com/kleascm/cfginfer/pkg/matrix"
	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(tokens.Tokens) bool
}

func newRecorder(fn func(tokens.Tokens) bool) *recorder {
	return &recorder{calls: make(map[string]int), fn: fn}
}

func (r *recorder) Parse(_ context.Context, toks tokens.Tokens) (bool, error) {
	r.mu.Lock()
	r.calls[tokens.Key(toks)]++
	r.mu.Unlock()
	return r.fn(toks), nil
}

func cached(r *recorder) *oracle.CachedOracle {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return oracle.NewCachedOracle(r, oracle.WithLogger(l), oracle.WithWorkers(2))
}

func language(lines ...string) func(tokens.Tokens) bool {
	set := make(map[string]struct{})
	for _, l := range lines {
		set[tokens.Key(tokens.ParseLine(l))] = struct{}{}
	}
	return func(toks tokens.Tokens) bool {
		_, ok := set[tokens.Key(toks)]
		return ok
	}
}

// hashed accepts a pseudo-random but fixed subset of strings.
func hashed(toks tokens.Tokens) bool {
	h := fnv.New32a()
	h.Write([]byte(tokens.Key(toks)))
	return h.Sum32()%3 != 0
}

func TestSubseqsAndContexts(t *testing.T) {
	ex := tokens.ParseLine("a b a")
	subs := matrix.Subseqs(ex, tokens.NoBalance())
	// a, a b, a b a, b, b a
	assert.Len(t, subs, 5)
	cons := matrix.Contexts(ex, tokens.NoBalance())
	assert.Len(t, cons, 6)

	subs = matrix.Subseqs(tokens.ParseLine("( a )"), tokens.NewBalancer(nil))
	assert.Len(t, subs, 2)
}

func TestAddExampleMatchesOracle(t *testing.T) {
	rec := newRecorder(language("a b c", "a d c"))
	d := matrix.NewDistributional(cached(rec), tokens.NewBalancer(nil))
	ctx := context.Background()

	require.NoError(t, d.AddExample(ctx, tokens.ParseLine("a b c")))
	require.NoError(t, d.AddExample(ctx, tokens.ParseLine("a d c")))

	assert.Equal(t, 10, d.NumSubseqs())
	assert.Equal(t, 8, d.NumContexts())

	accepted := 0
	for i := 0; i < d.NumSubseqs(); i++ {
		for j := 0; j < d.NumContexts(); j++ {
			want := rec.fn(d.Context(j).Assemble(d.Subseq(i)))
			assert.Equal(t, want, d.Get(i, j))
			if want {
				accepted++
			}
		}
	}
	assert.Equal(t, 12, accepted)

	for key, n := range rec.calls {
		assert.Equal(t, 1, n, "queried %q more than once", key)
	}
	assert.GreaterOrEqual(t, d.Requested(), len(rec.calls))

	b, ok := d.SubseqIndex(tokens.ParseLine("b"))
	require.True(t, ok)
	hole, ok := d.ContextIndex(tokens.Context{Prefix: tokens.ParseLine("a"), Suffix: tokens.ParseLine("c")})
	require.True(t, ok)
	assert.True(t, d.Get(b, hole))
}

func TestAddSubseqAndContext(t *testing.T) {
	rec := newRecorder(language("x y", "x z"))
	d := matrix.NewDistributional(cached(rec), tokens.NoBalance())
	ctx := context.Background()
	require.NoError(t, d.AddExample(ctx, tokens.ParseLine("x y")))

	z, err := d.AddSubseq(ctx, tokens.ParseLine("z"))
	require.NoError(t, err)
	hole, ok := d.ContextIndex(tokens.Context{Prefix: tokens.ParseLine("x")})
	require.True(t, ok)
	assert.True(t, d.Get(z, hole))

	again, err := d.AddSubseq(ctx, tokens.ParseLine("z"))
	require.NoError(t, err)
	assert.Equal(t, z, again)

	col, err := d.AddContext(ctx, tokens.Context{Suffix: tokens.ParseLine("z")})
	require.NoError(t, err)
	x, _ := d.SubseqIndex(tokens.ParseLine("x"))
	assert.True(t, d.Get(x, col))
	assert.False(t, d.Get(z, col))
}

func TestAddSubseqRejectsUnbalanced(t *testing.T) {
	d := matrix.NewDistributional(cached(newRecorder(hashed)), tokens.NewBalancer(nil))
	_, err := d.AddSubseq(context.Background(), tokens.ParseLine("( a"))
	assert.Error(t, err)
}

func TestAddExampleStopsOnCanceledContext(t *testing.T) {
	d := matrix.NewDistributional(cached(newRecorder(hashed)), tokens.NoBalance())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, d.AddExample(ctx, tokens.ParseLine("a b")))
}

func bruteForce(d *matrix.Distributional, c *matrix.Compressed, i, j int) bool {
	for _, s := range c.RowSet(i) {
		for _, k := range c.ColSet(j) {
			if !d.Get(s, k) {
				return false
			}
		}
	}
	return true
}

func TestCompressKeepsConjunction(t *testing.T) {
	d := matrix.NewDistributional(cached(newRecorder(hashed)), tokens.NoBalance())
	ctx := context.Background()
	require.NoError(t, d.AddExample(ctx, tokens.ParseLine("a b c d")))
	require.NoError(t, d.AddExample(ctx, tokens.ParseLine("a c c")))

	c := matrix.NewCompressed(d)
	require.Equal(t, d.NumSubseqs(), c.NumRows())
	require.Equal(t, d.NumContexts(), c.NumCols())

	rowBlocks := [][]int{{0}, {1, 2}, {2, 1}, {3, 4, 5}, {0, 6}}
	colBlocks := [][]int{{0, 1}, {2}, {3, 4, 1}, {5}}
	rowMap, colMap, err := c.Compress(rowBlocks, colBlocks)
	require.NoError(t, err)

	assert.Equal(t, 4, c.NumRows(), "duplicate blocks collapse and unreferenced rows are trimmed")
	assert.Equal(t, 4, c.NumCols())
	assert.Equal(t, rowMap[1], rowMap[2])
	assert.Equal(t, []int{1, 2}, c.RowSet(rowMap[1]))
	assert.Equal(t, []int{1, 3, 4}, c.ColSet(colMap[2]))

	for i := 0; i < c.NumRows(); i++ {
		for j := 0; j < c.NumCols(); j++ {
			assert.Equal(t, bruteForce(d, c, i, j), c.Get(i, j), "cell %d,%d", i, j)
		}
	}

	// a second round merges classes of classes
	_, _, err = c.Compress([][]int{{0, 1}, {2, 3}}, [][]int{{0, 3}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, c.RowSet(0))
	for i := 0; i < c.NumRows(); i++ {
		for j := 0; j < c.NumCols(); j++ {
			assert.Equal(t, bruteForce(d, c, i, j), c.Get(i, j), "cell %d,%d", i, j)
		}
	}
}

func TestCompressRejectsBadBlocks(t *testing.T) {
	d := matrix.NewDistributional(cached(newRecorder(hashed)), tokens.NoBalance())
	require.NoError(t, d.AddExample(context.Background(), tokens.ParseLine("a b")))
	c := matrix.NewCompressed(d)

	_, _, err := c.Compress([][]int{{}}, [][]int{{0}})
	assert.Error(t, err)
	_, _, err = c.Compress([][]int{{0}}, [][]int{{99}})
	assert.Error(t, err)
	assert.Equal(t, d.NumSubseqs(), c.NumRows(), "failed compress leaves the matrix alone")
}
