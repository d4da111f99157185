/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: distributional.go
Description: Distributional matrix of oracle verdicts. Rows are the distinct
subsequences of the examples, columns their distinct contexts, and a cell records
whether the oracle accepts the context filled with the subsequence. The matrix grows
lazily and never asks for a cell twice.
*/

package matrix

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// Membership answers a batch of candidate strings, keyed by tokens.Key. Failures count
// as rejections.
type Membership interface {
	Batch(ctx context.Context, items []tokens.Tokens) map[string]bool
}

// Distributional is the uncompressed matrix.
type Distributional struct {
	oracle   Membership
	balancer *tokens.Balancer

	subs     []tokens.Tokens
	subIndex map[string]int
	cons     []tokens.Context
	conIndex map[string]int
	rows     []*bitset.BitSet

	requested int
}

// NewDistributional returns an empty matrix that queries m and keeps only rows and
// columns accepted by balancer.
func NewDistributional(m Membership, balancer *tokens.Balancer) *Distributional {
	return &Distributional{
		oracle:   m,
		balancer: balancer,
		subIndex: make(map[string]int),
		conIndex: make(map[string]int),
	}
}

// Subseqs lists the distinct balanced non-empty substrings of example.
func Subseqs(example tokens.Tokens, balancer *tokens.Balancer) []tokens.Tokens {
	var out []tokens.Tokens
	seen := make(map[string]struct{})
	for l := 0; l < len(example); l++ {
		for r := l + 1; r <= len(example); r++ {
			_, sub := tokens.Split(example, l, r)
			if !balancer.Balanced(sub) {
				continue
			}
			k := tokens.Key(sub)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, sub)
		}
	}
	return out
}

// Contexts lists the distinct contexts of the balanced substrings of example.
func Contexts(example tokens.Tokens, balancer *tokens.Balancer) []tokens.Context {
	var out []tokens.Context
	seen := make(map[string]struct{})
	for l := 0; l < len(example); l++ {
		for r := l + 1; r <= len(example); r++ {
			ctx, sub := tokens.Split(example, l, r)
			if !balancer.Balanced(sub) {
				continue
			}
			k := ctx.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, ctx)
		}
	}
	return out
}

type cell struct {
	row, col int
	key      string
}

// fill queries the given cells in one batch and records accepted ones.
func (d *Distributional) fill(ctx context.Context, cells []cell, items []tokens.Tokens) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.requested += len(items)
	verdicts := d.oracle.Batch(ctx, items)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("matrix batch interrupted: %w", err)
	}
	for _, c := range cells {
		if verdicts[c.key] {
			d.rows[c.row].Set(uint(c.col))
		}
	}
	return nil
}

type pending struct {
	cells []cell
	items []tokens.Tokens
	seen  map[string]struct{}
}

func newPending() *pending {
	return &pending{seen: make(map[string]struct{})}
}

func (p *pending) add(row, col int, candidate tokens.Tokens) {
	k := tokens.Key(candidate)
	p.cells = append(p.cells, cell{row: row, col: col, key: k})
	if _, ok := p.seen[k]; ok {
		return
	}
	p.seen[k] = struct{}{}
	p.items = append(p.items, candidate)
}

func (d *Distributional) appendRow(sub tokens.Tokens) int {
	i := len(d.subs)
	d.subs = append(d.subs, sub)
	d.subIndex[tokens.Key(sub)] = i
	d.rows = append(d.rows, bitset.New(uint(len(d.cons))))
	return i
}

func (d *Distributional) appendCol(con tokens.Context) int {
	j := len(d.cons)
	d.cons = append(d.cons, con)
	d.conIndex[con.Key()] = j
	return j
}

// AddSubseq adds a row for sub, querying it in every known context.
func (d *Distributional) AddSubseq(ctx context.Context, sub tokens.Tokens) (int, error) {
	if i, ok := d.subIndex[tokens.Key(sub)]; ok {
		return i, nil
	}
	if !d.balancer.Balanced(sub) {
		return -1, fmt.Errorf("unbalanced subsequence %q", sub.String())
	}
	i := d.appendRow(sub)
	p := newPending()
	for j, con := range d.cons {
		p.add(i, j, con.Assemble(sub))
	}
	return i, d.fill(ctx, p.cells, p.items)
}

// AddContext adds a column for con, querying it with every known subsequence.
func (d *Distributional) AddContext(ctx context.Context, con tokens.Context) (int, error) {
	if j, ok := d.conIndex[con.Key()]; ok {
		return j, nil
	}
	if !d.balancer.Balanced(tokens.Concat(con.Prefix, con.Suffix)) {
		return -1, fmt.Errorf("unbalanced context %q", con.String())
	}
	j := d.appendCol(con)
	p := newPending()
	for i, sub := range d.subs {
		p.add(i, j, con.Assemble(sub))
	}
	return j, d.fill(ctx, p.cells, p.items)
}

// AddExample extends the matrix with the subsequences and contexts of example using a
// single deduplicated oracle batch.
func (d *Distributional) AddExample(ctx context.Context, example tokens.Tokens) error {
	oldSubs, oldCons := len(d.subs), len(d.cons)
	for _, sub := range Subseqs(example, d.balancer) {
		if _, ok := d.subIndex[tokens.Key(sub)]; !ok {
			d.appendRow(sub)
		}
	}
	for _, con := range Contexts(example, d.balancer) {
		if _, ok := d.conIndex[con.Key()]; !ok {
			d.appendCol(con)
		}
	}

	p := newPending()
	for i := oldSubs; i < len(d.subs); i++ {
		for j, con := range d.cons {
			p.add(i, j, con.Assemble(d.subs[i]))
		}
	}
	for i := 0; i < oldSubs; i++ {
		for j := oldCons; j < len(d.cons); j++ {
			p.add(i, j, d.cons[j].Assemble(d.subs[i]))
		}
	}
	return d.fill(ctx, p.cells, p.items)
}

// NumSubseqs is the number of rows.
func (d *Distributional) NumSubseqs() int { return len(d.subs) }

// NumContexts is the number of columns.
func (d *Distributional) NumContexts() int { return len(d.cons) }

// Subseq returns row i.
func (d *Distributional) Subseq(i int) tokens.Tokens { return d.subs[i] }

// Context returns column j.
func (d *Distributional) Context(j int) tokens.Context { return d.cons[j] }

// SubseqIndex finds the row of sub.
func (d *Distributional) SubseqIndex(sub tokens.Tokens) (int, bool) {
	i, ok := d.subIndex[tokens.Key(sub)]
	return i, ok
}

// ContextIndex finds the column of con.
func (d *Distributional) ContextIndex(con tokens.Context) (int, bool) {
	j, ok := d.conIndex[con.Key()]
	return j, ok
}

// Get returns the verdict for row i and column j.
func (d *Distributional) Get(i, j int) bool {
	return d.rows[i].Test(uint(j))
}

// Requested is the number of strings handed to the oracle, duplicates across batches
// included.
func (d *Distributional) Requested() int { return d.requested }
