/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: compressed.go
Description: Compressed distributional matrix. Each row stands for a set of raw
subsequences and each column for a set of raw contexts; a cell is the conjunction of
the raw verdicts it covers.
*/

package matrix

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Compressed holds the merged classes of a Distributional matrix.
type Compressed struct {
	rows    []*bitset.BitSet
	rowSets [][]int
	colSets [][]int
}

// NewCompressed starts with one singleton class per raw row and column.
func NewCompressed(d *Distributional) *Compressed {
	c := &Compressed{
		rows:    make([]*bitset.BitSet, len(d.rows)),
		rowSets: make([][]int, len(d.subs)),
		colSets: make([][]int, len(d.cons)),
	}
	for i, r := range d.rows {
		c.rows[i] = r.Clone()
		c.rowSets[i] = []int{i}
	}
	for j := range d.cons {
		c.colSets[j] = []int{j}
	}
	return c
}

// NumRows is the number of row classes.
func (c *Compressed) NumRows() int { return len(c.rows) }

// NumCols is the number of column classes.
func (c *Compressed) NumCols() int { return len(c.colSets) }

// Get returns the cell of row class i and column class j.
func (c *Compressed) Get(i, j int) bool {
	return c.rows[i].Test(uint(j))
}

// RowSet returns the raw subsequence indices of row class i.
func (c *Compressed) RowSet(i int) []int { return c.rowSets[i] }

// ColSet returns the raw context indices of column class j.
func (c *Compressed) ColSet(j int) []int { return c.colSets[j] }

func normalize(block []int) ([]int, string) {
	out := append([]int(nil), block...)
	sort.Ints(out)
	uniq := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			uniq = append(uniq, v)
		}
	}
	parts := make([]string, len(uniq))
	for i, v := range uniq {
		parts[i] = strconv.Itoa(v)
	}
	return uniq, strings.Join(parts, ",")
}

func union(sets [][]int, members []int) []int {
	var all []int
	for _, m := range members {
		all = append(all, sets[m]...)
	}
	out, _ := normalize(all)
	return out
}

// Compress merges the row classes of every row block and the column classes of every
// column block, then drops every class no block refers to. It returns the compacted
// index of each block in input order.
func (c *Compressed) Compress(rowBlocks, colBlocks [][]int) ([]int, []int, error) {
	if err := c.checkBlocks(rowBlocks, len(c.rows), "row"); err != nil {
		return nil, nil, err
	}
	if err := c.checkBlocks(colBlocks, len(c.colSets), "column"); err != nil {
		return nil, nil, err
	}

	// rows: conjunction of member rows over the current columns
	rowMap := make([]int, len(rowBlocks))
	rowByKey := make(map[string]int)
	var merged []*bitset.BitSet
	var rowSets [][]int
	for k, block := range rowBlocks {
		members, key := normalize(block)
		if idx, ok := rowByKey[key]; ok {
			rowMap[k] = idx
			continue
		}
		acc := c.rows[members[0]].Clone()
		for _, m := range members[1:] {
			acc.InPlaceIntersection(c.rows[m])
		}
		rowByKey[key] = len(merged)
		rowMap[k] = len(merged)
		merged = append(merged, acc)
		rowSets = append(rowSets, union(c.rowSets, members))
	}

	// columns: conjunction of member columns, laid out in compacted positions
	colMap := make([]int, len(colBlocks))
	colByKey := make(map[string]int)
	var colMembers [][]int
	var colSets [][]int
	for k, block := range colBlocks {
		members, key := normalize(block)
		if idx, ok := colByKey[key]; ok {
			colMap[k] = idx
			continue
		}
		colByKey[key] = len(colMembers)
		colMap[k] = len(colMembers)
		colMembers = append(colMembers, members)
		colSets = append(colSets, union(c.colSets, members))
	}

	rows := make([]*bitset.BitSet, len(merged))
	for i, src := range merged {
		dst := bitset.New(uint(len(colMembers)))
		for j, members := range colMembers {
			all := true
			for _, m := range members {
				if !src.Test(uint(m)) {
					all = false
					break
				}
			}
			if all {
				dst.Set(uint(j))
			}
		}
		rows[i] = dst
	}

	c.rows = rows
	c.rowSets = rowSets
	c.colSets = colSets
	return rowMap, colMap, nil
}

func (c *Compressed) checkBlocks(blocks [][]int, n int, what string) error {
	for k, block := range blocks {
		if len(block) == 0 {
			return fmt.Errorf("empty %s block %d", what, k)
		}
		for _, m := range block {
			if m < 0 || m >= n {
				return fmt.Errorf("%s block %d refers to class %d of %d", what, k, m, n)
			}
		}
	}
	return nil
}
