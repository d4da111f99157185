/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fold.go
Description: Folding a selected clique and carrying the bubble bookkeeping across the
fold. Surviving bubbles keep approximate classes inherited from the bubble they came
from; the new nonterminal then widens the classes of the bubbles it relates, and the
compressed matrix is reduced to the classes still in use.
*/

package inference

import (
	"sort"

	"github.com/kleascm/cfginfer/pkg/tree"
)

type mapping uint8

const (
	mapKeep mapping = iota
	mapDrop
	mapSelf
	mapToEnd
	mapFromStart
)

// foldOne folds target and maps every bubble onto the new tree. origin carries, for
// each bubble, the index of the pre-clique bubble it descends from.
func (r *run) foldOne(target tree.Bubble, nt string, bubbles []tree.Bubble, origin []int) ([]tree.Bubble, []int, error) {
	found := false
	for _, b := range bubbles {
		if b == target {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, inconsistent("bubble %s vanished before its fold", target)
	}

	owner := r.forest.Owner(target)
	span := r.forest.Span(target).Interval
	actions := make([]mapping, len(bubbles))
	for i, b := range bubbles {
		if r.forest.Owner(b) != owner {
			continue
		}
		s := r.forest.Span(b).Interval
		switch {
		case s.IsConflict(span):
			actions[i] = mapDrop
		case s == span:
			actions[i] = mapSelf
		case s.IsSuper(span) && s.Right == span.Right:
			actions[i] = mapToEnd
		case s.IsSuper(span) && s.Left == span.Left:
			actions[i] = mapFromStart
		}
	}

	node, err := r.forest.Fold(target, nt)
	if err != nil {
		return nil, nil, err
	}

	out := make([]tree.Bubble, 0, len(bubbles)+1)
	outOrigin := make([]int, 0, len(bubbles)+1)
	seen := make(map[tree.Bubble]struct{}, len(bubbles)+1)
	emit := func(b tree.Bubble, from int) {
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		out = append(out, b)
		outOrigin = append(outOrigin, from)
	}
	for i, b := range bubbles {
		switch actions[i] {
		case mapKeep:
			emit(b, origin[i])
		case mapSelf:
			emit(b, origin[i])
			emit(tree.Single(node), origin[i])
		case mapToEnd:
			emit(tree.Bubble{Start: b.Start, End: node}, origin[i])
		case mapFromStart:
			emit(tree.Bubble{Start: node, End: b.End}, origin[i])
		}
	}
	return out, outOrigin, nil
}

// foldClique folds every member under nt, largest first, and rebuilds the classes.
func (r *run) foldClique(members []int, nt string) error {
	targets := append([]int(nil), members...)
	sizes := make(map[int]int, len(targets))
	for _, m := range targets {
		sizes[m] = r.forest.Len(r.bubbles[m])
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return sizes[targets[i]] > sizes[targets[j]]
	})

	bubbles := r.bubbles
	origin := make([]int, len(bubbles))
	for i := range origin {
		origin[i] = i
	}
	for _, m := range targets {
		var err error
		bubbles, origin, err = r.foldOne(r.bubbles[m], nt, bubbles, origin)
		if err != nil {
			return err
		}
	}

	cons := make([]int, len(bubbles))
	subs := make([]int, len(bubbles))
	for i, o := range origin {
		cons[i] = r.cons[o]
		subs[i] = r.subs[o]
	}
	return r.updateClasses(nt, bubbles, cons, subs)
}

// updateClasses widens classes around nt and compresses the matrix accordingly.
func (r *run) updateClasses(nt string, bubbles []tree.Bubble, cons, subs []int) error {
	position := make(map[tree.Bubble]int, len(bubbles))
	ntNodes := make(map[string][]tree.NodeID)
	for i, b := range bubbles {
		position[b] = i
		if r.forest.IsNonterminal(b) {
			name := r.forest.Name(b.Start)
			ntNodes[name] = append(ntNodes[name], b.Start)
		}
	}

	// Occurrences of nt, and nonterminals whose only child is one, stand for every
	// alternative of nt.
	subRelated := r.closure(nt, ntNodes, func(n tree.NodeID) (tree.Bubble, string) {
		b := tree.Single(n)
		if r.forest.IsProd(b) {
			return b, r.forest.Name(r.forest.Parent(n))
		}
		return b, ""
	}, position)

	// The children of each occurrence, and of unit children below, appear wherever
	// nt appears.
	conRelated := r.closure(nt, ntNodes, func(n tree.NodeID) (tree.Bubble, string) {
		b := tree.Bubble{Start: r.forest.First(n), End: r.forest.Last(n)}
		if b.Start == tree.None {
			return b, ""
		}
		if r.forest.IsNonterminal(b) {
			return b, r.forest.Name(b.Start)
		}
		return b, ""
	}, position)

	var ntSubs, ntCons []int
	seenSub := make(map[int]struct{})
	seenCon := make(map[int]struct{})
	for _, n := range ntNodes[nt] {
		i, ok := position[tree.Single(n)]
		if !ok {
			continue
		}
		if _, dup := seenSub[subs[i]]; !dup {
			seenSub[subs[i]] = struct{}{}
			ntSubs = append(ntSubs, subs[i])
		}
		if _, dup := seenCon[cons[i]]; !dup {
			seenCon[cons[i]] = struct{}{}
			ntCons = append(ntCons, cons[i])
		}
	}

	rowBlocks := make([][]int, len(bubbles))
	colBlocks := make([][]int, len(bubbles))
	for i := range bubbles {
		rowBlocks[i] = []int{subs[i]}
		if _, ok := subRelated[i]; ok {
			rowBlocks[i] = append(rowBlocks[i], ntSubs...)
		}
		colBlocks[i] = []int{cons[i]}
		if _, ok := conRelated[i]; ok {
			colBlocks[i] = append(colBlocks[i], ntCons...)
		}
	}

	rowMap, colMap, err := r.cdm.Compress(rowBlocks, colBlocks)
	if err != nil {
		return inconsistent("compress after folding %s: %v", nt, err)
	}
	r.bubbles = bubbles
	r.subs = rowMap
	r.cons = colMap
	return nil
}

// closure walks nonterminal names starting at nt. For each node of a visited name,
// step yields a related bubble and optionally a further name to visit.
func (r *run) closure(nt string, ntNodes map[string][]tree.NodeID, step func(tree.NodeID) (tree.Bubble, string), position map[tree.Bubble]int) map[int]struct{} {
	related := make(map[int]struct{})
	visited := map[string]struct{}{nt: {}}
	queue := []string{nt}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, n := range ntNodes[name] {
			b, next := step(n)
			if i, ok := position[b]; ok {
				related[i] = struct{}{}
			}
			if next == "" {
				continue
			}
			if _, ok := visited[next]; !ok {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return related
}
