/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: recognizer.go
Description: Earley recognizer over token types. Used to check which strings a grammar
derives after a fold. Unit cycles and empty alternatives are handled.
*/

package grammar

import (
	"github.com/kleascm/cfginfer/pkg/tokens"
)

type earleyItem struct {
	nt     string
	alt    int
	dot    int
	origin int
}

type itemSet struct {
	items []earleyItem
	seen  map[earleyItem]struct{}
}

func newItemSet() *itemSet {
	return &itemSet{seen: make(map[earleyItem]struct{})}
}

func (s *itemSet) add(it earleyItem) {
	if _, ok := s.seen[it]; ok {
		return
	}
	s.seen[it] = struct{}{}
	s.items = append(s.items, it)
}

// Recognizer answers membership for one grammar snapshot.
type Recognizer struct {
	start    string
	rules    map[string][][]Symbol
	nullable map[string]bool
}

// NewRecognizer snapshots g. Later changes to g are not seen.
func NewRecognizer(g *Grammar) *Recognizer {
	r := &Recognizer{
		start:    g.start,
		rules:    make(map[string][][]Symbol, len(g.rules)),
		nullable: make(map[string]bool),
	}
	for nt, rule := range g.rules {
		alts := make([][]Symbol, len(rule.Alternatives))
		copy(alts, rule.Alternatives)
		r.rules[nt] = alts
	}
	r.computeNullable()
	return r
}

func (r *Recognizer) computeNullable() {
	for changed := true; changed; {
		changed = false
		for nt, alts := range r.rules {
			if r.nullable[nt] {
				continue
			}
			for _, alt := range alts {
				empty := true
				for _, s := range alt {
					if s.Terminal || !r.nullable[s.Value] {
						empty = false
						break
					}
				}
				if empty {
					r.nullable[nt] = true
					changed = true
					break
				}
			}
		}
	}
}

func (r *Recognizer) next(it earleyItem) (Symbol, bool) {
	alt := r.rules[it.nt][it.alt]
	if it.dot >= len(alt) {
		return Symbol{}, false
	}
	return alt[it.dot], true
}

// Recognize reports whether the grammar derives the type sequence of toks.
func (r *Recognizer) Recognize(toks tokens.Tokens) bool {
	n := len(toks)
	sets := make([]*itemSet, n+1)
	for i := range sets {
		sets[i] = newItemSet()
	}
	for alt := range r.rules[r.start] {
		sets[0].add(earleyItem{nt: r.start, alt: alt})
	}

	for i := 0; i <= n; i++ {
		set := sets[i]
		for k := 0; k < len(set.items); k++ {
			it := set.items[k]
			sym, ok := r.next(it)
			switch {
			case !ok:
				origin := sets[it.origin]
				for j := 0; j < len(origin.items); j++ {
					waiting := origin.items[j]
					if ws, wok := r.next(waiting); wok && !ws.Terminal && ws.Value == it.nt {
						waiting.dot++
						set.add(waiting)
					}
				}
			case sym.Terminal:
				if i < n && toks[i].Type == sym.Value {
					adv := it
					adv.dot++
					sets[i+1].add(adv)
				}
			default:
				for alt := range r.rules[sym.Value] {
					set.add(earleyItem{nt: sym.Value, alt: alt, origin: i})
				}
				if r.nullable[sym.Value] {
					adv := it
					adv.dot++
					set.add(adv)
				}
			}
		}
	}

	for _, it := range sets[n].items {
		if it.nt == r.start && it.origin == 0 {
			if _, ok := r.next(it); !ok {
				return true
			}
		}
	}
	return false
}

// Recognize is a one-shot helper around NewRecognizer.
func (g *Grammar) Recognize(toks tokens.Tokens) bool {
	return NewRecognizer(g).Recognize(toks)
}
