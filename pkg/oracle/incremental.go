/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: incremental.go
Description: Knowledge accumulated during one inference run: the strings already
verified as members, and the grammar built so far.
*/

package oracle

import (
	"sync"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// Incremental holds the strings verified so far and a recognizer for the current grammar.
type Incremental struct {
	mu         sync.RWMutex
	known      map[string]struct{}
	recognizer *grammar.Recognizer
}

// NewIncremental starts with no knowledge.
func NewIncremental() *Incremental {
	return &Incremental{known: make(map[string]struct{})}
}

// Known reports whether toks was merged before.
func (o *Incremental) Known(toks tokens.Tokens) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.known[tokens.Key(toks)]
	return ok
}

// Merge records items as verified and returns how many were new.
func (o *Incremental) Merge(items []tokens.Tokens) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	added := 0
	for _, item := range items {
		k := tokens.Key(item)
		if _, ok := o.known[k]; ok {
			continue
		}
		o.known[k] = struct{}{}
		added++
	}
	return added
}

// Len is the number of verified strings.
func (o *Incremental) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.known)
}

// SetGrammar replaces the grammar consulted by Derives.
func (o *Incremental) SetGrammar(g *grammar.Grammar) {
	r := grammar.NewRecognizer(g)
	o.mu.Lock()
	o.recognizer = r
	o.mu.Unlock()
}

// Derives reports whether the current grammar generates toks.
func (o *Incremental) Derives(toks tokens.Tokens) bool {
	o.mu.RLock()
	r := o.recognizer
	o.mu.RUnlock()
	return r != nil && r.Recognize(toks)
}
