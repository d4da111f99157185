/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Context-free grammar representation produced by inference. Productions are
kept per nonterminal in first-seen order with duplicates dropped, so rendering a grammar
is deterministic for a given sequence of folds.
*/

package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a terminal (token type) or a nonterminal name.
type Symbol struct {
	Value    string `json:"value" yaml:"value"`
	Terminal bool   `json:"terminal" yaml:"terminal"`
	// Tag is an optional repetition marker: "?", "*" or "+". Inference never sets it.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// T returns a terminal symbol.
func T(value string) Symbol { return Symbol{Value: value, Terminal: true} }

// N returns a nonterminal symbol.
func N(value string) Symbol { return Symbol{Value: value} }

func (s Symbol) String() string {
	text := s.Value
	if s.Terminal {
		text = strconv.Quote(s.Value)
	}
	return text + s.Tag
}

// Prod is a single production nt -> symbols.
type Prod struct {
	Nonterminal string   `json:"nonterminal" yaml:"nonterminal"`
	Symbols     []Symbol `json:"symbols" yaml:"symbols"`
}

func symbolsKey(symbols []Symbol) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

func (p Prod) String() string {
	return fmt.Sprintf("%s: %s", p.Nonterminal, symbolsKey(p.Symbols))
}

// Rule groups the alternatives of one nonterminal.
type Rule struct {
	Nonterminal  string
	Alternatives [][]Symbol
	seen         map[string]struct{}
}

func newRule(nt string) *Rule {
	return &Rule{Nonterminal: nt, seen: make(map[string]struct{})}
}

func (r *Rule) add(symbols []Symbol) bool {
	key := symbolsKey(symbols)
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	r.Alternatives = append(r.Alternatives, append([]Symbol(nil), symbols...))
	return true
}

func (r *Rule) String() string {
	var b strings.Builder
	pad := strings.Repeat(" ", len(r.Nonterminal))
	for i, alt := range r.Alternatives {
		if i == 0 {
			fmt.Fprintf(&b, "%s: %s", r.Nonterminal, symbolsKey(alt))
			continue
		}
		fmt.Fprintf(&b, "\n%s | %s", pad, symbolsKey(alt))
	}
	return b.String()
}

// Grammar is a start symbol plus rules in first-seen order.
type Grammar struct {
	start string
	rules map[string]*Rule
	order []string
}

// New returns an empty grammar rooted at start.
func New(start string) *Grammar {
	return &Grammar{start: start, rules: make(map[string]*Rule)}
}

// FromProds builds a grammar out of prods.
func FromProds(start string, prods []Prod) *Grammar {
	g := New(start)
	for _, p := range prods {
		g.AddProd(p)
	}
	return g
}

// Start returns the start symbol.
func (g *Grammar) Start() string { return g.start }

// AddProd records p and reports whether it was new.
func (g *Grammar) AddProd(p Prod) bool {
	r, ok := g.rules[p.Nonterminal]
	if !ok {
		r = newRule(p.Nonterminal)
		g.rules[p.Nonterminal] = r
		g.order = append(g.order, p.Nonterminal)
	}
	return r.add(p.Symbols)
}

// Rule returns the rule of nt.
func (g *Grammar) Rule(nt string) (*Rule, bool) {
	r, ok := g.rules[nt]
	return r, ok
}

// Rules returns the rules, start rule first, then in first-seen order.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, 0, len(g.order))
	if r, ok := g.rules[g.start]; ok {
		out = append(out, r)
	}
	for _, nt := range g.order {
		if nt == g.start {
			continue
		}
		out = append(out, g.rules[nt])
	}
	return out
}

// Nonterminals returns the defined nonterminals in rule order.
func (g *Grammar) Nonterminals() []string {
	rules := g.Rules()
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Nonterminal
	}
	return out
}

// Prods flattens the grammar back into productions.
func (g *Grammar) Prods() []Prod {
	var out []Prod
	for _, r := range g.Rules() {
		for _, alt := range r.Alternatives {
			out = append(out, Prod{Nonterminal: r.Nonterminal, Symbols: alt})
		}
	}
	return out
}

// Size is the total number of alternatives.
func (g *Grammar) Size() int {
	n := 0
	for _, r := range g.rules {
		n += len(r.Alternatives)
	}
	return n
}

// HasAlternative reports whether nt has an alternative rendering as alt, for example
// `"a" n1 "c"`.
func (g *Grammar) HasAlternative(nt string, alt string) bool {
	r, ok := g.rules[nt]
	if !ok {
		return false
	}
	_, ok = r.seen[alt]
	return ok
}

func (g *Grammar) String() string {
	rules := g.Rules()
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\n")
}

// Document is the structured export of a grammar.
type Document struct {
	Start string         `json:"start" yaml:"start"`
	Rules []RuleDocument `json:"rules" yaml:"rules"`
}

// RuleDocument lists the rendered alternatives of one nonterminal.
type RuleDocument struct {
	Nonterminal  string   `json:"nonterminal" yaml:"nonterminal"`
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
}

// Export converts the grammar into its structured form.
func (g *Grammar) Export() Document {
	doc := Document{Start: g.start}
	for _, r := range g.Rules() {
		rd := RuleDocument{Nonterminal: r.Nonterminal}
		for _, alt := range r.Alternatives {
			rd.Alternatives = append(rd.Alternatives, symbolsKey(alt))
		}
		doc.Rules = append(doc.Rules, rd)
	}
	return doc
}

// Namer hands out fresh nonterminal names prefix1, prefix2, ...
type Namer struct {
	prefix string
	next   int
}

// NewNamer starts numbering after the start symbol's index 0.
func NewNamer(prefix string) *Namer {
	return &Namer{prefix: prefix, next: 1}
}

// Next returns a name never returned before.
func (n *Namer) Next() string {
	name := fmt.Sprintf("%s%d", n.prefix, n.next)
	n.next++
	return name
}

// Issued is the number of names handed out.
func (n *Namer) Issued() int {
	return n.next - 1
}
