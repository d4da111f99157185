/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar_test.go
Description: Tests for grammar construction, rendering and the Earley recognizer.
*/

package grammar

import (
	"testing"

	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abcGrammar() *Grammar {
	return FromProds("n0", []Prod{
		{Nonterminal: "n0", Symbols: []Symbol{T("a"), N("n1"), T("c")}},
		{Nonterminal: "n1", Symbols: []Symbol{T("b")}},
		{Nonterminal: "n1", Symbols: []Symbol{T("d")}},
		{Nonterminal: "n1", Symbols: []Symbol{T("b")}},
	})
}

func TestAddProdDeduplicates(t *testing.T) {
	g := abcGrammar()
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, []string{"n0", "n1"}, g.Nonterminals())
	assert.False(t, g.AddProd(Prod{Nonterminal: "n1", Symbols: []Symbol{T("d")}}))
	assert.True(t, g.HasAlternative("n0", `"a" n1 "c"`))
	assert.True(t, g.HasAlternative("n1", `"d"`))
	assert.False(t, g.HasAlternative("n2", `"d"`))
}

func TestStartRuleRendersFirst(t *testing.T) {
	g := New("n0")
	g.AddProd(Prod{Nonterminal: "n1", Symbols: []Symbol{T("x")}})
	g.AddProd(Prod{Nonterminal: "n0", Symbols: []Symbol{N("n1")}})

	assert.Equal(t, "n0: n1\nn1: \"x\"", g.String())
	require.Len(t, g.Prods(), 2)
	assert.Equal(t, "n0", g.Prods()[0].Nonterminal)
}

func TestRuleString(t *testing.T) {
	r, ok := abcGrammar().Rule("n1")
	require.True(t, ok)
	assert.Equal(t, "n1: \"b\"\n   | \"d\"", r.String())
}

func TestExport(t *testing.T) {
	doc := abcGrammar().Export()
	assert.Equal(t, "n0", doc.Start)
	require.Len(t, doc.Rules, 2)
	assert.Equal(t, []string{`"b"`, `"d"`}, doc.Rules[1].Alternatives)
}

func TestRecognize(t *testing.T) {
	g := abcGrammar()
	assert.True(t, g.Recognize(tokens.ParseLine("a b c")))
	assert.True(t, g.Recognize(tokens.ParseLine("a d c")))
	assert.False(t, g.Recognize(tokens.ParseLine("a c")))
	assert.False(t, g.Recognize(tokens.ParseLine("a b d c")))
	assert.False(t, g.Recognize(nil))
}

func TestRecognizeRecursion(t *testing.T) {
	g := FromProds("n0", []Prod{
		{Nonterminal: "n0", Symbols: []Symbol{N("n1")}},
		{Nonterminal: "n1", Symbols: []Symbol{T("("), N("n1"), T(")")}},
		{Nonterminal: "n1", Symbols: []Symbol{T("a")}},
		{Nonterminal: "n1", Symbols: []Symbol{N("n1"), N("n1")}},
	})
	r := NewRecognizer(g)
	assert.True(t, r.Recognize(tokens.ParseLine("( ( a ) )")))
	assert.True(t, r.Recognize(tokens.ParseLine("a ( a ) a")))
	assert.False(t, r.Recognize(tokens.ParseLine("( a")))
}

func TestRecognizeUnitCycleAndEmpty(t *testing.T) {
	g := FromProds("n0", []Prod{
		{Nonterminal: "n0", Symbols: []Symbol{N("n1"), T("x")}},
		{Nonterminal: "n1", Symbols: []Symbol{N("n2")}},
		{Nonterminal: "n2", Symbols: []Symbol{N("n1")}},
		{Nonterminal: "n2", Symbols: nil},
		{Nonterminal: "n2", Symbols: []Symbol{T("y")}},
	})
	assert.True(t, g.Recognize(tokens.ParseLine("x")))
	assert.True(t, g.Recognize(tokens.ParseLine("y x")))
	assert.False(t, g.Recognize(tokens.ParseLine("y y x")))
}

func TestNamer(t *testing.T) {
	n := NewNamer("n")
	assert.Equal(t, "n1", n.Next())
	assert.Equal(t, "n2", n.Next())
	assert.Equal(t, 2, n.Issued())
}
