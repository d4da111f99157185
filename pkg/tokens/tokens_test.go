/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tokens_test.go
Description: Tests for token sequences, contexts and the bracket balance check.
*/

package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyUsesTypeOnly(t *testing.T) {
	a := Tokens{{Type: "NUM", Value: "1"}, {Type: "PLUS", Value: "+"}}
	b := Tokens{{Type: "NUM", Value: "7"}, {Type: "PLUS", Value: "+"}}
	assert.Equal(t, Key(a), Key(b))
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, Key(a), Key(Tokens{{Type: "NUM"}}))
}

func TestKeySeparatesEmptyAndOddTypes(t *testing.T) {
	keys := map[string]Tokens{}
	for name, toks := range map[string]Tokens{
		"empty sequence":    {},
		"one empty type":    {{Type: ""}},
		"two empty types":   {{Type: ""}, {Type: ""}},
		"joined":            {{Type: "ab"}},
		"split":             {{Type: "a"}, {Type: "b"}},
		"separator in type": {{Type: "a\x1fb"}},
		"digits":            {{Type: "1:a"}},
		"digits split":      {{Type: "1"}, {Type: "a"}},
	} {
		k := Key(toks)
		_, dup := keys[k]
		assert.False(t, dup, "%s shares key %q", name, k)
		keys[k] = toks
	}
	assert.Len(t, keys, 8)
}

func TestParseLine(t *testing.T) {
	toks := ParseLine("  a   b\tc ")
	require.Len(t, toks, 3)
	assert.Equal(t, []string{"a", "b", "c"}, toks.Types())
	assert.Equal(t, "a b c", toks.String())

	examples := ParseLines("a b\n\n c d \n")
	require.Len(t, examples, 2)
	assert.Equal(t, "c d", examples[1].String())
}

func TestDedupe(t *testing.T) {
	out := Dedupe([]Tokens{ParseLine("a b"), ParseLine("x"), ParseLine("a b")})
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[1].String())
}

func TestContextAssemble(t *testing.T) {
	example := ParseLine("a b c d")
	ctx, sub := Split(example, 1, 3)
	assert.Equal(t, "b c", sub.String())
	assert.Equal(t, "a _ d", ctx.String())
	assert.Equal(t, "a x d", ctx.Assemble(ParseLine("x")).String())

	// The split must not alias the example when assembling.
	_ = ctx.Assemble(ParseLine("y z"))
	assert.Equal(t, "a b c d", example.String())
}

func TestContextKeyDistinguishesHole(t *testing.T) {
	left := Context{Prefix: ParseLine("a"), Suffix: ParseLine("b c")}
	right := Context{Prefix: ParseLine("a b"), Suffix: ParseLine("c")}
	assert.NotEqual(t, left.Key(), right.Key())
	assert.Equal(t, "_", Context{}.String())
}

func TestBalanced(t *testing.T) {
	b := NewBalancer(nil)

	cases := []struct {
		line string
		want bool
	}{
		{"", true},
		{"a", true},
		{"( a )", true},
		{"( [ a ] )", true},
		{"( a", false},
		{"a )", false},
		{"( [ a ) ]", false},
		{"L_PAREN a R_PAREN", true},
		{"L_SB a R_PAREN", false},
		{"L_VP1 a R_VP1", true},
		{"L_VP1 a R_VP2", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, b.Balanced(ParseLine(tc.line)), tc.line)
	}
}

func TestBalancedByValue(t *testing.T) {
	b := NewBalancer(nil)
	toks := Tokens{{Type: "OPEN", Value: "("}, {Type: "ID", Value: "x"}}
	assert.False(t, b.Balanced(toks))
	toks = append(toks, Token{Type: "CLOSE", Value: ")"})
	assert.True(t, b.Balanced(toks))
}

func TestNoBalance(t *testing.T) {
	assert.True(t, NoBalance().Balanced(ParseLine("( ( (")))
	assert.True(t, NoBalance().BalancedAll([]Tokens{ParseLine(")"), ParseLine("]")}))
}
