/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tokens.go
Description: Token sequences for grammar inference. Tokens compare by their type only,
so every map keyed on a sequence uses Key, which renders the type sequence.
*/

package tokens

import (
	"strconv"
	"strings"
)

// Token is a lexical unit of an example. Two tokens are equal when their types are.
type Token struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Text returns the concrete text of the token, falling back to its type.
func (t Token) Text() string {
	if t.Value != "" {
		return t.Value
	}
	return t.Type
}

// Tokens is an ordered token sequence.
type Tokens []Token

// Key renders the identity of a sequence. Each type is prefixed with its length, so
// distinct sequences never share a key whatever bytes their types hold.
func Key(toks Tokens) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(strconv.Itoa(len(t.Type)))
		b.WriteByte(':')
		b.WriteString(t.Type)
	}
	return b.String()
}

// Key renders the identity of the sequence.
func (ts Tokens) Key() string {
	return Key(ts)
}

// Types returns the type of every token.
func (ts Tokens) Types() []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Type
	}
	return out
}

// String joins the token texts with single spaces.
func (ts Tokens) String() string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Text()
	}
	return strings.Join(parts, " ")
}

// Equal reports whether both sequences have the same types in the same order.
func (ts Tokens) Equal(other Tokens) bool {
	if len(ts) != len(other) {
		return false
	}
	for i := range ts {
		if ts[i].Type != other[i].Type {
			return false
		}
	}
	return true
}

// Concat returns a fresh sequence holding the given sequences in order.
func Concat(parts ...Tokens) Tokens {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Tokens, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// ParseLine splits a line on whitespace. Each word becomes a token whose type and
// value are the word itself.
func ParseLine(line string) Tokens {
	fields := strings.Fields(line)
	out := make(Tokens, len(fields))
	for i, f := range fields {
		out[i] = Token{Type: f, Value: f}
	}
	return out
}

// ParseLines parses every non-empty line of text as one example.
func ParseLines(text string) []Tokens {
	var out []Tokens
	for _, line := range strings.Split(text, "\n") {
		toks := ParseLine(line)
		if len(toks) == 0 {
			continue
		}
		out = append(out, toks)
	}
	return out
}

// Dedupe drops later examples whose key repeats an earlier one.
func Dedupe(examples []Tokens) []Tokens {
	seen := make(map[string]struct{}, len(examples))
	out := make([]Tokens, 0, len(examples))
	for _, ex := range examples {
		k := Key(ex)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ex)
	}
	return out
}
