/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: balance.go
Description: Bracket balance checking. Candidate strings that leave a bracket open or
close one that was never opened are never sent to an oracle.
*/

package tokens

import "strings"

// BracketPair is an opening and closing bracket. A token matches a bracket when its
// type or its value equals the bracket text.
type BracketPair struct {
	Open  string `json:"open" mapstructure:"open"`
	Close string `json:"close" mapstructure:"close"`
}

// DefaultBracketPairs covers literal brackets and the lexer names used for them.
func DefaultBracketPairs() []BracketPair {
	return []BracketPair{
		{Open: "(", Close: ")"},
		{Open: "[", Close: "]"},
		{Open: "{", Close: "}"},
		{Open: "L_PAREN", Close: "R_PAREN"},
		{Open: "L_SB", Close: "R_SB"},
		{Open: "L_BRA", Close: "R_BRA"},
		{Open: "L_VIRTUAL", Close: "R_VIRTUAL"},
	}
}

const (
	virtualOpenPrefix  = "L_VP"
	virtualClosePrefix = "R_VP"
)

// Balancer checks that brackets nest properly.
type Balancer struct {
	pairs    []BracketPair
	disabled bool
}

// NewBalancer builds a checker over pairs. With no pairs the defaults are used.
func NewBalancer(pairs []BracketPair) *Balancer {
	if len(pairs) == 0 {
		pairs = DefaultBracketPairs()
	}
	return &Balancer{pairs: pairs}
}

// NoBalance returns a checker that accepts every sequence.
func NoBalance() *Balancer {
	return &Balancer{disabled: true}
}

func matches(t Token, text string) bool {
	return t.Type == text || (t.Value != "" && t.Value == text)
}

// classify returns the opener identity for an opening token, or the expected opener
// identity for a closing token.
func (b *Balancer) classify(t Token) (open string, close string) {
	if strings.HasPrefix(t.Type, virtualOpenPrefix) {
		return "vp:" + strings.TrimPrefix(t.Type, virtualOpenPrefix), ""
	}
	if strings.HasPrefix(t.Type, virtualClosePrefix) {
		return "", "vp:" + strings.TrimPrefix(t.Type, virtualClosePrefix)
	}
	for _, p := range b.pairs {
		if matches(t, p.Open) {
			return p.Open, ""
		}
		if matches(t, p.Close) {
			return "", p.Open
		}
	}
	return "", ""
}

// Balanced reports whether every closing bracket closes the innermost open one and
// nothing is left open.
func (b *Balancer) Balanced(toks Tokens) bool {
	if b == nil || b.disabled {
		return true
	}
	var stack []string
	for _, t := range toks {
		open, close := b.classify(t)
		switch {
		case open != "":
			stack = append(stack, open)
		case close != "":
			if len(stack) == 0 || stack[len(stack)-1] != close {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// BalancedAll reports whether every sequence is balanced.
func (b *Balancer) BalancedAll(seqs []Tokens) bool {
	for _, s := range seqs {
		if !b.Balanced(s) {
			return false
		}
	}
	return true
}
