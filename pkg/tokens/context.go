/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: context.go
Description: Contexts are the prefix and suffix surrounding a subsequence inside an
example. Assembling a context with a subsequence yields a candidate string.
*/

package tokens

// Context is the pair of token runs left and right of a hole.
type Context struct {
	Prefix Tokens `json:"prefix"`
	Suffix Tokens `json:"suffix"`
}

// Assemble fills the hole with sub.
func (c Context) Assemble(sub Tokens) Tokens {
	return Concat(c.Prefix, sub, c.Suffix)
}

// Key renders the identity of the context. The hole marker keeps (a, bc) and
// (ab, c) apart.
func (c Context) Key() string {
	return Key(c.Prefix) + "\x1e" + Key(c.Suffix)
}

// String renders the context with an underscore for the hole.
func (c Context) String() string {
	left := c.Prefix.String()
	right := c.Suffix.String()
	switch {
	case left == "" && right == "":
		return "_"
	case left == "":
		return "_ " + right
	case right == "":
		return left + " _"
	default:
		return left + " _ " + right
	}
}

// Split returns the context and subsequence of the half-open span [left, right).
func Split(example Tokens, left, right int) (Context, Tokens) {
	return Context{
		Prefix: example[:left:left],
		Suffix: example[right:len(example):len(example)],
	}, example[left:right:right]
}
