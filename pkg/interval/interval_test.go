/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interval_test.go
Description: Tests for interval nesting and conflict predicates.
*/

package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNesting(t *testing.T) {
	outer := New(0, 5)
	inner := New(1, 3)

	assert.True(t, outer.IsSuper(inner))
	assert.True(t, inner.IsSub(outer))
	assert.False(t, inner.IsSuper(outer))
	assert.True(t, outer.IsSuper(outer))
	assert.Equal(t, 2, inner.Len())
}

func TestConflict(t *testing.T) {
	cases := []struct {
		a, b     Interval
		conflict bool
	}{
		{New(0, 2), New(1, 3), true},
		{New(1, 3), New(0, 2), true},
		{New(0, 2), New(2, 4), false},
		{New(0, 4), New(1, 2), false},
		{New(1, 2), New(1, 2), false},
		{New(0, 1), New(3, 4), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.conflict, tc.a.IsConflict(tc.b), "%s vs %s", tc.a, tc.b)
	}
}

func TestSpanConflictNeedsSameExample(t *testing.T) {
	a := Span{Example: 0, Interval: New(0, 2)}
	b := Span{Example: 0, Interval: New(1, 3)}
	c := Span{Example: 1, Interval: New(1, 3)}

	assert.True(t, a.Conflict(b))
	assert.False(t, a.Conflict(c))
	assert.Equal(t, "#0[0, 2)", a.String())
}
