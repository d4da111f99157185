/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interval.go
Description: Half-open token intervals and the nesting predicates used to decide
whether two spans of the same example can be folded together.
*/

package interval

import "fmt"

// Interval is the half-open range [Left, Right).
type Interval struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// New returns [left, right).
func New(left, right int) Interval {
	return Interval{Left: left, Right: right}
}

// Len is the number of positions covered.
func (i Interval) Len() int {
	return i.Right - i.Left
}

// IsSuper reports whether i contains o, including equality.
func (i Interval) IsSuper(o Interval) bool {
	return i.Left <= o.Left && o.Right <= i.Right
}

// IsSub reports whether o contains i, including equality.
func (i Interval) IsSub(o Interval) bool {
	return o.IsSuper(i)
}

// IsIntersection reports whether the two intervals share a position.
func (i Interval) IsIntersection(o Interval) bool {
	return i.Left < o.Right && o.Left < i.Right
}

// IsConflict reports whether the intervals overlap without one nesting in the other.
func (i Interval) IsConflict(o Interval) bool {
	return i.IsIntersection(o) && !i.IsSuper(o) && !i.IsSub(o)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Left, i.Right)
}

// Span is an interval anchored in one example.
type Span struct {
	Example int `json:"example"`
	Interval
}

// Conflict reports whether both spans belong to the same example and conflict there.
func (s Span) Conflict(o Span) bool {
	return s.Example == o.Example && s.Interval.IsConflict(o.Interval)
}

func (s Span) String() string {
	return fmt.Sprintf("#%d%s", s.Example, s.Interval)
}
