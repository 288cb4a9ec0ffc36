// Package wheel maps a candidate list onto equal angular segments and
// resolves a rotation angle to a single winner.
//
// Segment 0 starts at 0° and segments run clockwise. The pointer is fixed at
// the top of the circle, which is the 270° mark in that coordinate system.
// Everything in this file is a pure function of a rotation value; how the
// value is produced (spin plan, animation, idle drift) lives elsewhere.
package wheel

import "math"

const (
	// FullTurn is one revolution in degrees.
	FullTurn = 360.0
	// PointerAngle is where the fixed pointer sits.
	PointerAngle = 270.0
)

// Segment is the angular slice owned by one candidate.
type Segment struct {
	Index int
	Start float64
	End   float64
}

// Mid is the angle at the centre of the segment, used for label placement.
func (s Segment) Mid() float64 {
	return (s.Start + s.End) / 2
}

// Span is the segment width in degrees.
func (s Segment) Span() float64 {
	return s.End - s.Start
}

// SegmentAngle is 360/n. It panics when n < 1.
func SegmentAngle(n int) float64 {
	if n < 1 {
		panic("wheel: segment angle requires at least one candidate")
	}
	return FullTurn / float64(n)
}

// Segments lays out n contiguous segments starting at 0°.
func Segments(n int) []Segment {
	if n < 1 {
		return nil
	}
	angle := SegmentAngle(n)
	out := make([]Segment, n)
	for i := range out {
		out[i] = Segment{Index: i, Start: float64(i) * angle, End: float64(i+1) * angle}
	}
	return out
}

// Normalize folds an unbounded rotation into [0, 360).
func Normalize(rotation float64) float64 {
	r := math.Mod(rotation, FullTurn)
	if r < 0 {
		r += FullTurn
	}
	if r >= FullTurn {
		r = 0
	}
	return r
}

// PointerPosition is the wheel angle under the pointer for a rotation.
func PointerPosition(rotation float64) float64 {
	return Normalize(PointerAngle - Normalize(rotation) + FullTurn)
}

// IndexAt is the segment under the pointer. It panics when n < 1.
func IndexAt(rotation float64, n int) int {
	angle := SegmentAngle(n)
	idx := int(math.Floor(PointerPosition(rotation)/angle)) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// Resolve returns the item under the pointer. Callers must not pass an
// empty list; doing so panics rather than inventing a winner.
func Resolve[T any](items []T, rotation float64) T {
	if len(items) == 0 {
		panic("wheel: resolve with no candidates")
	}
	return items[IndexAt(rotation, len(items))]
}
