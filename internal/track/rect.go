package track

import "math"

// Rect is an axis-aligned bounding box (x1,y1,x2,y2) in image coordinates.
// Degenerate boxes (x1 > x2 or y1 > y2) are tolerated and treated as having
// zero area.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Area returns the box area, clamping negative extents to zero.
func (r Rect) Area() float64 {
	w := math.Max(0, r.X2-r.X1)
	h := math.Max(0, r.Y2-r.Y1)
	return w * h
}

// Center returns the box center point.
func (r Rect) Center() (x, y float64) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// IoU returns the intersection-over-union of two boxes, in [0, 1].
// A zero union area yields 0, never a fault.
func IoU(a, b Rect) float64 {
	iw := math.Min(a.X2, b.X2) - math.Max(a.X1, b.X1)
	ih := math.Min(a.Y2, b.Y2) - math.Max(a.Y1, b.Y1)
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
