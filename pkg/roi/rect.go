// Package roi implements region-of-interest selection for the camera
// panel: a normalized rectangle shared between two overlay widgets, the
// pointer-driven state machines that edit it, and the notifier that
// propagates committed rectangles to the camera settings API.
package roi

// Point is a normalized coordinate pair in [0,1]x[0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a normalized rectangle. All fields are fractions of the
// reference frame, independent of sensor resolution or binning.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullFrame returns the sentinel rectangle meaning "no region selected,
// use the entire image". It suppresses masking, handles and dragging.
func FullFrame() Rect {
	return Rect{X: 0, Y: 0, Width: 1, Height: 1}
}

// IsFullFrame reports whether r is the full-frame sentinel.
func (r Rect) IsFullFrame() bool {
	return r.X == 0 && r.Y == 0 && r.Width == 1 && r.Height == 1
}

// Valid reports whether r satisfies the rectangle invariants:
// non-negative origin, positive extent, far edges within the frame.
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= 1 && r.Y+r.Height <= 1
}

// Contains reports whether the normalized point p lies inside r,
// borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Span builds the axis-aligned rectangle spanning two corner points.
func Span(a, b Point) Rect {
	left := min(a.X, b.X)
	top := min(a.Y, b.Y)
	return Rect{
		X:      left,
		Y:      top,
		Width:  max(a.X, b.X) - left,
		Height: max(a.Y, b.Y) - top,
	}
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampTo clamps v to [0, hi].
func clampTo(v, hi float64) float64 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
