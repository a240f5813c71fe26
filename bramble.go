package bramble

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, velocities, forces, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the 2D cross product (the Z component of the 3D cross).
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSq returns the squared length of v. Cheaper than Length when only
// comparing magnitudes.
func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalized returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns v rotated 90 degrees counterclockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Rotated returns v rotated by the given angle in radians.
func (v Vec2) Rotated(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle enclosing both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Range is a general-purpose min/max range.
// Used by constraints, particle emitters, and joint limits.
type Range struct {
	Min, Max float64
}

// Clamp returns v limited to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// MaskAll matches every category. MaskNone matches no category.
const (
	MaskAll  uint32 = 0xFFFFFFFF
	MaskNone uint32 = 0
)
