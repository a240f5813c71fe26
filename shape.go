package bramble

import (
	"fmt"
	"image"
	"math"
)

// ShapeKind identifies the geometry of a physics shape.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapePolygon
	ShapeCompound
)

// maxMaskDimension is the largest texture edge accepted by ShapeFromAlphaMask.
// Exceeding it is a hard error: silently truncating the mask would corrupt
// any physics derived from it.
const maxMaskDimension = 4096

// Shape is immutable physics geometry, expressed in the owning body's local
// coordinate space with the origin at the shape center.
type Shape struct {
	Kind   ShapeKind
	Radius float64 // ShapeCircle
	Width  float64 // ShapeBox
	Height float64 // ShapeBox
	Points []Vec2  // ShapePolygon, counterclockwise winding
	Subs   []SubShape

	area       float64
	bounds     Rect
	degenerate bool
}

// SubShape is one component of a compound shape, placed at Center in the
// compound's local space. Sub-shape rotation is never preserved.
type SubShape struct {
	Shape  *Shape
	Center Vec2
}

// CircleShape returns a circle of the given radius centered on the origin.
// A non-positive radius yields a degenerate (inert) shape.
func CircleShape(radius float64) *Shape {
	s := &Shape{Kind: ShapeCircle, Radius: radius}
	if radius <= 0 {
		s.degenerate = true
		return s
	}
	s.area = math.Pi * radius * radius
	s.bounds = Rect{-radius, -radius, 2 * radius, 2 * radius}
	return s
}

// BoxShape returns a rectangle of the given size centered on the origin.
// A non-positive width or height yields a degenerate (inert) shape.
func BoxShape(width, height float64) *Shape {
	s := &Shape{Kind: ShapeBox, Width: width, Height: height}
	if width <= 0 || height <= 0 {
		s.degenerate = true
		return s
	}
	s.area = width * height
	s.bounds = Rect{-width / 2, -height / 2, width, height}
	return s
}

// PolygonShape returns a convex polygon from the given counterclockwise
// points. Fewer than three points is a construction error (malformed
// geometry); a zero-area or self-intersecting outline is accepted but
// degenerate — the resulting body is inert rather than failing fatally.
func PolygonShape(points []Vec2) (*Shape, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("bramble: polygon needs at least 3 points, got %d", len(points))
	}
	pts := make([]Vec2, len(points))
	copy(pts, points)
	s := &Shape{Kind: ShapePolygon, Points: pts}

	area := shoelaceArea(pts)
	if math.Abs(area) < 1e-9 || polygonSelfIntersects(pts) {
		s.degenerate = true
		return s, nil
	}
	if area < 0 {
		// Normalize to counterclockwise winding.
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
		area = -area
	}
	s.area = area
	s.bounds = pointsBounds(pts)
	return s, nil
}

// CompoundShape combines sub-shapes into a single shape. Without explicit
// center offsets every sub-shape is recentered to the compound's local
// origin, discarding its original placement.
func CompoundShape(shapes []*Shape) *Shape {
	subs := make([]SubShape, len(shapes))
	for i, sh := range shapes {
		subs[i] = SubShape{Shape: sh}
	}
	return compoundFromSubs(subs)
}

// CompoundShapeWithCenters combines sub-shapes placed at the given center
// offsets. len(centers) must equal len(shapes).
func CompoundShapeWithCenters(shapes []*Shape, centers []Vec2) (*Shape, error) {
	if len(shapes) != len(centers) {
		return nil, fmt.Errorf("bramble: compound shape: %d shapes but %d centers", len(shapes), len(centers))
	}
	subs := make([]SubShape, len(shapes))
	for i, sh := range shapes {
		subs[i] = SubShape{Shape: sh, Center: centers[i]}
	}
	return compoundFromSubs(subs), nil
}

func compoundFromSubs(subs []SubShape) *Shape {
	s := &Shape{Kind: ShapeCompound, Subs: subs}
	have := false
	for _, sub := range subs {
		if sub.Shape == nil || sub.Shape.degenerate {
			continue
		}
		s.area += sub.Shape.area
		b := sub.Shape.bounds
		b.X += sub.Center.X
		b.Y += sub.Center.Y
		if have {
			s.bounds = s.bounds.Union(b)
		} else {
			s.bounds = b
			have = true
		}
	}
	if !have {
		s.degenerate = true
	}
	return s
}

// ShapeFromAlphaMask traces the opaque extent of an image and returns a box
// shape covering it, centered on the origin. Pixels with alpha at or above
// threshold (0-255) count as opaque. Images larger than the platform limit
// on either edge fail with an error; the operation is aborted rather than
// truncated.
func ShapeFromAlphaMask(img image.Image, threshold uint8) (*Shape, error) {
	b := img.Bounds()
	if b.Dx() > maxMaskDimension || b.Dy() > maxMaskDimension {
		return nil, fmt.Errorf("bramble: alpha mask %dx%d exceeds the %d pixel limit",
			b.Dx(), b.Dy(), maxMaskDimension)
	}
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if uint8(a>>8) >= threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		// Fully transparent: degenerate shape, inert body.
		return BoxShape(0, 0), nil
	}
	return BoxShape(float64(maxX-minX+1), float64(maxY-minY+1)), nil
}

// Area returns the shape's area. Read-only: area is always derived from the
// geometry.
func (s *Shape) Area() float64 {
	return s.area
}

// Bounds returns the shape's local-space AABB.
func (s *Shape) Bounds() Rect {
	return s.bounds
}

// IsDegenerate reports whether the shape has no usable area. Bodies with a
// degenerate shape never collide or generate contacts.
func (s *Shape) IsDegenerate() bool {
	return s == nil || s.degenerate
}

// vertices returns the shape outline as local-space points for SAT testing.
// Circles return nil (handled analytically). Boxes return their corners.
func (s *Shape) vertices() []Vec2 {
	switch s.Kind {
	case ShapeBox:
		hw, hh := s.Width/2, s.Height/2
		return []Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	case ShapePolygon:
		return s.Points
	}
	return nil
}

// shoelaceArea returns the signed area of a polygon (positive when
// counterclockwise in a Y-up frame).
func shoelaceArea(pts []Vec2) float64 {
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// polygonSelfIntersects reports whether any two non-adjacent edges cross.
// O(n^2); polygon shapes are small.
func polygonSelfIntersects(pts []Vec2) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		a1 := pts[i]
		a2 := pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (they share an endpoint).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := pts[j]
			b2 := pts[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(a1, a2, b1, b2 Vec2) bool {
	d1 := a2.Sub(a1).Cross(b1.Sub(a1))
	d2 := a2.Sub(a1).Cross(b2.Sub(a1))
	d3 := b2.Sub(b1).Cross(a1.Sub(b1))
	d4 := b2.Sub(b1).Cross(a2.Sub(b1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func pointsBounds(pts []Vec2) Rect {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}
