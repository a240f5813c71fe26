package bramble

import "math"

// manifold describes one resolved overlap between two bodies.
type manifold struct {
	normal Vec2 // unit vector from A toward B
	depth  float64
	point  Vec2
}

// placement is a primitive shape positioned in simulation space. Compound
// shapes expand into one placement per sub-shape; sub-shape centers rotate
// with the body but sub-shape rotation itself is never preserved.
type placement struct {
	shape *Shape
	pos   Vec2
	rot   float64
	sx    float64
	sy    float64
}

// placements expands a body's shape into primitive placements.
func (b *Body) placements(buf []placement) []placement {
	if b.shape == nil || b.shape.degenerate {
		return buf
	}
	pos := b.position()
	rot := 0.0
	sx, sy := 1.0, 1.0
	if b.node != nil {
		rot = b.node.Rotation
		sx, sy = b.node.ScaleX, b.node.ScaleY
	}
	if b.shape.Kind == ShapeCompound {
		for _, sub := range b.shape.Subs {
			if sub.Shape.IsDegenerate() {
				continue
			}
			center := Vec2{sub.Center.X * sx, sub.Center.Y * sy}.Rotated(rot)
			buf = append(buf, placement{sub.Shape, pos.Add(center), rot, sx, sy})
		}
		return buf
	}
	return append(buf, placement{b.shape, pos, rot, sx, sy})
}

// aabb returns the placement's axis-aligned bounds.
func (p placement) aabb() Rect {
	sin, cos := math.Sincos(p.rot)
	m := [6]float64{cos * p.sx, sin * p.sx, -sin * p.sy, cos * p.sy, p.pos.X, p.pos.Y}
	return transformRectAABB(m, p.shape.Bounds())
}

// worldVertices returns the placement outline in simulation space.
func (p placement) worldVertices() []Vec2 {
	local := p.shape.vertices()
	out := make([]Vec2, len(local))
	for i, v := range local {
		out[i] = Vec2{v.X * p.sx, v.Y * p.sy}.Rotated(p.rot).Add(p.pos)
	}
	return out
}

// circleRadius returns the effective radius of a circle placement under the
// node's scale (average of the axis scales for non-uniform scaling).
func (p placement) circleRadius() float64 {
	return p.shape.Radius * (math.Abs(p.sx) + math.Abs(p.sy)) / 2
}

// bodyAABB returns the body's overall simulation-space bounds.
func (b *Body) bodyAABB() (Rect, bool) {
	var buf [4]placement
	ps := b.placements(buf[:0])
	if len(ps) == 0 {
		return Rect{}, false
	}
	r := ps[0].aabb()
	for _, p := range ps[1:] {
		r = r.Union(p.aabb())
	}
	return r, true
}

// collide finds the deepest overlap between two bodies, testing every
// primitive pair for compound shapes.
func collide(a, b *Body) (manifold, bool) {
	var bufA, bufB [4]placement
	pa := a.placements(bufA[:0])
	pb := b.placements(bufB[:0])

	var best manifold
	found := false
	for _, p1 := range pa {
		for _, p2 := range pb {
			if m, ok := collidePlacements(p1, p2); ok {
				if !found || m.depth > best.depth {
					best = m
					found = true
				}
			}
		}
	}
	return best, found
}

func collidePlacements(a, b placement) (manifold, bool) {
	aCircle := a.shape.Kind == ShapeCircle
	bCircle := b.shape.Kind == ShapeCircle
	switch {
	case aCircle && bCircle:
		return collideCircles(a, b)
	case aCircle:
		m, ok := collideCirclePoly(a, b)
		return m, ok
	case bCircle:
		m, ok := collideCirclePoly(b, a)
		if ok {
			m.normal = m.normal.Scale(-1)
		}
		return m, ok
	default:
		return collidePolys(a, b)
	}
}

func collideCircles(a, b placement) (manifold, bool) {
	ra, rb := a.circleRadius(), b.circleRadius()
	delta := b.pos.Sub(a.pos)
	dist := delta.Length()
	if dist >= ra+rb {
		return manifold{}, false
	}
	var n Vec2
	if dist < 1e-9 {
		n = Vec2{0, 1} // coincident centers: arbitrary but stable axis
	} else {
		n = delta.Scale(1 / dist)
	}
	return manifold{
		normal: n,
		depth:  ra + rb - dist,
		point:  a.pos.Add(n.Scale(ra - (ra+rb-dist)/2)),
	}, true
}

// collideCirclePoly tests circle a against polygon/box b. The returned normal
// points from the circle toward the polygon.
func collideCirclePoly(a, b placement) (manifold, bool) {
	verts := b.worldVertices()
	r := a.circleRadius()

	closest := verts[0]
	bestDistSq := math.Inf(1)
	for i := range verts {
		p := closestPointOnSegment(a.pos, verts[i], verts[(i+1)%len(verts)])
		d := a.pos.Sub(p).LengthSq()
		if d < bestDistSq {
			bestDistSq = d
			closest = p
		}
	}

	inside := pointInPolygon(a.pos, verts)
	dist := math.Sqrt(bestDistSq)
	if !inside && dist >= r {
		return manifold{}, false
	}

	var n Vec2
	var depth float64
	if inside {
		// Center inside the polygon: expel through the closest edge. The
		// normal points from the exit back toward the interior so the
		// correction carries the circle out the nearest way.
		if dist < 1e-9 {
			n = Vec2{0, 1}
		} else {
			n = a.pos.Sub(closest).Scale(1 / dist)
		}
		depth = r + dist
	} else {
		if dist < 1e-9 {
			n = Vec2{0, 1}
		} else {
			n = closest.Sub(a.pos).Scale(1 / dist)
		}
		depth = r - dist
	}
	return manifold{normal: n, depth: depth, point: closest}, true
}

// collidePolys runs SAT over both polygons' edge normals.
func collidePolys(a, b placement) (manifold, bool) {
	va := a.worldVertices()
	vb := b.worldVertices()

	minDepth := math.Inf(1)
	var minAxis Vec2
	for _, pair := range [2][2][]Vec2{{va, vb}, {vb, va}} {
		for i := range pair[0] {
			edge := pair[0][(i+1)%len(pair[0])].Sub(pair[0][i])
			axis := edge.Perp().Normalized()
			lo1, hi1 := projectOntoAxis(va, axis)
			lo2, hi2 := projectOntoAxis(vb, axis)
			overlap := math.Min(hi1, hi2) - math.Max(lo1, lo2)
			if overlap <= 0 {
				return manifold{}, false
			}
			if overlap < minDepth {
				minDepth = overlap
				minAxis = axis
			}
		}
	}

	// Orient the normal from A toward B.
	centerA := polygonCenter(va)
	centerB := polygonCenter(vb)
	if centerB.Sub(centerA).Dot(minAxis) < 0 {
		minAxis = minAxis.Scale(-1)
	}
	return manifold{
		normal: minAxis,
		depth:  minDepth,
		point:  centerA.Add(centerB).Scale(0.5),
	}, true
}

// resolveManifold applies positional correction and an impulse response to
// the overlapping pair, honoring the one-sided response rule: only bodies
// whose own collision mask matched are displaced.
func resolveManifold(a, b *Body, m manifold) {
	respA := respondsToCollision(a, b)
	respB := respondsToCollision(b, a)

	invA := 0.0
	if respA {
		invA = a.invMass()
	}
	invB := 0.0
	if respB {
		invB = b.invMass()
	}
	total := invA + invB
	if total == 0 {
		return
	}

	// Positional correction: split the full depth by inverse mass.
	// The world re-detects each solver pass, so each pass corrects fully.
	corr := m.normal.Scale(m.depth / total)
	if invA > 0 {
		a.setPosition(a.position().Sub(corr.Scale(invA)))
	}
	if invB > 0 {
		b.setPosition(b.position().Add(corr.Scale(invB)))
	}

	// Impulse response along the normal.
	relVel := b.Velocity.Sub(a.Velocity)
	velAlongNormal := relVel.Dot(m.normal)
	if velAlongNormal > 0 {
		return // already separating
	}

	e := math.Max(a.Restitution, b.Restitution)
	jn := -(1 + e) * velAlongNormal / total
	impulse := m.normal.Scale(jn)
	if invA > 0 {
		a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
	}
	if invB > 0 {
		b.Velocity = b.Velocity.Add(impulse.Scale(invB))
	}

	// Friction: tangential impulse clamped by the Coulomb cone.
	relVel = b.Velocity.Sub(a.Velocity)
	tangent := relVel.Sub(m.normal.Scale(relVel.Dot(m.normal)))
	tLen := tangent.Length()
	if tLen < 1e-9 {
		return
	}
	tangent = tangent.Scale(1 / tLen)
	jt := -relVel.Dot(tangent) / total
	mu := math.Sqrt(math.Abs(a.Friction * b.Friction))
	maxJt := math.Abs(jn) * mu
	if jt > maxJt {
		jt = maxJt
	} else if jt < -maxJt {
		jt = -maxJt
	}
	fImpulse := tangent.Scale(jt)
	if invA > 0 {
		a.Velocity = a.Velocity.Sub(fImpulse.Scale(invA))
	}
	if invB > 0 {
		b.Velocity = b.Velocity.Add(fImpulse.Scale(invB))
	}

	// Angular response from the normal impulse about the contact point.
	if invA > 0 && a.AllowsRotation {
		r := m.point.Sub(a.position())
		a.AngularVelocity -= r.Cross(impulse) * a.invMoment()
	}
	if invB > 0 && b.AllowsRotation {
		r := m.point.Sub(b.position())
		b.AngularVelocity += r.Cross(impulse) * b.invMoment()
	}
}

// --- Geometry helpers ---

func closestPointOnSegment(p, a, b Vec2) Vec2 {
	ab := b.Sub(a)
	lenSq := ab.LengthSq()
	if lenSq < 1e-12 {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

func pointInPolygon(p Vec2, verts []Vec2) bool {
	inside := false
	for i, j := 0, len(verts)-1; i < len(verts); j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

func projectOntoAxis(verts []Vec2, axis Vec2) (lo, hi float64) {
	lo = verts[0].Dot(axis)
	hi = lo
	for _, v := range verts[1:] {
		d := v.Dot(axis)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

func polygonCenter(verts []Vec2) Vec2 {
	var c Vec2
	for _, v := range verts {
		c = c.Add(v)
	}
	return c.Scale(1 / float64(len(verts)))
}
