package bramble

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order: Scale -> Rotate -> Translate(X, Y).
func computeLocalTransform(n *Node) [6]float64 {
	sin, cos := math.Sincos(n.Rotation)
	return [6]float64{
		cos * n.ScaleX,
		sin * n.ScaleX,
		-sin * n.ScaleY,
		cos * n.ScaleY,
		n.X,
		n.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform recomputes a node's cached worldTransform.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
// The cache exists for the render walk; WorldTransform() below is the
// always-correct on-demand path.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute)
	}
}

// WorldTransform composes the transform chain from the root down to this node
// and returns the resulting affine matrix. Always reflects the current tree,
// including reparenting done earlier in the same frame.
func (n *Node) WorldTransform() [6]float64 {
	local := computeLocalTransform(n)
	if n.Parent == nil {
		return local
	}
	return multiplyAffine(n.Parent.WorldTransform(), local)
}

// WorldPosition returns the node's origin in world coordinates.
func (n *Node) WorldPosition() Vec2 {
	if n.Parent == nil {
		return Vec2{n.X, n.Y}
	}
	x, y := transformPoint(n.Parent.WorldTransform(), n.X, n.Y)
	return Vec2{x, y}
}

// WorldRotation returns the node's accumulated rotation in world space.
// Assumes uniform, non-mirrored ancestor scaling.
func (n *Node) WorldRotation() float64 {
	r := 0.0
	for p := n; p != nil; p = p.Parent {
		r += p.Rotation
	}
	return r
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
// If the node has a physics body, its mass is re-derived from density and
// the scaled shape area on the next read.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.WorldTransform())
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.WorldTransform(), lx, ly)
}
