package bramble

import "math"

// localBounds returns the node's own content rectangle in its local
// coordinate space, not including children. Sprites are centered on the
// origin; a node with a physics body uses the union with the shape bounds.
// Containers and field/emitter nodes without content have an empty bounds.
func (n *Node) localBounds() (Rect, bool) {
	var r Rect
	have := false
	if n.ContentSize.X > 0 && n.ContentSize.Y > 0 {
		r = Rect{-n.ContentSize.X / 2, -n.ContentSize.Y / 2, n.ContentSize.X, n.ContentSize.Y}
		have = true
	}
	if n.Body != nil && n.Body.shape != nil {
		sb := n.Body.shape.Bounds()
		if sb.Width > 0 || sb.Height > 0 {
			if have {
				r = r.Union(sb)
			} else {
				r = sb
				have = true
			}
		}
	}
	return r, have
}

// transformRectAABB maps the four corners of r through m and returns their
// axis-aligned bounding rectangle. This is what makes rotated children expand
// a parent's accumulated frame to the rotated bounding rectangle rather than
// the pre-rotation one.
func transformRectAABB(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Frame returns the node's own content rectangle in the parent's coordinate
// space, honoring the node's scale and rotation. Children are not included.
func (n *Node) Frame() Rect {
	r, ok := n.localBounds()
	if !ok {
		p := Vec2{n.X, n.Y}
		return Rect{p.X, p.Y, 0, 0}
	}
	return transformRectAABB(computeLocalTransform(n), r)
}

// AccumulatedFrame returns the minimal axis-aligned rectangle enclosing this
// node and all of its descendants, expressed in the node's own coordinate
// space. Recomputed on every call; nothing is cached.
func (n *Node) AccumulatedFrame() Rect {
	r, _ := accumulatedFrame(n)
	return r
}

func accumulatedFrame(n *Node) (Rect, bool) {
	acc, have := n.localBounds()
	for _, child := range n.children {
		cf, ok := accumulatedFrame(child)
		if !ok {
			continue
		}
		mapped := transformRectAABB(computeLocalTransform(child), cf)
		if have {
			acc = acc.Union(mapped)
		} else {
			acc = mapped
			have = true
		}
	}
	return acc, have
}

// ContainsWorldPoint reports whether the world-space point lies inside the
// node's own content bounds.
func (n *Node) ContainsWorldPoint(wx, wy float64) bool {
	r, ok := n.localBounds()
	if !ok {
		return false
	}
	lx, ly := n.WorldToLocal(wx, wy)
	return r.Contains(lx, ly)
}

// NodeAtPoint returns the deepest visible descendant (or the node itself)
// whose content bounds contain the world-space point. Children are tested
// front-to-back (highest ZIndex first). Returns nil if nothing is hit.
func (n *Node) NodeAtPoint(wx, wy float64) *Node {
	if !n.Visible {
		return nil
	}
	sorted := n.sortedChildrenForTraversal()
	for i := len(sorted) - 1; i >= 0; i-- {
		if hit := sorted[i].NodeAtPoint(wx, wy); hit != nil {
			return hit
		}
	}
	if n.ContainsWorldPoint(wx, wy) {
		return n
	}
	return nil
}
