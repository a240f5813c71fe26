package bramble

import "math"

// ConstraintKind identifies what a corrective constraint clamps.
type ConstraintKind uint8

const (
	ConstraintPositionX ConstraintKind = iota
	ConstraintPositionY
	ConstraintDistance // distance to a target node
	ConstraintRotation // local rotation range
	ConstraintOrient   // face a target node
)

// Constraint is a deterministic corrective rule applied to a node after the
// physics integration and collision phases, never as part of force
// accumulation. Constraints on a node run in list order.
type Constraint struct {
	Kind    ConstraintKind
	Range   Range
	Target  *Node
	Enabled bool
}

// ConstrainX clamps the node's local X position to the range.
func ConstrainX(r Range) *Constraint {
	return &Constraint{Kind: ConstraintPositionX, Range: r, Enabled: true}
}

// ConstrainY clamps the node's local Y position to the range.
func ConstrainY(r Range) *Constraint {
	return &Constraint{Kind: ConstraintPositionY, Range: r, Enabled: true}
}

// ConstrainDistance keeps the node's distance to the target node within the
// range, pulling the node along the separation axis when outside it.
func ConstrainDistance(target *Node, r Range) *Constraint {
	return &Constraint{Kind: ConstraintDistance, Range: r, Target: target, Enabled: true}
}

// ConstrainRotation clamps the node's local rotation to the range (radians).
func ConstrainRotation(r Range) *Constraint {
	return &Constraint{Kind: ConstraintRotation, Range: r, Enabled: true}
}

// ConstrainOrient rotates the node to face the target node. The range is an
// offset applied to the computed angle (Min == Max pins it exactly).
func ConstrainOrient(target *Node) *Constraint {
	return &Constraint{Kind: ConstraintOrient, Target: target, Enabled: true}
}

// apply enforces the constraint on n.
func (c *Constraint) apply(n *Node) {
	if !c.Enabled {
		return
	}
	switch c.Kind {
	case ConstraintPositionX:
		x := c.Range.Clamp(n.X)
		if x != n.X {
			n.X = x
			n.transformDirty = true
		}
	case ConstraintPositionY:
		y := c.Range.Clamp(n.Y)
		if y != n.Y {
			n.Y = y
			n.transformDirty = true
		}
	case ConstraintRotation:
		r := c.Range.Clamp(n.Rotation)
		if r != n.Rotation {
			n.Rotation = r
			n.transformDirty = true
		}
	case ConstraintDistance:
		if c.Target == nil || c.Target.IsDisposed() {
			return
		}
		tp := c.Target.WorldPosition()
		np := n.WorldPosition()
		delta := np.Sub(tp)
		dist := delta.Length()
		clamped := c.Range.Clamp(dist)
		if clamped == dist {
			return
		}
		var dir Vec2
		if dist < 1e-9 {
			dir = Vec2{1, 0}
		} else {
			dir = delta.Scale(1 / dist)
		}
		target := tp.Add(dir.Scale(clamped))
		// Convert the corrected world position back to the parent space.
		if n.Parent != nil {
			lx, ly := n.Parent.WorldToLocal(target.X, target.Y)
			n.X, n.Y = lx, ly
		} else {
			n.X, n.Y = target.X, target.Y
		}
		n.transformDirty = true
	case ConstraintOrient:
		if c.Target == nil || c.Target.IsDisposed() {
			return
		}
		tp := c.Target.WorldPosition()
		np := n.WorldPosition()
		angle := math.Atan2(tp.Y-np.Y, tp.X-np.X)
		if n.Rotation != angle {
			n.Rotation = angle
			n.transformDirty = true
		}
	}
}

// applyConstraints walks the tree depth-first and enforces every enabled
// constraint. This is the corrective pass of the step: consumers needing
// physics-accurate positions must read them after this pass, not after the
// Update phase, to avoid a one-step lag.
func applyConstraints(n *Node) {
	for _, c := range n.Constraints {
		c.apply(n)
	}
	for _, child := range n.children {
		applyConstraints(child)
	}
}
