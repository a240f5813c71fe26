package bramble

import (
	"fmt"
	"math"
)

// JointKind identifies the constraint a joint enforces between two bodies.
type JointKind uint8

const (
	JointPin    JointKind = iota // bodies share an anchor point, free rotation (optionally limited)
	JointSpring                  // damped spring between two anchors
	JointFixed                   // bodies rigidly keep their relative placement
	JointLimit                   // bodies may not separate beyond a max length
)

// JointID is an opaque handle to a joint in a world's registry. The zero
// value is never a valid joint. Handles stay valid until the joint is removed
// (explicitly, or cascaded when either body's node is destroyed).
type JointID uint32

// Joint binds two physics bodies, or one body and the world edge when B is
// nil. Construct with the kind functions and register with World.AddJoint,
// which returns the JointID handle used for lookup and removal.
type Joint struct {
	Kind JointKind
	A, B *Body

	// Anchor is the joint's world-space anchor at creation time.
	Anchor Vec2
	// AnchorB is the second anchor for spring and limit joints.
	AnchorB Vec2

	// Spring parameters.
	Frequency float64 // oscillations per second
	Damping   float64 // 0 undamped .. 1 critically damped

	// Pin rotation limits, enabled when ShouldEnableLimits is set.
	ShouldEnableLimits bool
	LowerAngleLimit    float64
	UpperAngleLimit    float64

	// Limit joint maximum separation.
	MaxLength float64

	// Captured at AddJoint time: local offsets from each body's origin to
	// its anchor, and the rest separation.
	localA     Vec2
	localB     Vec2
	restLength float64
	restAngle  float64

	id JointID
}

// NewPinJoint creates a joint that keeps both bodies attached at a shared
// world-space anchor while leaving relative rotation free.
func NewPinJoint(a, b *Body, anchor Vec2) *Joint {
	return &Joint{Kind: JointPin, A: a, B: b, Anchor: anchor}
}

// NewSpringJoint creates a damped spring between anchorA on body a and
// anchorB on body b.
func NewSpringJoint(a, b *Body, anchorA, anchorB Vec2, frequency, damping float64) *Joint {
	return &Joint{
		Kind: JointSpring, A: a, B: b,
		Anchor: anchorA, AnchorB: anchorB,
		Frequency: frequency, Damping: damping,
	}
}

// NewFixedJoint creates a joint that rigidly locks the two bodies' relative
// placement at the anchor.
func NewFixedJoint(a, b *Body, anchor Vec2) *Joint {
	return &Joint{Kind: JointFixed, A: a, B: b, Anchor: anchor}
}

// NewLimitJoint creates a joint that lets the two anchors separate freely up
// to maxLength and no further.
func NewLimitJoint(a, b *Body, anchorA, anchorB Vec2, maxLength float64) *Joint {
	return &Joint{
		Kind: JointLimit, A: a, B: b,
		Anchor: anchorA, AnchorB: anchorB,
		MaxLength: maxLength,
	}
}

// validate checks a joint at registration time.
func (j *Joint) validate() error {
	if j.A == nil {
		return fmt.Errorf("bramble: joint requires body A")
	}
	if j.A == j.B {
		return fmt.Errorf("bramble: joint cannot bind a body to itself")
	}
	if j.Kind == JointSpring {
		if j.Frequency < 0 || math.IsNaN(j.Frequency) {
			return fmt.Errorf("bramble: spring frequency must be non-negative, got %v", j.Frequency)
		}
		if j.Damping < 0 || math.IsNaN(j.Damping) {
			return fmt.Errorf("bramble: spring damping must be non-negative, got %v", j.Damping)
		}
	}
	if j.Kind == JointLimit && j.MaxLength < 0 {
		return fmt.Errorf("bramble: limit joint max length must be non-negative, got %v", j.MaxLength)
	}
	return nil
}

// capture records the body-local anchor offsets and rest configuration.
// Called once when the joint is added to a world.
func (j *Joint) capture() {
	pa := j.A.position()
	j.localA = j.Anchor.Sub(pa)
	if j.B != nil {
		pb := j.B.position()
		anchorB := j.AnchorB
		if j.Kind == JointPin || j.Kind == JointFixed {
			anchorB = j.Anchor
		}
		j.localB = anchorB.Sub(pb)
		j.restAngle = j.B.node.Rotation - j.A.node.Rotation
	} else {
		// World-edge joint: the second anchor is fixed in space.
		if j.Kind == JointPin || j.Kind == JointFixed {
			j.localB = j.Anchor
		} else {
			j.localB = j.AnchorB
		}
	}
	j.restLength = j.worldAnchorA().Sub(j.worldAnchorB()).Length()
}

// worldAnchorA returns body A's anchor in the parent coordinate space.
func (j *Joint) worldAnchorA() Vec2 {
	return j.A.position().Add(j.localA)
}

// worldAnchorB returns the second anchor: body B's, or the fixed world point
// for world-edge joints.
func (j *Joint) worldAnchorB() Vec2 {
	if j.B == nil {
		return j.localB
	}
	return j.B.position().Add(j.localB)
}

// solve applies one corrective pass for the joint. Runs after collision
// resolution, before node constraints, once per solver iteration.
func (j *Joint) solve(dt float64) {
	switch j.Kind {
	case JointPin, JointFixed:
		j.solvePoint(dt)
		if j.Kind == JointFixed || j.ShouldEnableLimits {
			j.solveAngle()
		}
	case JointSpring:
		j.solveSpring(dt)
	case JointLimit:
		j.solveLimit()
	}
}

// solvePoint pulls the two anchors back together, splitting the correction
// by inverse mass.
func (j *Joint) solvePoint(dt float64) {
	pa := j.worldAnchorA()
	pb := j.worldAnchorB()
	delta := pb.Sub(pa)
	dist := delta.Length()
	if dist < 1e-9 {
		return
	}
	invA := j.A.invMass()
	invB := 0.0
	if j.B != nil {
		invB = j.B.invMass()
	}
	total := invA + invB
	if total == 0 {
		return
	}
	j.A.setPosition(j.A.position().Add(delta.Scale(invA / total)))
	if j.B != nil {
		j.B.setPosition(j.B.position().Sub(delta.Scale(invB / total)))
	}
	// Cancel separating velocity along the correction axis.
	n := delta.Scale(1 / dist)
	relVel := j.relativeVelocity()
	sep := relVel.Dot(n)
	if sep != 0 {
		corr := n.Scale(sep)
		j.A.Velocity = j.A.Velocity.Sub(corr.Scale(invA / total))
		if j.B != nil {
			j.B.Velocity = j.B.Velocity.Add(corr.Scale(invB / total))
		}
	}
}

// solveAngle clamps the relative rotation between the two bodies.
func (j *Joint) solveAngle() {
	if j.B == nil || j.B.node == nil || j.A.node == nil {
		return
	}
	rel := j.B.node.Rotation - j.A.node.Rotation - j.restAngle
	var lo, hi float64
	if j.Kind == JointFixed {
		lo, hi = 0, 0
	} else {
		lo, hi = j.LowerAngleLimit, j.UpperAngleLimit
	}
	clamped := math.Min(math.Max(rel, lo), hi)
	if clamped == rel {
		return
	}
	excess := rel - clamped
	invA := j.A.invMoment()
	invB := j.B.invMoment()
	total := invA + invB
	if total == 0 {
		return
	}
	j.A.node.Rotation += excess * (invA / total)
	j.B.node.Rotation -= excess * (invB / total)
	j.A.node.transformDirty = true
	j.B.node.transformDirty = true
}

// solveSpring applies a damped spring force between the anchors. Stiffness
// follows from the frequency: k = (2*pi*f)^2 * m.
func (j *Joint) solveSpring(dt float64) {
	pa := j.worldAnchorA()
	pb := j.worldAnchorB()
	delta := pb.Sub(pa)
	dist := delta.Length()
	if dist < 1e-9 {
		return
	}
	n := delta.Scale(1 / dist)
	stretch := dist - j.restLength

	massA := j.A.Mass()
	massB := math.Inf(1)
	if j.B != nil {
		massB = j.B.Mass()
	}
	effMass := math.Min(massA, massB)
	if math.IsInf(effMass, 1) || effMass <= 0 {
		effMass = math.Max(massA, 1)
	}

	omega := 2 * math.Pi * j.Frequency
	k := omega * omega * effMass
	c := 2 * effMass * omega * j.Damping

	relSpeed := j.relativeVelocity().Dot(n)
	forceMag := k*stretch - c*relSpeed

	impulse := n.Scale(forceMag * dt)
	j.A.ApplyImpulse(impulse)
	if j.B != nil {
		j.B.ApplyImpulse(impulse.Scale(-1))
	}
}

// solveLimit pulls the anchors back when separated beyond MaxLength.
func (j *Joint) solveLimit() {
	pa := j.worldAnchorA()
	pb := j.worldAnchorB()
	delta := pb.Sub(pa)
	dist := delta.Length()
	if dist <= j.MaxLength || dist < 1e-9 {
		return
	}
	excess := delta.Scale((dist - j.MaxLength) / dist)
	invA := j.A.invMass()
	invB := 0.0
	if j.B != nil {
		invB = j.B.invMass()
	}
	total := invA + invB
	if total == 0 {
		return
	}
	j.A.setPosition(j.A.position().Add(excess.Scale(invA / total)))
	if j.B != nil {
		j.B.setPosition(j.B.position().Sub(excess.Scale(invB / total)))
	}
}

// relativeVelocity returns A's velocity relative to B (or to the static
// world for world-edge joints).
func (j *Joint) relativeVelocity() Vec2 {
	if j.B == nil {
		return j.A.Velocity
	}
	return j.A.Velocity.Sub(j.B.Velocity)
}
