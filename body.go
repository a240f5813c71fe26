package bramble

import (
	"fmt"
	"math"
)

// Default material properties, matching common engine defaults.
const (
	defaultDensity     = 1.0
	defaultRestitution = 0.2
	defaultFriction    = 0.2
)

// Body is the physics state attached to exactly one node. The node owns the
// body; the body back-references the node for transform access.
//
// Mass and density are mutually derived through the shape area: setting one
// recomputes the other, and mass is always re-derived as density*area after
// any shape or scale change. Area itself is read-only.
type Body struct {
	node  *Node
	shape *Shape

	density float64

	// Velocity is expressed in points per second in the parent's space.
	Velocity        Vec2
	AngularVelocity float64

	// Restitution and Friction are nominally in [0, 1] but values outside
	// that range are accepted and passed through unmodified: real
	// configurations rely on exceeding the documented bounds.
	Restitution float64
	Friction    float64

	LinearDamping  float64
	AngularDamping float64

	// Charge participates in electric and magnetic field evaluation.
	Charge float64

	// Dynamic bodies are moved by the integrator. Non-dynamic (static)
	// bodies never move and never generate contacts with each other.
	Dynamic bool

	AffectedByGravity bool
	AllowsRotation    bool

	// Category masks. CategoryMask declares what this body is;
	// CollisionMask, ContactTestMask and FieldMask declare what it reacts
	// to. All four are independent 32-bit sets.
	CategoryMask    uint32
	CollisionMask   uint32
	ContactTestMask uint32
	FieldMask       uint32

	// Per-step accumulators, cleared after integration.
	force  Vec2
	torque float64

	// velocityOverride holds the result of an exclusive velocity field for
	// this step; applied instead of integrating force when set.
	velocityOverride    Vec2
	hasVelocityOverride bool

	// Motion tracking for the contact re-evaluation rule.
	lastPos Vec2
	moved   bool
	woken   bool

	world *World
}

// NewBody creates a dynamic body with the given shape and default material
// properties (density 1).
func NewBody(shape *Shape) *Body {
	b := &Body{
		shape:             shape,
		density:           defaultDensity,
		Restitution:       defaultRestitution,
		Friction:          defaultFriction,
		Dynamic:           true,
		AffectedByGravity: true,
		AllowsRotation:    true,
		CategoryMask:      MaskAll,
		CollisionMask:     MaskAll,
		ContactTestMask:   MaskNone,
		FieldMask:         MaskAll,
	}
	return b
}

// NewBodyWithDensity creates a body with an explicit density.
// Negative density is a configuration error.
func NewBodyWithDensity(shape *Shape, density float64) (*Body, error) {
	if density < 0 || math.IsNaN(density) {
		return nil, fmt.Errorf("bramble: body density must be non-negative, got %v", density)
	}
	b := NewBody(shape)
	b.density = density
	return b, nil
}

// Node returns the node this body is attached to, or nil.
func (b *Body) Node() *Node {
	return b.node
}

// Shape returns the body's shape.
func (b *Body) Shape() *Shape {
	return b.shape
}

// SetShape replaces the body's shape. Density is preserved; mass is
// re-derived from the new area, so a mass set directly before the shape
// change does not persist.
func (b *Body) SetShape(s *Shape) {
	b.shape = s
}

// Area returns the body's effective area: the shape area scaled by the
// owning node's scale. Read-only; derived from geometry.
func (b *Body) Area() float64 {
	if b.shape == nil {
		return 0
	}
	area := b.shape.Area()
	if b.node != nil {
		area *= math.Abs(b.node.ScaleX * b.node.ScaleY)
	}
	return area
}

// Density returns the body's density.
func (b *Body) Density() float64 {
	return b.density
}

// SetDensity sets the density; mass follows as density*area.
// Negative density is a configuration error.
func (b *Body) SetDensity(d float64) error {
	if d < 0 || math.IsNaN(d) {
		return fmt.Errorf("bramble: body density must be non-negative, got %v", d)
	}
	b.density = d
	return nil
}

// Mass returns density*area, re-derived on every read so shape and scale
// changes are always reflected.
func (b *Body) Mass() float64 {
	return b.density * b.Area()
}

// SetMass sets the mass by back-deriving density from the current area.
// Returns an error for a negative mass or a zero-area (inert) shape.
func (b *Body) SetMass(m float64) error {
	if m < 0 || math.IsNaN(m) {
		return fmt.Errorf("bramble: body mass must be non-negative, got %v", m)
	}
	area := b.Area()
	if area <= 0 {
		return fmt.Errorf("bramble: cannot set mass on a zero-area shape")
	}
	b.density = m / area
	return nil
}

// invMass returns 1/mass for impulse math, or 0 for static, inert, or
// massless bodies (treated as immovable).
func (b *Body) invMass() float64 {
	if !b.Dynamic {
		return 0
	}
	m := b.Mass()
	if m <= 0 {
		return 0
	}
	return 1 / m
}

// invMoment returns the inverse moment of inertia, approximated from the
// shape bounds. 0 when rotation is locked or the body is immovable.
func (b *Body) invMoment() float64 {
	if !b.Dynamic || !b.AllowsRotation || b.shape == nil {
		return 0
	}
	m := b.Mass()
	if m <= 0 {
		return 0
	}
	bd := b.shape.Bounds()
	i := m * (bd.Width*bd.Width + bd.Height*bd.Height) / 12
	if i <= 0 {
		return 0
	}
	return 1 / i
}

// IsInert reports whether the body is excluded from collision and contact
// because its shape is missing or degenerate. Inert bodies still integrate.
func (b *Body) IsInert() bool {
	return b.shape.IsDegenerate()
}

// ApplyForce adds a force (in points/s^2 * mass) to the accumulator for the
// current step.
func (b *Body) ApplyForce(f Vec2) {
	b.force = b.force.Add(f)
}

// ApplyTorque adds a torque to the accumulator for the current step.
func (b *Body) ApplyTorque(t float64) {
	b.torque += t
}

// ApplyImpulse changes the body's velocity immediately by impulse/mass.
func (b *Body) ApplyImpulse(imp Vec2) {
	b.Velocity = b.Velocity.Add(imp.Scale(b.invMass()))
}

// ApplyAngularImpulse changes the angular velocity immediately.
func (b *Body) ApplyAngularImpulse(imp float64) {
	b.AngularVelocity += imp * b.invMoment()
}

// SetDynamic toggles physics engagement. Toggling off then on wakes the
// body, which re-arms contact evaluation for overlapping pairs whose masks
// changed while the pair was settled.
func (b *Body) SetDynamic(dynamic bool) {
	if b.Dynamic && !dynamic {
		b.Velocity = Vec2{}
		b.AngularVelocity = 0
	}
	if !b.Dynamic && dynamic {
		b.woken = true
	}
	b.Dynamic = dynamic
}

// Wake re-arms contact evaluation for this body without moving it.
func (b *Body) Wake() {
	b.woken = true
}

// position returns the owning node's local position (the integrated state).
func (b *Body) position() Vec2 {
	if b.node == nil {
		return Vec2{}
	}
	return Vec2{b.node.X, b.node.Y}
}

// worldPosition returns the owning node's origin in world coordinates.
func (b *Body) worldPosition() Vec2 {
	if b.node == nil {
		return Vec2{}
	}
	return b.node.WorldPosition()
}

func (b *Body) setPosition(p Vec2) {
	if b.node == nil {
		return
	}
	b.node.X = p.X
	b.node.Y = p.Y
	b.node.transformDirty = true
}
