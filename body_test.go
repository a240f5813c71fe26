package bramble

import (
	"math"
	"testing"
)

// --- Construction ---

func TestNewBodyDefaults(t *testing.T) {
	b := NewBody(CircleShape(10))
	if !b.Dynamic {
		t.Error("bodies default to dynamic")
	}
	if !b.AffectedByGravity {
		t.Error("bodies default to gravity-affected")
	}
	if !b.AllowsRotation {
		t.Error("bodies default to rotation allowed")
	}
	if b.CategoryMask != MaskAll || b.CollisionMask != MaskAll || b.FieldMask != MaskAll {
		t.Error("category, collision, and field masks default to all bits")
	}
	if b.ContactTestMask != MaskNone {
		t.Error("contact test mask defaults to none")
	}
	assertNear(t, "density", b.Density(), 1)
}

func TestNewBodyWithDensity(t *testing.T) {
	b, err := NewBodyWithDensity(BoxShape(2, 2), 2.5)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "mass", b.Mass(), 10)
}

func TestNewBodyWithNegativeDensityError(t *testing.T) {
	if _, err := NewBodyWithDensity(BoxShape(2, 2), -1); err == nil {
		t.Error("expected error for negative density")
	}
}

// --- Mass is derived, never stored ---

func TestMassIsDensityTimesArea(t *testing.T) {
	b := NewBody(CircleShape(10))
	assertNear(t, "mass", b.Mass(), math.Pi*100)
}

func TestMassFollowsNodeScale(t *testing.T) {
	n := NewSprite("s", Vec2{})
	b := NewBody(BoxShape(2, 2))
	n.SetBody(b)

	assertNear(t, "unscaled", b.Mass(), 4)
	n.SetScale(2, 3)
	assertNear(t, "scaled", b.Mass(), 24)
	n.SetScale(-2, 3) // mirrored scale still yields positive area
	assertNear(t, "mirrored", b.Mass(), 24)
}

func TestSetMassBackDerivesDensity(t *testing.T) {
	b := NewBody(BoxShape(4, 4))
	if err := b.SetMass(32); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "density", b.Density(), 2)
	assertNear(t, "mass", b.Mass(), 32)
}

func TestSetMassDoesNotSurviveShapeChange(t *testing.T) {
	b := NewBody(BoxShape(4, 4))
	b.SetMass(100)
	// Replacing the shape re-derives mass from the preserved density, not
	// the previously set mass.
	b.SetShape(BoxShape(2, 2))
	assertNear(t, "re-derived mass", b.Mass(), b.Density()*4)
	if math.Abs(b.Mass()-100) < 1 {
		t.Error("directly set mass should not persist across a shape change")
	}
}

func TestSetMassDoesNotSurviveScaleChange(t *testing.T) {
	n := NewSprite("s", Vec2{})
	b := NewBody(BoxShape(2, 2))
	n.SetBody(b)
	b.SetMass(8) // density becomes 2

	n.SetScale(3, 3)
	assertNear(t, "rescaled mass", b.Mass(), 2*4*9)
}

func TestSetMassErrors(t *testing.T) {
	b := NewBody(BoxShape(4, 4))
	if err := b.SetMass(-1); err == nil {
		t.Error("expected error for negative mass")
	}
	inert := NewBody(CircleShape(0))
	if err := inert.SetMass(5); err == nil {
		t.Error("expected error for zero-area shape")
	}
}

func TestSetDensityError(t *testing.T) {
	b := NewBody(BoxShape(4, 4))
	if err := b.SetDensity(-0.5); err == nil {
		t.Error("expected error for negative density")
	}
}

// --- Inertness ---

func TestInertBody(t *testing.T) {
	b := NewBody(CircleShape(0))
	if !b.IsInert() {
		t.Error("degenerate shape should make the body inert")
	}
	if b.invMass() != 0 {
		t.Error("inert body should be immovable in impulse math")
	}
}

func TestNilShapeBodyIsInert(t *testing.T) {
	b := NewBody(nil)
	if !b.IsInert() {
		t.Error("nil shape should make the body inert")
	}
}

// --- Impulses and toggles ---

func TestApplyImpulse(t *testing.T) {
	b := NewBody(BoxShape(2, 2)) // mass 4
	b.ApplyImpulse(Vec2{8, 0})
	assertVec(t, "velocity", b.Velocity, Vec2{2, 0})
}

func TestApplyImpulseOnStaticBodyNoOp(t *testing.T) {
	b := NewBody(BoxShape(2, 2))
	b.SetDynamic(false)
	b.ApplyImpulse(Vec2{100, 0})
	assertVec(t, "velocity", b.Velocity, Vec2{})
}

func TestSetDynamicOffZeroesVelocity(t *testing.T) {
	b := NewBody(CircleShape(5))
	b.Velocity = Vec2{10, 10}
	b.AngularVelocity = 3
	b.SetDynamic(false)
	if b.Velocity != (Vec2{}) || b.AngularVelocity != 0 {
		t.Error("turning a body static should zero its velocities")
	}
}

func TestSetDynamicOnWakes(t *testing.T) {
	b := NewBody(CircleShape(5))
	b.SetDynamic(false)
	b.SetDynamic(true)
	if !b.woken {
		t.Error("static-to-dynamic should wake the body")
	}
}

func TestWake(t *testing.T) {
	b := NewBody(CircleShape(5))
	b.Wake()
	if !b.woken {
		t.Error("Wake should set the woken flag")
	}
}

// --- Rotation lock ---

func TestAllowsRotationFalseLocksMoment(t *testing.T) {
	b := NewBody(BoxShape(4, 4))
	b.AllowsRotation = false
	if b.invMoment() != 0 {
		t.Error("rotation-locked body should have zero inverse moment")
	}
	b.ApplyAngularImpulse(10)
	if b.AngularVelocity != 0 {
		t.Error("angular impulse should not spin a rotation-locked body")
	}
}
