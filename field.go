package bramble

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// FieldKind identifies the force function a field applies.
type FieldKind uint8

const (
	FieldLinearGravity FieldKind = iota
	FieldRadialGravity
	FieldDrag
	FieldVelocity // replaces velocity instead of accumulating force
	FieldNoise
	FieldTurbulence
	FieldSpring
	FieldVortex
	FieldElectric
	FieldMagnetic
	FieldCustom
)

// FieldInput carries the arguments of a field evaluation: everything a force
// function may depend on. Evaluation is a pure function of these values.
type FieldInput struct {
	Position Vec2 // relative to the field center, world space
	Velocity Vec2
	Mass     float64
	Charge   float64
	DeltaT   float64
}

// CustomFieldFunc computes the force contribution of a FieldCustom field.
type CustomFieldFunc func(in FieldInput) Vec2

// Region bounds a field's area of effect. A nil *Region means unbounded.
type Region struct {
	// Radius of the circular region around the field node's origin.
	Radius float64
}

// Field applies a force-generating function to bodies and particles whose
// FieldMask overlaps the field's CategoryMask and which lie inside its
// region. Fields are attached to the tree through NewFieldNode.
type Field struct {
	Kind     FieldKind
	Strength float64
	// Falloff attenuates strength with distance from the field center:
	// effective = Strength / (1 + Falloff*distance).
	Falloff float64
	// Region limits the field's effect; nil means unbounded.
	Region *Region
	// CategoryMask is tested against each body's FieldMask.
	CategoryMask uint32
	// Direction is used by linear gravity and velocity fields.
	Direction Vec2
	// Smoothness (0 rough - 1 smooth) and AnimationSpeed shape noise and
	// turbulence fields.
	Smoothness     float64
	AnimationSpeed float64
	// NonExclusive permits a velocity field to combine with other fields
	// affecting the same body. Velocity fields are exclusive by default.
	NonExclusive bool
	// Enabled fields participate in evaluation. Fields start enabled.
	Enabled bool

	// Custom is the force function for FieldCustom fields.
	Custom CustomFieldFunc

	node *Node
	rng  *rand.Rand
}

// newField sets the defaults shared by the kind constructors.
func newField(kind FieldKind) *Field {
	return &Field{
		Kind:         kind,
		Strength:     1,
		CategoryMask: MaskAll,
		Enabled:      true,
		rng:          rand.New(rand.NewPCG(uint64(kind)+1, 0x9E3779B97F4A7C15)),
	}
}

// LinearGravityField pulls bodies along a constant direction, scaled by mass.
func LinearGravityField(direction Vec2) *Field {
	f := newField(FieldLinearGravity)
	f.Direction = direction
	return f
}

// RadialGravityField pulls bodies toward the field node's origin.
func RadialGravityField() *Field {
	return newField(FieldRadialGravity)
}

// DragField applies a force opposing velocity, proportional to speed.
func DragField() *Field {
	return newField(FieldDrag)
}

// VelocityField replaces the velocity of affected bodies with the given
// direction scaled by strength. Exclusive by default: when an exclusive
// velocity field claims a body, no other field contributes to it that step.
func VelocityField(direction Vec2) *Field {
	f := newField(FieldVelocity)
	f.Direction = direction
	return f
}

// NoiseField applies a randomly-directed force independent of velocity.
func NoiseField(smoothness, animationSpeed float64) *Field {
	f := newField(FieldNoise)
	f.Smoothness = smoothness
	f.AnimationSpeed = animationSpeed
	return f
}

// TurbulenceField applies a randomly-directed force proportional to the
// affected body's speed. A body at rest receives no contribution; particles
// are assumed to have unit speed (see particle field coupling).
func TurbulenceField(smoothness, animationSpeed float64) *Field {
	f := newField(FieldTurbulence)
	f.Smoothness = smoothness
	f.AnimationSpeed = animationSpeed
	return f
}

// SpringField pulls bodies toward the field origin with a force proportional
// to displacement.
func SpringField() *Field {
	return newField(FieldSpring)
}

// VortexField applies a force perpendicular to the radius vector, circulating
// bodies around the field origin.
func VortexField() *Field {
	return newField(FieldVortex)
}

// ElectricField applies a force along the radius vector proportional to the
// body's charge. Negative charges are attracted where positive ones are
// repelled.
func ElectricField() *Field {
	return newField(FieldElectric)
}

// MagneticField applies a force perpendicular to the body's velocity,
// proportional to charge and speed.
func MagneticField() *Field {
	return newField(FieldMagnetic)
}

// CustomField applies a user-supplied force function.
func CustomField(fn CustomFieldFunc) *Field {
	f := newField(FieldCustom)
	f.Custom = fn
	return f
}

// Validate checks the field's configuration. Called by the config loader;
// direct construction through the kind constructors cannot produce an
// invalid field except through later mutation.
func (f *Field) Validate() error {
	if f.Region != nil && (f.Region.Radius <= 0 || math.IsNaN(f.Region.Radius)) {
		return fmt.Errorf("bramble: field region radius must be positive, got %v", f.Region.Radius)
	}
	if f.Falloff < 0 || math.IsNaN(f.Falloff) {
		return fmt.Errorf("bramble: field falloff must be non-negative, got %v", f.Falloff)
	}
	if f.Kind == FieldCustom && f.Custom == nil {
		return fmt.Errorf("bramble: custom field requires a force function")
	}
	return nil
}

// center returns the field's world-space origin.
func (f *Field) center() Vec2 {
	if f.node == nil {
		return Vec2{}
	}
	return f.node.WorldPosition()
}

// covers reports whether a world-space point is inside the field's region.
func (f *Field) covers(worldPos Vec2) bool {
	if f.Region == nil {
		return true
	}
	return worldPos.Sub(f.center()).LengthSq() <= f.Region.Radius*f.Region.Radius
}

// attenuation returns the distance-attenuated strength at the given radial
// distance from the field center.
func (f *Field) attenuation(dist float64) float64 {
	return f.Strength / (1 + f.Falloff*dist)
}

// evaluate computes the field's contribution for one step. The returned
// override flag is true for velocity fields, whose vector replaces the
// body's velocity rather than accumulating force.
func (f *Field) evaluate(in FieldInput) (Vec2, bool) {
	dist := in.Position.Length()
	atten := f.attenuation(dist)

	switch f.Kind {
	case FieldLinearGravity:
		return f.Direction.Normalized().Scale(atten * in.Mass), false

	case FieldRadialGravity:
		if dist < 1e-9 {
			return Vec2{}, false
		}
		return in.Position.Scale(-1 / dist).Scale(atten * in.Mass), false

	case FieldDrag:
		return in.Velocity.Scale(-atten), false

	case FieldVelocity:
		return f.Direction.Scale(f.Strength), true

	case FieldNoise:
		return f.noiseDirection().Scale(atten * in.Mass), false

	case FieldTurbulence:
		// Velocity-proportional: a body at rest receives nothing.
		speed := in.Velocity.Length()
		if speed < 1e-9 {
			return Vec2{}, false
		}
		return f.noiseDirection().Scale(atten * speed), false

	case FieldSpring:
		return in.Position.Scale(-atten * in.Mass), false

	case FieldVortex:
		if dist < 1e-9 {
			return Vec2{}, false
		}
		return in.Position.Perp().Scale(atten * in.Mass / dist), false

	case FieldElectric:
		if dist < 1e-9 {
			return Vec2{}, false
		}
		return in.Position.Scale(1 / dist).Scale(atten * in.Charge), false

	case FieldMagnetic:
		return in.Velocity.Perp().Scale(atten * in.Charge), false

	case FieldCustom:
		if f.Custom == nil {
			return Vec2{}, false
		}
		return f.Custom(in), false
	}
	return Vec2{}, false
}

// noiseDirection returns a unit vector whose direction jitters over time.
// Smoothness biases consecutive samples toward each other.
func (f *Field) noiseDirection() Vec2 {
	jitter := (1 - f.Smoothness) * math.Pi
	angle := f.rng.Float64()*2*math.Pi + f.rng.Float64()*jitter
	return Vec2{math.Cos(angle), math.Sin(angle)}
}
