package bramble

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// WorldSpec is the YAML configuration surface for a scene's physics setup:
// world tuning plus declarative bodies, fields, and joints. Invalid values
// are rejected at load with a descriptive error rather than clamped — with
// the deliberate exception of restitution and friction, which pass through
// out-of-range values unmodified because real configurations rely on
// exceeding the nominal [0, 1] bounds.
type WorldSpec struct {
	Gravity      [2]float64  `yaml:"gravity"`
	Speed        *float64    `yaml:"speed"`
	SolverPasses int         `yaml:"solver_passes"`
	TargetTPS    int         `yaml:"target_tps"`
	Bodies       []BodySpec  `yaml:"bodies"`
	Fields       []FieldSpec `yaml:"fields"`
	Joints       []JointSpec `yaml:"joints"`
}

// ShapeSpec declares physics geometry.
type ShapeSpec struct {
	Kind   string      `yaml:"kind"` // circle, box, polygon
	Radius float64     `yaml:"radius"`
	Width  float64     `yaml:"width"`
	Height float64     `yaml:"height"`
	Points [][2]float64 `yaml:"points"`
}

// BodySpec declares a node with an attached physics body.
type BodySpec struct {
	Name        string    `yaml:"name"`
	Position    [2]float64 `yaml:"position"`
	Shape       ShapeSpec `yaml:"shape"`
	Density     *float64  `yaml:"density"`
	Restitution *float64  `yaml:"restitution"`
	Friction    *float64  `yaml:"friction"`
	Dynamic     *bool     `yaml:"dynamic"`
	Gravity     *bool     `yaml:"affected_by_gravity"`
	Category    uint32    `yaml:"category_mask"`
	Collision   *uint32   `yaml:"collision_mask"`
	ContactTest uint32    `yaml:"contact_test_mask"`
	FieldMask   *uint32   `yaml:"field_mask"`
	Charge      float64   `yaml:"charge"`
}

// FieldSpec declares a field node.
type FieldSpec struct {
	Name         string     `yaml:"name"`
	Kind         string     `yaml:"kind"`
	Position     [2]float64 `yaml:"position"`
	Strength     *float64   `yaml:"strength"`
	Falloff      float64    `yaml:"falloff"`
	Radius       float64    `yaml:"radius"` // 0 = unbounded
	Direction    [2]float64 `yaml:"direction"`
	Smoothness   float64    `yaml:"smoothness"`
	Speed        float64    `yaml:"animation_speed"`
	Category     *uint32    `yaml:"category_mask"`
	NonExclusive bool       `yaml:"non_exclusive"`
	Script       string     `yaml:"script"` // kind: custom
}

// JointSpec declares a joint between two named bodies (B empty = world edge).
type JointSpec struct {
	Kind      string     `yaml:"kind"` // pin, spring, fixed, limit
	BodyA     string     `yaml:"body_a"`
	BodyB     string     `yaml:"body_b"`
	Anchor    [2]float64 `yaml:"anchor"`
	AnchorB   [2]float64 `yaml:"anchor_b"`
	Frequency float64    `yaml:"frequency"`
	Damping   float64    `yaml:"damping"`
	MaxLength float64    `yaml:"max_length"`
}

// LoadWorldSpec parses and validates a YAML world spec.
func LoadWorldSpec(data []byte) (*WorldSpec, error) {
	var spec WorldSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("bramble: parse world spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks every declared value that the engine refuses to guess at.
func (spec *WorldSpec) Validate() error {
	if spec.Speed != nil && (*spec.Speed < 0 || math.IsNaN(*spec.Speed)) {
		return fmt.Errorf("bramble: world speed must be non-negative, got %v", *spec.Speed)
	}
	if spec.SolverPasses < 0 {
		return fmt.Errorf("bramble: solver_passes must be non-negative, got %d", spec.SolverPasses)
	}
	if spec.TargetTPS < 0 {
		return fmt.Errorf("bramble: target_tps must be non-negative, got %d", spec.TargetTPS)
	}
	names := make(map[string]bool, len(spec.Bodies))
	for i, b := range spec.Bodies {
		if b.Name == "" {
			return fmt.Errorf("bramble: body %d: name is required", i)
		}
		if names[b.Name] {
			return fmt.Errorf("bramble: duplicate body name %q", b.Name)
		}
		names[b.Name] = true
		if b.Density != nil && (*b.Density < 0 || math.IsNaN(*b.Density)) {
			return fmt.Errorf("bramble: body %q: density must be non-negative, got %v", b.Name, *b.Density)
		}
		if err := b.Shape.validate(); err != nil {
			return fmt.Errorf("bramble: body %q: %w", b.Name, err)
		}
	}
	for _, f := range spec.Fields {
		if _, ok := fieldKindNames[f.Kind]; !ok {
			return fmt.Errorf("bramble: field %q: unknown kind %q", f.Name, f.Kind)
		}
		if f.Radius < 0 || math.IsNaN(f.Radius) {
			return fmt.Errorf("bramble: field %q: radius must be non-negative, got %v", f.Name, f.Radius)
		}
		if f.Falloff < 0 || math.IsNaN(f.Falloff) {
			return fmt.Errorf("bramble: field %q: falloff must be non-negative, got %v", f.Name, f.Falloff)
		}
		if f.Kind == "custom" && f.Script == "" {
			return fmt.Errorf("bramble: field %q: custom fields require a script", f.Name)
		}
	}
	for i, j := range spec.Joints {
		if _, ok := jointKindNames[j.Kind]; !ok {
			return fmt.Errorf("bramble: joint %d: unknown kind %q", i, j.Kind)
		}
		if j.BodyA == "" {
			return fmt.Errorf("bramble: joint %d: body_a is required", i)
		}
		if j.BodyA != "" && !names[j.BodyA] {
			return fmt.Errorf("bramble: joint %d: unknown body %q", i, j.BodyA)
		}
		if j.BodyB != "" && !names[j.BodyB] {
			return fmt.Errorf("bramble: joint %d: unknown body %q", i, j.BodyB)
		}
		if j.Kind == "spring" && (j.Frequency < 0 || j.Damping < 0) {
			return fmt.Errorf("bramble: joint %d: spring parameters must be non-negative", i)
		}
		if j.Kind == "limit" && j.MaxLength < 0 {
			return fmt.Errorf("bramble: joint %d: max_length must be non-negative", i)
		}
	}
	return nil
}

func (s ShapeSpec) validate() error {
	switch s.Kind {
	case "circle", "box", "polygon":
	case "":
		return fmt.Errorf("shape kind is required")
	default:
		return fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	if s.Kind == "polygon" && len(s.Points) < 3 {
		return fmt.Errorf("polygon needs at least 3 points, got %d", len(s.Points))
	}
	return nil
}

func (s ShapeSpec) build() (*Shape, error) {
	switch s.Kind {
	case "circle":
		return CircleShape(s.Radius), nil
	case "box":
		return BoxShape(s.Width, s.Height), nil
	case "polygon":
		pts := make([]Vec2, len(s.Points))
		for i, p := range s.Points {
			pts[i] = Vec2{p[0], p[1]}
		}
		return PolygonShape(pts)
	}
	return nil, fmt.Errorf("bramble: unknown shape kind %q", s.Kind)
}

var fieldKindNames = map[string]FieldKind{
	"linear_gravity": FieldLinearGravity,
	"radial_gravity": FieldRadialGravity,
	"drag":           FieldDrag,
	"velocity":       FieldVelocity,
	"noise":          FieldNoise,
	"turbulence":     FieldTurbulence,
	"spring":         FieldSpring,
	"vortex":         FieldVortex,
	"electric":       FieldElectric,
	"magnetic":       FieldMagnetic,
	"custom":         FieldCustom,
}

var jointKindNames = map[string]JointKind{
	"pin":    JointPin,
	"spring": JointSpring,
	"fixed":  JointFixed,
	"limit":  JointLimit,
}

// ApplyTuning writes the spec's world-level tuning (gravity, speed, solver
// passes) onto an existing world without touching bodies or joints. Used by
// the hot-reload watcher.
func (spec *WorldSpec) ApplyTuning(w *World) {
	if spec.Gravity != [2]float64{} {
		w.Gravity = Vec2{spec.Gravity[0], spec.Gravity[1]}
	}
	if spec.Speed != nil {
		w.Speed = *spec.Speed
	}
	if spec.SolverPasses > 0 {
		w.SolverPasses = spec.SolverPasses
	}
}

// Build instantiates the spec under the scene's root: one node per body,
// one field node per field, and the declared joints. Returns the nodes by
// name for caller bookkeeping.
func (spec *WorldSpec) Build(scene *Scene) (map[string]*Node, error) {
	spec.ApplyTuning(scene.World())

	nodes := make(map[string]*Node, len(spec.Bodies))
	bodies := make(map[string]*Body, len(spec.Bodies))
	for _, bs := range spec.Bodies {
		shape, err := bs.Shape.build()
		if err != nil {
			return nil, err
		}
		body := NewBody(shape)
		if bs.Density != nil {
			if err := body.SetDensity(*bs.Density); err != nil {
				return nil, err
			}
		}
		if bs.Restitution != nil {
			body.Restitution = *bs.Restitution
		}
		if bs.Friction != nil {
			body.Friction = *bs.Friction
		}
		if bs.Dynamic != nil {
			body.Dynamic = *bs.Dynamic
		}
		if bs.Gravity != nil {
			body.AffectedByGravity = *bs.Gravity
		}
		if bs.Category != 0 {
			body.CategoryMask = bs.Category
		}
		if bs.Collision != nil {
			body.CollisionMask = *bs.Collision
		}
		body.ContactTestMask = bs.ContactTest
		if bs.FieldMask != nil {
			body.FieldMask = *bs.FieldMask
		}
		body.Charge = bs.Charge

		sb := shape.Bounds()
		node := NewSprite(bs.Name, Vec2{sb.Width, sb.Height})
		node.SetPosition(bs.Position[0], bs.Position[1])
		node.SetBody(body)
		scene.Root().AddChild(node)
		nodes[bs.Name] = node
		bodies[bs.Name] = body
	}

	for _, fs := range spec.Fields {
		field, err := fs.build()
		if err != nil {
			return nil, err
		}
		node := NewFieldNode(fs.Name, field)
		node.SetPosition(fs.Position[0], fs.Position[1])
		scene.Root().AddChild(node)
		if fs.Name != "" {
			nodes[fs.Name] = node
		}
	}

	// Joints need registered bodies; sync first.
	scene.syncPhysics()
	for i, js := range spec.Joints {
		a := bodies[js.BodyA]
		var b *Body
		if js.BodyB != "" {
			b = bodies[js.BodyB]
		}
		anchor := Vec2{js.Anchor[0], js.Anchor[1]}
		anchorB := Vec2{js.AnchorB[0], js.AnchorB[1]}
		var joint *Joint
		switch jointKindNames[js.Kind] {
		case JointPin:
			joint = NewPinJoint(a, b, anchor)
		case JointSpring:
			joint = NewSpringJoint(a, b, anchor, anchorB, js.Frequency, js.Damping)
		case JointFixed:
			joint = NewFixedJoint(a, b, anchor)
		case JointLimit:
			joint = NewLimitJoint(a, b, anchor, anchorB, js.MaxLength)
		}
		if _, err := scene.World().AddJoint(joint); err != nil {
			return nil, fmt.Errorf("bramble: joint %d: %w", i, err)
		}
	}
	return nodes, nil
}

func (fs FieldSpec) build() (*Field, error) {
	var field *Field
	switch fieldKindNames[fs.Kind] {
	case FieldLinearGravity:
		field = LinearGravityField(Vec2{fs.Direction[0], fs.Direction[1]})
	case FieldRadialGravity:
		field = RadialGravityField()
	case FieldDrag:
		field = DragField()
	case FieldVelocity:
		field = VelocityField(Vec2{fs.Direction[0], fs.Direction[1]})
	case FieldNoise:
		field = NoiseField(fs.Smoothness, fs.Speed)
	case FieldTurbulence:
		field = TurbulenceField(fs.Smoothness, fs.Speed)
	case FieldSpring:
		field = SpringField()
	case FieldVortex:
		field = VortexField()
	case FieldElectric:
		field = ElectricField()
	case FieldMagnetic:
		field = MagneticField()
	case FieldCustom:
		var err error
		field, err = ScriptField(fs.Script)
		if err != nil {
			return nil, err
		}
	}
	if fs.Strength != nil {
		field.Strength = *fs.Strength
	}
	field.Falloff = fs.Falloff
	if fs.Radius > 0 {
		field.Region = &Region{Radius: fs.Radius}
	}
	if fs.Category != nil {
		field.CategoryMask = *fs.Category
	}
	field.NonExclusive = fs.NonExclusive
	if err := field.Validate(); err != nil {
		return nil, err
	}
	return field, nil
}
