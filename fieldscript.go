package bramble

import (
	"fmt"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptField compiles a Tengo script into a custom force field. The script
// receives the evaluation inputs as globals and reports its force through
// fx/fy:
//
//	px, py     position relative to the field center
//	vx, vy     velocity
//	mass       body mass (1 for particles)
//	charge     body charge (1 for particles)
//	dt         step delta time
//	fx, fy     output force (script sets these)
//
// The math stdlib module is importable. The script is compiled once; each
// evaluation runs on a clone, so a field can be shared across bodies.
func ScriptField(src string) (*Field, error) {
	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("math"))
	for _, name := range []string{"px", "py", "vx", "vy", "mass", "charge", "dt", "fx", "fy"} {
		if err := script.Add(name, 0.0); err != nil {
			return nil, fmt.Errorf("bramble: script field: declare %s: %w", name, err)
		}
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("bramble: script field: compile: %w", err)
	}

	f := CustomField(func(in FieldInput) Vec2 {
		c := compiled.Clone()
		c.Set("px", in.Position.X)
		c.Set("py", in.Position.Y)
		c.Set("vx", in.Velocity.X)
		c.Set("vy", in.Velocity.Y)
		c.Set("mass", in.Mass)
		c.Set("charge", in.Charge)
		c.Set("dt", in.DeltaT)
		if err := c.Run(); err != nil {
			// A script runtime error yields no contribution; evaluation
			// must stay pure and non-fatal mid-step.
			return Vec2{}
		}
		fx := c.Get("fx").Float()
		fy := c.Get("fy").Float()
		if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(fy) || math.IsInf(fy, 0) {
			// Float division by zero is not a Tengo runtime error; it
			// produces Inf. Non-finite output never reaches the force
			// accumulator.
			return Vec2{}
		}
		return Vec2{X: fx, Y: fy}
	})
	return f, nil
}
