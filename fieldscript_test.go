package bramble

import "testing"

func TestScriptFieldComputesForce(t *testing.T) {
	f, err := ScriptField("fx = px * 2.0 + vx\nfy = mass * 10.0")
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	out, _ := f.evaluate(FieldInput{
		Position: Vec2{3, 0},
		Velocity: Vec2{4, 0},
		Mass:     5,
		Charge:   1,
		DeltaT:   1.0 / 60,
	})
	assertVec(t, "scripted force", out, Vec2{10, 50})
}

func TestScriptFieldMathImport(t *testing.T) {
	f, err := ScriptField("math := import(\"math\")\nfx = math.sqrt(py)\nfy = 0.0")
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	out, _ := f.evaluate(FieldInput{Position: Vec2{0, 16}})
	assertVec(t, "math import", out, Vec2{4, 0})
}

func TestScriptFieldCompileErrorSurfaces(t *testing.T) {
	if _, err := ScriptField("fx = ("); err == nil {
		t.Error("unparsable script should fail at creation")
	}
}

func TestScriptFieldRuntimeErrorYieldsZero(t *testing.T) {
	f, err := ScriptField("bad := 1\nfx = bad()") // calling an int fails at run time
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	out, _ := f.evaluate(FieldInput{Position: Vec2{10, 0}})
	assertVec(t, "runtime error contributes nothing", out, Vec2{})
}

func TestScriptFieldNonFiniteOutputYieldsZero(t *testing.T) {
	// Float division by zero evaluates to Inf in Tengo, not a runtime
	// error; the field must refuse to pass it on.
	f, err := ScriptField("fx = px / 0\nfy = 0.0")
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	out, _ := f.evaluate(FieldInput{Position: Vec2{10, 0}})
	assertVec(t, "non-finite output contributes nothing", out, Vec2{})
}

func TestScriptFieldSharedAcrossEvaluations(t *testing.T) {
	f, err := ScriptField("fx = px\nfy = py")
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	a, _ := f.evaluate(FieldInput{Position: Vec2{1, 2}})
	b, _ := f.evaluate(FieldInput{Position: Vec2{-3, 4}})
	assertVec(t, "first evaluation", a, Vec2{1, 2})
	assertVec(t, "second evaluation independent", b, Vec2{-3, 4})
}

func TestScriptFieldInWorldStep(t *testing.T) {
	w := NewWorld()
	w.Gravity = Vec2{}
	f, err := ScriptField("fx = 10.0 * mass\nfy = 0.0")
	if err != nil {
		t.Fatalf("ScriptField: %v", err)
	}
	b := bodyAt(0, 0, CircleShape(5))
	b.SetMass(2)
	w.AddBody(b)
	w.AddField(f)

	w.Step(1)
	// F = 10*mass = 20; a = F/m = 10; v = 10 after 1s.
	assertVec(t, "velocity from scripted force", b.Velocity, Vec2{10, 0})
}
