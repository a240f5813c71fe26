package bramble

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestMoveToReachesTarget(t *testing.T) {
	node := NewContainer("pos")
	node.X = 10
	node.Y = 20

	a := MoveTo(node, 100, 200, 1.0, ease.Linear)

	// Run for full duration using exact halves to avoid float32 accumulation drift.
	a.Update(0.5)
	a.Update(0.5)

	if !a.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.X-100) > 0.5 {
		t.Errorf("X = %f, want ~100", node.X)
	}
	if math.Abs(node.Y-200) > 0.5 {
		t.Errorf("Y = %f, want ~200", node.Y)
	}
}

func TestMoveToInterpolatesMidway(t *testing.T) {
	node := NewContainer("pos")
	a := MoveTo(node, 100, 0, 1.0, ease.Linear)

	a.Update(0.5)
	if a.Done {
		t.Fatal("should not be Done at half duration")
	}
	if math.Abs(node.X-50) > 0.5 {
		t.Errorf("X = %f, want ~50 at half duration", node.X)
	}
}

func TestScaleToReachesTarget(t *testing.T) {
	node := NewContainer("scale")

	a := ScaleTo(node, 2.0, 3.0, 0.5, ease.Linear)

	a.Update(0.25)
	a.Update(0.25)

	if !a.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.ScaleX-2.0) > 0.01 {
		t.Errorf("ScaleX = %f, want ~2.0", node.ScaleX)
	}
	if math.Abs(node.ScaleY-3.0) > 0.01 {
		t.Errorf("ScaleY = %f, want ~3.0", node.ScaleY)
	}
}

func TestScaleToUpdatesBodyMass(t *testing.T) {
	node := NewSprite("scaled", Vec2{10, 10})
	node.SetBody(NewBody(BoxShape(2, 2)))

	a := ScaleTo(node, 2, 2, 1.0, ease.Linear)
	a.Update(0.5)
	a.Update(0.5)

	// Mass follows the scaled area: 2x2 box at scale 2 covers 16 units.
	if math.Abs(node.Body.Mass()-16) > 0.1 {
		t.Errorf("Mass = %f, want ~16", node.Body.Mass())
	}
}

func TestRotateToReachesTarget(t *testing.T) {
	node := NewContainer("rot")

	a := RotateTo(node, math.Pi, 1.0, ease.Linear)

	a.Update(0.5)
	a.Update(0.5)

	if !a.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.Rotation-math.Pi) > 0.01 {
		t.Errorf("Rotation = %f, want ~Pi", node.Rotation)
	}
}

func TestFadeToInterpolates(t *testing.T) {
	node := NewContainer("alpha")
	node.Alpha = 1.0

	a := FadeTo(node, 0, 1.0, ease.Linear)

	a.Update(0.5)
	if math.Abs(node.Alpha-0.5) > 0.01 {
		t.Errorf("Alpha = %f, want ~0.5 at half duration", node.Alpha)
	}
	a.Update(0.5)
	if !a.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.Alpha) > 0.01 {
		t.Errorf("Alpha = %f, want ~0", node.Alpha)
	}
}

func TestActionUpdateAfterDoneIsNoOp(t *testing.T) {
	node := NewContainer("n")
	a := MoveTo(node, 100, 0, 0.5, ease.Linear)
	a.Update(0.5)
	if !a.Done {
		t.Fatal("expected Done")
	}
	x := node.X
	a.Update(1.0)
	if node.X != x {
		t.Error("Update after Done should not write")
	}
}

func TestActionStopsOnDisposedTarget(t *testing.T) {
	root := NewContainer("root")
	node := NewContainer("doomed")
	root.AddChild(node)

	a := MoveTo(node, 100, 0, 1.0, ease.Linear)
	a.Update(0.25)
	node.Dispose()
	a.Update(0.25)

	if !a.Done {
		t.Error("action targeting a disposed node should finish immediately")
	}
}

func TestActionMarksTransformDirty(t *testing.T) {
	root := NewContainer("root")
	node := NewContainer("moving")
	root.AddChild(node)
	updateWorldTransform(root, identityTransform, false)

	a := MoveTo(node, 100, 0, 1.0, ease.Linear)
	a.Update(0.5)
	updateWorldTransform(root, identityTransform, false)

	wp := node.WorldPosition()
	if math.Abs(wp.X-node.X) > epsilon {
		t.Errorf("world position %f lags local %f", wp.X, node.X)
	}
	if node.X == 0 {
		t.Error("tween should have moved the node")
	}
}
