package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (MoveTo, ScaleTo, RotateTo,
// FadeTo) and call Update(dt) each frame, normally from the node's OnUpdate
// or the loop's update callback. The action auto-applies values and marks
// the node dirty. If the target node is disposed, the action stops
// immediately.
//
// There is no global action manager — users drive Update themselves.
type Action struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target
// fields, and marks the node dirty. If the target node has been disposed,
// Done is set to true and no writes occur.
func (a *Action) Update(dt float32) {
	if a.Done {
		return
	}

	if a.target != nil && a.target.IsDisposed() {
		a.Done = true
		return
	}

	allDone := true
	for i := 0; i < a.count; i++ {
		val, finished := a.tweens[i].Update(dt)
		*a.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	a.Done = allDone

	if a.target != nil {
		a.target.MarkDirty()
	}
}

// MoveTo creates an Action that animates node.X and node.Y to the given
// coordinates over the specified duration using the easing function.
// Moving a node with a physics body fights the integrator; prefer applying
// forces or a velocity field to physics-driven nodes.
func MoveTo(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *Action {
	a := &Action{count: 2, target: node}
	a.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	a.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	a.fields[0] = &node.X
	a.fields[1] = &node.Y
	return a
}

// ScaleTo creates an Action that animates node.ScaleX and node.ScaleY to the
// given values. If the node carries a physics body, its mass follows the
// scaled area automatically.
func ScaleTo(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *Action {
	a := &Action{count: 2, target: node}
	a.tweens[0] = gween.New(float32(node.ScaleX), float32(toSX), duration, fn)
	a.tweens[1] = gween.New(float32(node.ScaleY), float32(toSY), duration, fn)
	a.fields[0] = &node.ScaleX
	a.fields[1] = &node.ScaleY
	return a
}

// RotateTo creates an Action that animates node.Rotation to the target value
// over the specified duration using the easing function.
func RotateTo(node *Node, to float64, duration float32, fn ease.TweenFunc) *Action {
	a := &Action{count: 1, target: node}
	a.tweens[0] = gween.New(float32(node.Rotation), float32(to), duration, fn)
	a.fields[0] = &node.Rotation
	return a
}

// FadeTo creates an Action that animates node.Alpha to the target value over
// the specified duration using the easing function.
func FadeTo(node *Node, to float64, duration float32, fn ease.TweenFunc) *Action {
	a := &Action{count: 1, target: node}
	a.tweens[0] = gween.New(float32(node.Alpha), float32(to), duration, fn)
	a.fields[0] = &node.Alpha
	return a
}
