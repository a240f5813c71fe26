package bramble

import (
	"testing"
)

// --- Constructor defaults ---

func TestNewContainerDefaults(t *testing.T) {
	n := NewContainer("test")
	assertNodeDefaults(t, n, "test", NodeTypeContainer)
}

func TestNewSpriteDefaults(t *testing.T) {
	n := NewSprite("spr", Vec2{X: 32, Y: 32})
	assertNodeDefaults(t, n, "spr", NodeTypeSprite)
	if n.ContentSize != (Vec2{X: 32, Y: 32}) {
		t.Errorf("ContentSize = %v, want {32 32}", n.ContentSize)
	}
}

func TestNewFieldNodeDefaults(t *testing.T) {
	f := DragField()
	n := NewFieldNode("drag", f)
	assertNodeDefaults(t, n, "drag", NodeTypeField)
	if n.Field != f {
		t.Error("Field should be set")
	}
	if f.node != n {
		t.Error("field should back-reference the node")
	}
}

func TestNewEmitterNodeDefaults(t *testing.T) {
	n := NewEmitterNode("emitter", EmitterConfig{MaxParticles: 10})
	assertNodeDefaults(t, n, "emitter", NodeTypeEmitter)
	if n.Emitter == nil {
		t.Fatal("Emitter should be set")
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %d, want %d", n.Type, typ)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if n.Color != ColorWhite {
		t.Errorf("Color = %v, want white", n.Color)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if !n.transformDirty {
		t.Error("transformDirty should be true")
	}
}

// --- Unique IDs ---

func TestUniqueIDs(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewSprite("c", Vec2{})
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Errorf("IDs should be unique: %d, %d, %d", a.ID, b.ID, c.ID)
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
	if parent.ChildAt(0) != child {
		t.Error("ChildAt(0) should be child")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")

	p1.AddChild(child)
	if p1.NumChildren() != 1 {
		t.Fatal("p1 should have 1 child")
	}

	p2.AddChild(child)
	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if p2.NumChildren() != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent != p2 {
		t.Error("child.Parent should be p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent) // should panic
}

func TestAddChildSelfPanic(t *testing.T) {
	n := NewContainer("self")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-add, got none")
		}
	}()
	n.AddChild(n)
}

func TestAddChildNilPanic(t *testing.T) {
	n := NewContainer("n")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	n.AddChild(nil)
}

// --- AddChildAt ---

func TestAddChildAt(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(c)

	parent.AddChildAt(b, 1) // insert between a and c

	if parent.NumChildren() != 3 {
		t.Fatalf("NumChildren = %d, want 3", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != b || parent.ChildAt(2) != c {
		t.Error("children order should be [a, b, c]")
	}
}

func TestAddChildAtOutOfBoundsPanic(t *testing.T) {
	parent := NewContainer("parent")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for out of bounds, got none")
		}
	}()
	parent.AddChildAt(NewContainer("a"), 5)
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if parent.NumChildren() != 0 {
		t.Error("parent should have 0 children")
	}
	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

// --- RemoveFromParent ---

func TestRemoveFromParent(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	child.RemoveFromParent()

	if parent.NumChildren() != 0 {
		t.Error("parent should have 0 children")
	}
	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewContainer("orphan")
	n.RemoveFromParent() // should not panic
	if n.Parent != nil {
		t.Error("Parent should remain nil")
	}
}

// --- RemoveChildren ---

func TestRemoveChildren(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.RemoveChildren()

	if parent.NumChildren() != 0 {
		t.Error("parent should have 0 children")
	}
	if a.Parent != nil || b.Parent != nil {
		t.Error("detached children should have nil Parent")
	}
}

// --- Children / NumChildren / ChildAt consistency ---

func TestChildrenConsistency(t *testing.T) {
	parent := NewContainer("parent")
	nodes := make([]*Node, 5)
	for i := range nodes {
		nodes[i] = NewContainer("")
		parent.AddChild(nodes[i])
	}

	children := parent.Children()
	if len(children) != parent.NumChildren() {
		t.Errorf("Children() len = %d, NumChildren() = %d", len(children), parent.NumChildren())
	}
	for i, c := range children {
		if c != parent.ChildAt(i) {
			t.Errorf("Children()[%d] != ChildAt(%d)", i, i)
		}
	}
}

// --- ZIndex ordering ---

func TestSortedTraversalByZIndex(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	b.SetZIndex(-1)
	c.SetZIndex(5)

	sorted := parent.sortedChildrenForTraversal()
	if sorted[0] != b || sorted[1] != a || sorted[2] != c {
		t.Errorf("traversal order = [%s, %s, %s], want [b, a, c]",
			sorted[0].Name, sorted[1].Name, sorted[2].Name)
	}
}

func TestSortedTraversalStableOnTies(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	parent.AddChild(a)
	parent.AddChild(b)

	sorted := parent.sortedChildrenForTraversal()
	if sorted[0] != a || sorted[1] != b {
		t.Error("equal ZIndex should preserve insertion order")
	}
}

// --- SetBody ---

func TestSetBody(t *testing.T) {
	n := NewSprite("s", Vec2{X: 10, Y: 10})
	b := NewBody(CircleShape(5))
	n.SetBody(b)

	if n.Body != b {
		t.Error("Body should be set")
	}
	if b.Node() != n {
		t.Error("body should back-reference the node")
	}
}

func TestSetBodyNilDetaches(t *testing.T) {
	n := NewSprite("s", Vec2{X: 10, Y: 10})
	b := NewBody(CircleShape(5))
	n.SetBody(b)
	n.SetBody(nil)

	if n.Body != nil {
		t.Error("Body should be nil")
	}
	if b.Node() != nil {
		t.Error("body back-reference should be cleared")
	}
}

func TestSetBodyAlreadyAttachedPanic(t *testing.T) {
	a := NewSprite("a", Vec2{})
	b := NewSprite("b", Vec2{})
	body := NewBody(CircleShape(5))
	a.SetBody(body)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for double attach, got none")
		}
	}()
	b.SetBody(body)
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	root := NewContainer("root")
	root.AddChild(parent)
	parent.AddChild(child)
	child.AddChild(grandchild)

	parent.Dispose()

	if !parent.IsDisposed() {
		t.Error("parent should be disposed")
	}
	if !child.IsDisposed() {
		t.Error("child should be disposed")
	}
	if !grandchild.IsDisposed() {
		t.Error("grandchild should be disposed")
	}
	if parent.ID != 0 || child.ID != 0 || grandchild.ID != 0 {
		t.Error("disposed nodes should have ID = 0")
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewContainer("n")
	n.Dispose()
	n.Dispose() // should not panic
	if !n.IsDisposed() {
		t.Error("should still be disposed")
	}
}

func TestDisposeDetachesBody(t *testing.T) {
	n := NewSprite("s", Vec2{X: 10, Y: 10})
	b := NewBody(CircleShape(5))
	n.SetBody(b)

	n.Dispose()
	if b.Node() != nil {
		t.Error("body back-reference should be cleared on dispose")
	}
}

// --- Dirty propagation ---

func TestDirtyPropagationOnAddChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	child.AddChild(grandchild)

	// Clear dirty flags manually
	child.transformDirty = false
	grandchild.transformDirty = false

	parent.AddChild(child)

	if !child.transformDirty {
		t.Error("child should be dirty after AddChild")
	}
	if !grandchild.transformDirty {
		t.Error("grandchild should be dirty after AddChild")
	}
}

func TestDirtyPropagationOnRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	child.transformDirty = false
	parent.RemoveChild(child)

	if !child.transformDirty {
		t.Error("child should be dirty after RemoveChild")
	}
}
