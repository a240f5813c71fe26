package bramble

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// NodeType identifies what a node contributes to the scene beyond its
// transform.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // pure transform grouping, no content
	NodeTypeSprite                    // colored quad with a content size
	NodeTypeField                     // force field region (see field.go)
	NodeTypeEmitter                   // particle emitter (see particle.go)
)

// nodeIDCounter is a plain counter (no atomic — bramble is single-threaded;
// cross-goroutine work must go through Loop.Do).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node types to avoid interface dispatch on the hot path.
//
// Positions are expressed in the parent's coordinate space. A node's world
// transform is the composition of every ancestor transform down to the node;
// reparenting preserves the node's identity and local transform but changes
// the composed world transform immediately.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local, relative to parent)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	// Computed during the frame walk; WorldTransform() recomputes on demand.
	worldTransform [6]float64
	transformDirty bool

	// Visibility
	Alpha   float64
	Visible bool

	// Ordering
	ZIndex int

	// Content size for sprites and frame calculation. Sprites are centered
	// on the node origin.
	ContentSize Vec2
	Color       Color

	// Physics
	Body        *Body
	Constraints []*Constraint

	// Field fields (NodeTypeField)
	Field *Field

	// Particle fields (NodeTypeEmitter)
	Emitter *ParticleEmitter

	// Per-node frame callback, invoked during the Update phase.
	// Nil by default; zero cost when unused.
	OnUpdate func(dt float64)

	// Metadata
	UserData any

	// Internal
	customImage    *ebiten.Image // user-provided offscreen canvas (widgets)
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node: a solid-color quad of the given size,
// centered on the node origin. Attach a Body to give it physics.
func NewSprite(name string, size Vec2) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, ContentSize: size}
	nodeDefaults(n)
	return n
}

// NewFieldNode creates a node that applies the given force field to eligible
// bodies and particles while the node is in the tree.
func NewFieldNode(name string, field *Field) *Node {
	n := &Node{Name: name, Type: NodeTypeField, Field: field}
	nodeDefaults(n)
	field.node = n
	return n
}

// NewEmitterNode creates a particle emitter node with a preallocated pool.
func NewEmitterNode(name string, cfg EmitterConfig) *Node {
	n := &Node{
		Name:    name,
		Type:    NodeTypeEmitter,
		Emitter: newParticleEmitter(cfg),
	}
	nodeDefaults(n)
	return n
}

// SetCustomImage sets a user-provided *ebiten.Image to display instead of
// the solid color quad. Used by widgets that maintain an offscreen canvas.
func (n *Node) SetCustomImage(img *ebiten.Image) {
	n.customImage = img
}

// CustomImage returns the user-provided image, or nil if not set.
func (n *Node) CustomImage() *ebiten.Image {
	return n.customImage
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("bramble: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("bramble: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("bramble: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("bramble: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("bramble: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("bramble: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent. Any attached physics bodies and joints
// referencing them are pruned from the world on the next step.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		markSubtreeDirty(child)
	}
	n.children = n.children[:0]
	n.childrenSorted = true
}

// SetParent reparents this node under parent, preserving the node's local
// transform and its children's relative transforms. Equivalent to
// parent.AddChild(n).
func (n *Node) SetParent(parent *Node) {
	parent.AddChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Physics attachment ---

// SetBody attaches a physics body to this node. The node owns the body; the
// body back-references the node. Attaching nil detaches the current body.
// Panics if the body is already attached to another node.
func (n *Node) SetBody(b *Body) {
	if b == nil {
		if n.Body != nil {
			n.Body.node = nil
		}
		n.Body = nil
		return
	}
	if b.node != nil && b.node != n {
		panic("bramble: body is already attached to another node")
	}
	b.node = n
	n.Body = b
}

// AddConstraint appends a corrective constraint applied after each physics
// step, in list order.
func (n *Node) AddConstraint(c *Constraint) {
	n.Constraints = append(n.Constraints, c)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Attached bodies are detached;
// the world prunes them (and any joints referencing them) on its next step.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	if n.Body != nil {
		n.Body.node = nil
		n.Body = nil
	}
	n.Constraints = nil
	n.Field = nil
	n.Emitter = nil
	n.customImage = nil
	n.OnUpdate = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// sortedChildrenForTraversal returns children ordered by ZIndex (stable:
// insertion order breaks ties). The returned slice is an internal buffer.
func (n *Node) sortedChildrenForTraversal() []*Node {
	if n.childrenSorted && len(n.sortedChildren) == len(n.children) {
		return n.sortedChildren
	}
	n.sortedChildren = n.sortedChildren[:0]
	n.sortedChildren = append(n.sortedChildren, n.children...)
	// Insertion sort: child lists are small and mostly ordered.
	for i := 1; i < len(n.sortedChildren); i++ {
		c := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > c.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = c
	}
	n.childrenSorted = true
	return n.sortedChildren
}
