package bramble

// Scene is the top-level object that owns the node tree and its physics
// world. Nodes added anywhere under the root participate in rendering;
// nodes carrying bodies or fields are registered with the world
// automatically before each physics phase.
type Scene struct {
	root   *Node
	world  *World
	camera *Camera
	debug  bool

	// ClearColor fills the screen before rendering.
	ClearColor Color

	// ScreenshotDir is where queued screenshots are written.
	// Defaults to "screenshots".
	ScreenshotDir string

	screenshotQueue []string

	// Bookkeeping for tree <-> world synchronization.
	sceneBodies map[*Body]bool
	sceneFields map[*Field]bool
	bodyBuf     []*Body
	fieldBuf    []*Field
}

// NewScene creates a new scene with a pre-created root container and an
// empty physics world.
func NewScene() *Scene {
	root := NewContainer("root")
	return &Scene{
		root:        root,
		world:       NewWorld(),
		sceneBodies: make(map[*Body]bool),
		sceneFields: make(map[*Field]bool),
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// World returns the scene's physics world.
func (s *Scene) World() *World {
	return s.world
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth warnings are printed, and per-step timing stats
// are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// update runs the Update phase: per-node callbacks and particle simulation.
// World transforms are refreshed first so callbacks observe accurate
// positions; note that physics for this frame has not run yet — consumers
// needing integrated state read it after the constraint pass instead.
func (s *Scene) update(dt float64) {
	updateWorldTransform(s.root, identityTransform, false)
	if s.camera != nil {
		s.camera.update(float32(dt))
	}
	runNodeUpdates(s.root, dt)
	updateParticles(s.root, dt, s.world.fields)
}

// runNodeUpdates invokes OnUpdate callbacks depth-first.
func runNodeUpdates(n *Node, dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	// Children may be added or removed by callbacks; iterate by index over
	// the live list.
	for i := 0; i < len(n.children); i++ {
		runNodeUpdates(n.children[i], dt)
	}
}

// syncPhysics reconciles the world's body and field sets with the current
// tree: bodies on newly attached nodes join the simulation, bodies whose
// nodes left the tree are removed (cascading joint removal).
func (s *Scene) syncPhysics() {
	s.bodyBuf = s.bodyBuf[:0]
	s.fieldBuf = s.fieldBuf[:0]
	collectPhysics(s.root, &s.bodyBuf, &s.fieldBuf)

	current := make(map[*Body]bool, len(s.bodyBuf))
	for _, b := range s.bodyBuf {
		current[b] = true
		if !s.sceneBodies[b] {
			s.world.AddBody(b)
			s.sceneBodies[b] = true
		}
	}
	for b := range s.sceneBodies {
		if !current[b] {
			s.world.RemoveBody(b)
			delete(s.sceneBodies, b)
		}
	}

	currentFields := make(map[*Field]bool, len(s.fieldBuf))
	for _, f := range s.fieldBuf {
		currentFields[f] = true
		if !s.sceneFields[f] {
			s.world.AddField(f)
			s.sceneFields[f] = true
		}
	}
	for f := range s.sceneFields {
		if !currentFields[f] {
			s.world.RemoveField(f)
			delete(s.sceneFields, f)
		}
	}
}

// collectPhysics gathers bodies and fields from the subtree.
func collectPhysics(n *Node, bodies *[]*Body, fields *[]*Field) {
	if n.Body != nil {
		*bodies = append(*bodies, n.Body)
	}
	if n.Type == NodeTypeField && n.Field != nil {
		*fields = append(*fields, n.Field)
	}
	for _, child := range n.children {
		collectPhysics(child, bodies, fields)
	}
}

// NodeAtPoint returns the deepest visible node whose content bounds contain
// the given world-space point, or nil.
func (s *Scene) NodeAtPoint(x, y float64) *Node {
	return s.root.NodeAtPoint(x, y)
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool
