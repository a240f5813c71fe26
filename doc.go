// Package bramble is a retained-mode 2D scene graph with an integrated
// physics step engine, built on [Ebitengine].
//
// Bramble provides the node tree, transform hierarchy, a variable-timestep
// physics world with mask-driven collision and contact resolution, force
// fields, joints, corrective constraints, and the fixed-phase run loop that
// orchestrates them.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := bramble.NewScene()
//	// ... add nodes and bodies ...
//	loop := bramble.NewLoop(scene, bramble.LoopConfig{})
//	bramble.Run(loop, bramble.RunConfig{
//		Title: "My Simulation", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself, feed input with
// [Loop.PushInput], and call [Loop.Frame] and a [Renderer] directly.
//
// # Scene graph
//
// Every element is a [Node]. Nodes form a tree rooted at [Scene.Root].
// Children inherit their parent's transform and alpha. Create nodes with
// typed constructors: [NewContainer], [NewSprite], [NewFieldNode],
// [NewEmitterNode].
//
//	container := bramble.NewContainer("arena")
//	scene.Root().AddChild(container)
//
//	crate := bramble.NewSprite("crate", bramble.Vec2{X: 40, Y: 40})
//	crate.X, crate.Y = 100, 50
//	container.AddChild(crate)
//
// # Physics
//
// Attach a [Body] to a node with [Node.SetBody]; the body takes its
// footprint from a [Shape] and derives mass from density and area. Bodies
// interact according to their category, collision, and contact-test masks.
// The [World] steps all registered bodies in a fixed phase order once per
// frame: forces and fields, integration, collision and contact resolution,
// joints, then corrective node constraints.
//
//	body := bramble.NewBody(bramble.CircleShape(16))
//	crate.SetBody(body)
//	scene.World().AddBody(body)
//
// # Key features
//
// Bramble includes force fields (gravity wells, drag, noise, turbulence,
// vortex, electric and magnetic, plus scripted fields via [Tengo]), joints
// (pin, spring, fixed, sliding limit), positional node constraints,
// CPU-simulated particles that respond to fields, YAML world specs with
// live reload (via [fsnotify]), tweened actions (via [gween]), a [Camera]
// with follow, scroll, and culling, synthetic input injection with a
// JSON-scripted [TestRunner], labeled PNG screenshots, and ECS integration
// (via [Donburi] adapter in bramble/ecs).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Tengo]: https://github.com/d5/tengo
// [fsnotify]: https://github.com/fsnotify/fsnotify
// [Donburi]: https://github.com/yohamta/donburi
package bramble
