package bramble

import (
	"sync"
	"time"
)

// LoopPhase is the orchestrator's frame state. The order is fixed and not
// configurable: InputCapture -> Update -> Physics -> Constraints -> Finalize.
type LoopPhase uint8

const (
	PhaseIdle LoopPhase = iota
	PhaseInputCapture
	PhaseUpdate
	PhasePhysics
	PhaseConstraints
	PhaseFinalize
)

// String returns the phase name for logging.
func (p LoopPhase) String() string {
	switch p {
	case PhaseInputCapture:
		return "InputCapture"
	case PhaseUpdate:
		return "Update"
	case PhasePhysics:
		return "Physics"
	case PhaseConstraints:
		return "Constraints"
	case PhaseFinalize:
		return "Finalize"
	}
	return "Idle"
}

// LoopConfig configures the run-loop orchestrator.
type LoopConfig struct {
	// TargetTPS is the frame-rate target, an upper bound rather than a
	// guarantee. 0 uses the driver's default (ebiten's tick rate under Run).
	TargetTPS int

	// FixedStep, when positive, switches physics to a deterministic fixed
	// timestep: wall-clock time is accumulated and consumed in FixedStep
	// slices. When zero the loop integrates the full frame delta in one
	// variable step — faithful to observed framework behavior but
	// non-deterministic across differing frame timings.
	FixedStep float64

	// OnInput receives each buffered input event during InputCapture.
	OnInput func(InputEvent)

	// OnUpdate is the game update callback, run after input delivery and
	// before the physics step. Scene state read here has not been
	// integrated yet this frame.
	OnUpdate func(dt float64)

	// OnFinalize runs after constraints, when the frame's transform state
	// is settled and render-ready.
	OnFinalize func()
}

// Loop sequences the per-frame phases for a scene. One logical goroutine
// drives the loop; the scene graph and physics world are mutable only from
// it. Other goroutines hand work off through Do, applied at the next frame
// boundary.
type Loop struct {
	scene *Scene
	cfg   LoopConfig

	phase       LoopPhase
	lastTime    time.Time
	started     bool
	accumulator float64

	// pending holds events pushed since the last InputCapture; delivered
	// in order at the next one. Guarded for the external-source case.
	mu          sync.Mutex
	pending     []InputEvent
	boundary    []func()
	injectQueue []InputEvent
	testRunner  *TestRunner

	eventBuf []InputEvent
}

// NewLoop creates a loop driving the given scene.
func NewLoop(scene *Scene, cfg LoopConfig) *Loop {
	l := &Loop{scene: scene, cfg: cfg, phase: PhaseIdle}
	scene.world.setConstraintPass(func() {
		l.phase = PhaseConstraints
		applyConstraints(scene.root)
	})
	return l
}

// Scene returns the driven scene.
func (l *Loop) Scene() *Scene {
	return l.scene
}

// Phase returns the loop's current frame state. Between frames this is
// PhaseFinalize (or PhaseIdle before the first frame).
func (l *Loop) Phase() LoopPhase {
	return l.phase
}

// PushInput deposits a discrete input event into the buffer. Events pushed
// mid-frame are delivered at the next frame's InputCapture, never sooner.
func (l *Loop) PushInput(ev InputEvent) {
	l.mu.Lock()
	l.pending = append(l.pending, ev)
	l.mu.Unlock()
}

// Do queues fn for execution at the next frame boundary (the start of
// InputCapture). This is the only supported way to mutate the scene graph or
// physics world from another goroutine.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	l.boundary = append(l.boundary, fn)
	l.mu.Unlock()
}

// Frame runs one complete frame at the given wall-clock time. The physics
// delta is the elapsed time since the previous frame; in variable-timestep
// mode an arbitrarily long gap is absorbed by integrating a larger delta.
func (l *Loop) Frame(now time.Time) {
	var dt float64
	if l.started {
		dt = now.Sub(l.lastTime).Seconds()
	}
	l.lastTime = now
	l.started = true
	if dt < 0 {
		dt = 0
	}

	// --- InputCapture ---
	l.phase = PhaseInputCapture
	if l.testRunner != nil {
		l.testRunner.step(l)
	}
	l.mu.Lock()
	boundary := l.boundary
	l.boundary = nil
	events := l.pending
	l.pending = nil
	injected, haveInjected := l.popInjected()
	l.mu.Unlock()
	for _, fn := range boundary {
		fn()
	}
	if l.cfg.OnInput != nil {
		// One synthetic event per frame, ahead of real input, so scripted
		// sequences observe the same frame boundaries real input does.
		if haveInjected {
			l.cfg.OnInput(injected)
		}
		for _, ev := range events {
			l.cfg.OnInput(ev)
		}
	}

	// --- Update ---
	l.phase = PhaseUpdate
	if l.cfg.OnUpdate != nil {
		l.cfg.OnUpdate(dt)
	}
	l.scene.update(dt)

	// --- Physics (the world runs constraints as its corrective pass,
	// flipping the phase to PhaseConstraints before it notifies). ---
	l.phase = PhasePhysics
	l.scene.syncPhysics()
	if l.cfg.FixedStep > 0 {
		l.accumulator += dt
		for l.accumulator >= l.cfg.FixedStep {
			l.phase = PhasePhysics
			l.scene.world.Step(l.cfg.FixedStep)
			l.accumulator -= l.cfg.FixedStep
		}
	} else if dt > 0 {
		l.scene.world.Step(dt)
	}
	l.scene.debugLogStep()

	// --- Finalize ---
	l.phase = PhaseFinalize
	updateWorldTransform(l.scene.root, identityTransform, false)
	if l.cfg.OnFinalize != nil {
		l.cfg.OnFinalize()
	}
}
