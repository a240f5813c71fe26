package bramble

import (
	"fmt"
	"time"
)

const (
	// defaultSolverPasses controls collision re-detection iterations per
	// step. More passes means less clipping in stacked configurations.
	defaultSolverPasses = 3

	// restThreshold is the per-step position delta below which a body is
	// considered settled. Settled pairs are not re-evaluated for contact,
	// which is why flipping masks on two stationary overlapping bodies
	// produces no event until one is nudged or woken.
	restThreshold = 0.05
)

// World owns the physics bodies, joints, and force fields, and advances the
// simulation by one variable timestep per Step call (explicit Euler:
// velocity integrated from accumulated forces, position from velocity).
//
// The same initial configuration can produce different trajectories across
// runs when frame timing varies; see Loop for the fixed-timestep option.
type World struct {
	// Gravity is the persistent acceleration applied to every dynamic body
	// that is AffectedByGravity, in points per second squared.
	Gravity Vec2

	// Speed scales the timestep: 1 is real time, 0 pauses the simulation.
	Speed float64

	// SolverPasses is the number of collision resolution iterations.
	SolverPasses int

	bodies []*Body
	fields []*Field

	joints      map[JointID]*Joint
	jointOrder  []JointID
	nextJointID JointID

	// Active overlaps with matching contact-test masks.
	contacts map[pairKey]bool

	delegate       ContactDelegate
	constraintPass func()
	onStepComplete []func()

	stats StepStats
}

// StepStats reports timing and counts from the most recent step.
type StepStats struct {
	Bodies    int
	Contacts  int
	StepTime  time.Duration
	DeltaTime float64
}

// NewWorld creates an empty world with downward gravity (Y grows downward)
// and default solver settings.
func NewWorld() *World {
	return &World{
		Gravity:      Vec2{0, 980},
		Speed:        1,
		SolverPasses: defaultSolverPasses,
		joints:       make(map[JointID]*Joint),
		contacts:     make(map[pairKey]bool),
	}
}

// AddBody registers a body for simulation. The body must already be attached
// to a node (the node carries the integrated transform).
func (w *World) AddBody(b *Body) {
	if b.node == nil {
		panic("bramble: body must be attached to a node before adding to a world")
	}
	if b.world == w {
		return
	}
	b.world = w
	b.lastPos = b.position()
	w.bodies = append(w.bodies, b)
}

// RemoveBody unregisters a body and cascades removal of every joint that
// references it.
func (w *World) RemoveBody(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			copy(w.bodies[i:], w.bodies[i+1:])
			w.bodies[len(w.bodies)-1] = nil
			w.bodies = w.bodies[:len(w.bodies)-1]
			break
		}
	}
	b.world = nil
	for _, id := range w.jointOrder {
		j := w.joints[id]
		if j != nil && (j.A == b || j.B == b) {
			w.removeJointID(id)
		}
	}
	// Drop cached overlaps involving the body without emitting end events:
	// the pair no longer exists to be notified about.
	for key := range w.contacts {
		if key.a == b.pairID() || key.b == b.pairID() {
			delete(w.contacts, key)
		}
	}
}

// Bodies returns the registered bodies. The returned slice MUST NOT be
// mutated.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// AddField registers a force field. Fields attached to scene nodes are
// registered automatically by the scene sync.
func (w *World) AddField(f *Field) {
	for _, existing := range w.fields {
		if existing == f {
			return
		}
	}
	w.fields = append(w.fields, f)
}

// RemoveField unregisters a force field.
func (w *World) RemoveField(f *Field) {
	for i, existing := range w.fields {
		if existing == f {
			copy(w.fields[i:], w.fields[i+1:])
			w.fields[len(w.fields)-1] = nil
			w.fields = w.fields[:len(w.fields)-1]
			return
		}
	}
}

// AddJoint validates and registers a joint, returning an opaque handle.
// The handle (not a shared global) is how callers retain typed access to the
// joint later: store the JointID and look it up with Joint.
func (w *World) AddJoint(j *Joint) (JointID, error) {
	if err := j.validate(); err != nil {
		return 0, err
	}
	if j.A.world != w || (j.B != nil && j.B.world != w) {
		return 0, fmt.Errorf("bramble: joint bodies must be added to this world first")
	}
	w.nextJointID++
	id := w.nextJointID
	j.id = id
	j.capture()
	w.joints[id] = j
	w.jointOrder = append(w.jointOrder, id)
	return id, nil
}

// Joint returns the joint for a handle, or nil if it was removed.
func (w *World) Joint(id JointID) *Joint {
	return w.joints[id]
}

// RemoveJoint removes a joint by handle. Removing an unknown handle is a
// no-op.
func (w *World) RemoveJoint(id JointID) {
	w.removeJointID(id)
}

func (w *World) removeJointID(id JointID) {
	if _, ok := w.joints[id]; !ok {
		return
	}
	delete(w.joints, id)
	for i, existing := range w.jointOrder {
		if existing == id {
			w.jointOrder = append(w.jointOrder[:i], w.jointOrder[i+1:]...)
			return
		}
	}
}

// SetContactDelegate installs the receiver for contact begin/end events.
func (w *World) SetContactDelegate(d ContactDelegate) {
	w.delegate = d
}

// OnStepComplete registers a callback fired at the end of every step, after
// constraints are applied. Dependent systems (cameras, overlays) read
// settled state from here rather than after the Update phase.
func (w *World) OnStepComplete(fn func()) {
	w.onStepComplete = append(w.onStepComplete, fn)
}

// Stats returns counters from the most recent step.
func (w *World) Stats() StepStats {
	return w.stats
}

// setConstraintPass installs the scene's node-constraint walk, run as the
// corrective pass between collision resolution and step completion.
func (w *World) setConstraintPass(fn func()) {
	w.constraintPass = fn
}

// Step advances the simulation by dt seconds (scaled by Speed). The phase
// order is fixed:
//
//  1. persistent forces and field contributions
//  2. velocity integration
//  3. position integration
//  4. collision and contact resolution, then joints
//  5. corrective constraints
//  6. completion notification
func (w *World) Step(dt float64) {
	start := time.Now()
	dt *= w.Speed
	if dt <= 0 {
		return
	}

	w.prune()
	w.applyForcesAndFields(dt)
	w.integrate(dt)
	w.updateMotionState()
	w.resolveCollisions()
	w.resolveContacts()
	for _, id := range w.jointOrder {
		w.joints[id].solve(dt)
	}
	if w.constraintPass != nil {
		w.constraintPass()
	}
	w.settle()

	w.stats = StepStats{
		Bodies:    len(w.bodies),
		Contacts:  len(w.contacts),
		StepTime:  time.Since(start),
		DeltaTime: dt,
	}
	for _, fn := range w.onStepComplete {
		fn()
	}
}

// prune drops bodies whose nodes were disposed, cascading joint removal.
// Disposal zeroes the node ID, so cached overlaps for a disposed body are
// swept here by liveness rather than by ID match.
func (w *World) prune() {
	pruned := false
	for i := 0; i < len(w.bodies); {
		b := w.bodies[i]
		if b.node == nil || b.node.IsDisposed() {
			w.RemoveBody(b)
			pruned = true
			continue
		}
		i++
	}
	if pruned && len(w.contacts) > 0 {
		live := make(map[uint32]bool, len(w.bodies))
		for _, b := range w.bodies {
			live[b.pairID()] = true
		}
		for key := range w.contacts {
			if !live[key.a] || !live[key.b] {
				delete(w.contacts, key)
			}
		}
	}
}

// applyForcesAndFields accumulates gravity, user-applied forces, and field
// contributions for the step. An exclusive velocity field that claims a body
// suppresses every other field's contribution to that body.
func (w *World) applyForcesAndFields(dt float64) {
	for _, b := range w.bodies {
		if !b.Dynamic {
			continue
		}
		if b.AffectedByGravity {
			b.force = b.force.Add(w.Gravity.Scale(b.Mass()))
		}

		b.hasVelocityOverride = false
		var fieldForce Vec2
		exclusiveClaim := false
		pos := b.worldPosition()
		for _, f := range w.fields {
			if !f.Enabled || b.FieldMask&f.CategoryMask == 0 || !f.covers(pos) {
				continue
			}
			contribution, override := f.evaluate(FieldInput{
				Position: pos.Sub(f.center()),
				Velocity: b.Velocity,
				Mass:     b.Mass(),
				Charge:   b.Charge,
				DeltaT:   dt,
			})
			if override {
				b.velocityOverride = contribution
				b.hasVelocityOverride = true
				if !f.NonExclusive {
					exclusiveClaim = true
					break
				}
				continue
			}
			fieldForce = fieldForce.Add(contribution)
		}
		if !exclusiveClaim {
			b.force = b.force.Add(fieldForce)
		} else {
			// The exclusive velocity field replaces everything, gravity
			// and user forces included.
			b.force = Vec2{}
			b.torque = 0
		}
	}
}

// integrate advances velocities from forces, then positions from velocities
// (explicit Euler), applying damping. Accumulators are cleared afterwards.
func (w *World) integrate(dt float64) {
	for _, b := range w.bodies {
		if !b.Dynamic {
			b.force = Vec2{}
			b.torque = 0
			continue
		}

		if b.hasVelocityOverride {
			// Velocity fields replace the base velocity. A non-exclusive
			// override still lets the remaining forces integrate on top;
			// an exclusive one already zeroed the accumulator.
			b.Velocity = b.velocityOverride
		}
		invM := b.invMass()
		if invM > 0 {
			b.Velocity = b.Velocity.Add(b.force.Scale(invM * dt))
		}
		if !b.hasVelocityOverride && b.LinearDamping > 0 {
			b.Velocity = b.Velocity.Scale(1 / (1 + b.LinearDamping*dt))
		}
		b.AngularVelocity += b.torque * b.invMoment() * dt
		if b.AngularDamping > 0 {
			b.AngularVelocity /= 1 + b.AngularDamping*dt
		}

		b.setPosition(b.position().Add(b.Velocity.Scale(dt)))
		if b.AllowsRotation && b.node != nil {
			b.node.Rotation += b.AngularVelocity * dt
			b.node.transformDirty = true
		}

		b.force = Vec2{}
		b.torque = 0
		b.hasVelocityOverride = false
	}
}

// updateMotionState flags bodies that moved beyond the rest threshold this
// step. Contact re-evaluation is gated on this flag (or an explicit wake).
func (w *World) updateMotionState() {
	for _, b := range w.bodies {
		b.moved = b.position().Sub(b.lastPos).Length() > restThreshold
	}
}

// resolveCollisions runs the pairwise collision response. Either side's
// collision mask matching the other's category is sufficient (OR rule); the
// response itself is one-sided for a body whose own mask did not match.
func (w *World) resolveCollisions() {
	for pass := 0; pass < w.SolverPasses; pass++ {
		corrected := false
		for i := 0; i < len(w.bodies); i++ {
			a := w.bodies[i]
			if a.IsInert() {
				continue
			}
			aBox, okA := a.bodyAABB()
			if !okA {
				continue
			}
			for k := i + 1; k < len(w.bodies); k++ {
				b := w.bodies[k]
				if b.IsInert() || (!a.Dynamic && !b.Dynamic) {
					continue
				}
				if !collisionMatch(a, b) {
					continue
				}
				bBox, okB := b.bodyAABB()
				if !okB || !aBox.Intersects(bBox) {
					continue
				}
				if m, ok := collide(a, b); ok {
					resolveManifold(a, b, m)
					corrected = true
					aBox, _ = a.bodyAABB()
				}
			}
		}
		if !corrected {
			break
		}
	}
}

// resolveContacts diffs the current overlap set against the cached one and
// delivers begin/end transitions. Pairs where neither body moved this step
// (and neither was explicitly woken) are skipped entirely: their cached
// state is frozen, so mask changes on a settled pair are not retroactive.
func (w *World) resolveContacts() {
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		if a.IsInert() {
			continue
		}
		aBox, okA := a.bodyAABB()
		if !okA {
			continue
		}
		for k := i + 1; k < len(w.bodies); k++ {
			b := w.bodies[k]
			if b.IsInert() {
				continue
			}
			// Two static bodies never generate contact events.
			if !a.Dynamic && !b.Dynamic {
				continue
			}
			if !a.moved && !a.woken && !b.moved && !b.woken {
				continue
			}
			if !contactTestMatch(a, b) {
				continue
			}
			key := makePairKey(a, b)
			overlapping := false
			var m manifold
			if bBox, okB := b.bodyAABB(); okB && aBox.Intersects(bBox) {
				m, overlapping = collide(a, b)
			}
			was := w.contacts[key]
			switch {
			case overlapping && !was:
				w.contacts[key] = true
				if w.delegate != nil {
					w.delegate.DidBeginContact(ContactEvent{
						BodyA: a, BodyB: b, Phase: ContactBegin,
						Point: m.point, Normal: m.normal,
					})
				}
			case !overlapping && was:
				delete(w.contacts, key)
				if w.delegate != nil {
					w.delegate.DidEndContact(ContactEvent{
						BodyA: a, BodyB: b, Phase: ContactEnd,
					})
				}
			}
		}
	}
}

// settle records each body's position for the next step's motion check and
// clears one-shot wake flags.
func (w *World) settle() {
	for _, b := range w.bodies {
		b.lastPos = b.position()
		b.woken = false
	}
}
