package bramble

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state. Unexported; managed by
// ParticleEmitter. Particles are lightweight, non-owned entities: no node,
// no shape, no collision. Field evaluation treats every particle as having
// mass 1 and charge 1 regardless of its simulated speed.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64 // initial lifetime (for computing t)
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are silently dropped when full.
	MaxParticles int
	// EmitRate is the number of particles spawned per second.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial particle speeds in points per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// StartScale is the range of scale factors at birth, interpolated to
	// EndScale over lifetime.
	StartScale Range
	// EndScale is the range of scale factors at death.
	EndScale Range
	// StartAlpha is the range of alpha values at birth, interpolated to
	// EndAlpha over lifetime.
	StartAlpha Range
	// EndAlpha is the range of alpha values at death.
	EndAlpha Range
	// Gravity is a constant acceleration applied to all particles each
	// frame, independent of the world's gravity and fields.
	Gravity Vec2
	// Color is the particle tint.
	Color Color
	// FieldMask gates which force fields act on the emitter's particles.
	// Defaults to none; set to MaskAll to expose particles to every field.
	FieldMask uint32
	// WorldSpace, when true, causes particles to keep their world position
	// once emitted rather than following the emitter node.
	WorldSpace bool
}

// ParticleEmitter manages a pool of particles with CPU-based simulation.
type ParticleEmitter struct {
	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
	// The emitter's last known world position, set by the update walk so
	// world-space particles can be spawned at world coords.
	worldX, worldY float64
}

// newParticleEmitter creates a ParticleEmitter with a preallocated pool.
func newParticleEmitter(cfg EmitterConfig) *ParticleEmitter {
	max := cfg.MaxParticles
	if max <= 0 {
		max = 128
	}
	return &ParticleEmitter{
		config:    cfg,
		particles: make([]particle, max),
	}
}

// Start begins emitting particles.
func (e *ParticleEmitter) Start() {
	e.active = true
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.active = false
}

// Reset stops emitting and kills all alive particles.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
}

// IsActive reports whether the emitter is currently emitting new particles.
func (e *ParticleEmitter) IsActive() bool {
	return e.active
}

// AliveCount returns the number of alive particles.
func (e *ParticleEmitter) AliveCount() int {
	return e.alive
}

// Config returns a pointer to the emitter's config for live tuning.
func (e *ParticleEmitter) Config() *EmitterConfig {
	return &e.config
}

// update advances particle simulation by dt seconds. fields is the world's
// field list; eligible fields contribute forces with implicit unit mass and
// charge. Velocity-proportional fields (turbulence) additionally assume unit
// speed, which is why nominally stationary particles still respond to them
// while stationary full bodies do not.
func (e *ParticleEmitter) update(dt float64, fields []*Field) {
	gx := e.config.Gravity.X * dt
	gy := e.config.Gravity.Y * dt

	// Update existing particles, swap-remove dead ones.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			// Swap with last alive particle.
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vx += gx
		p.vy += gy

		if e.config.FieldMask != 0 {
			fx, fy := e.fieldForce(p, dt, fields)
			p.vx += fx * dt
			p.vy += fy * dt
		}

		p.x += p.vx * dt
		p.y += p.vy * dt

		// Interpolate properties.
		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)

		i++
	}

	// Emit new particles.
	if e.active && e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawnParticle()
			}
		}
	}
}

// fieldForce sums the eligible fields' contributions for one particle.
// Exclusive velocity fields override the particle's velocity directly.
func (e *ParticleEmitter) fieldForce(p *particle, dt float64, fields []*Field) (float64, float64) {
	pos := Vec2{e.worldX + p.x, e.worldY + p.y}
	if e.config.WorldSpace {
		pos = Vec2{p.x, p.y}
	}
	vel := Vec2{p.vx, p.vy}
	// Unit velocity floor: particles are treated as always in motion.
	effVel := vel
	if effVel.LengthSq() < 1 {
		n := effVel.Normalized()
		if n == (Vec2{}) {
			n = Vec2{1, 0}
		}
		effVel = n
	}

	var total Vec2
	for _, f := range fields {
		if !f.Enabled || e.config.FieldMask&f.CategoryMask == 0 || !f.covers(pos) {
			continue
		}
		contribution, override := f.evaluate(FieldInput{
			Position: pos.Sub(f.center()),
			Velocity: effVel,
			Mass:     1,
			Charge:   1,
			DeltaT:   dt,
		})
		if override {
			p.vx = contribution.X
			p.vy = contribution.Y
			if !f.NonExclusive {
				return 0, 0
			}
			continue
		}
		total = total.Add(contribution)
	}
	return total.X, total.Y
}

// spawnParticle initializes the particle at slot e.alive and increments alive.
func (e *ParticleEmitter) spawnParticle() {
	p := &e.particles[e.alive]

	angle := e.config.Angle.Random()
	speed := e.config.Speed.Random()
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed

	if e.config.WorldSpace {
		p.x = e.worldX
		p.y = e.worldY
	} else {
		p.x = 0
		p.y = 0
	}

	p.life = e.config.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(e.config.StartScale.Random())
	p.endScale = float32(e.config.EndScale.Random())
	p.scale = p.startScale

	p.startAlpha = float32(e.config.StartAlpha.Random())
	p.endAlpha = float32(e.config.EndAlpha.Random())
	p.alpha = p.startAlpha

	e.alive++
}

// updateParticles walks the tree and advances every emitter.
func updateParticles(n *Node, dt float64, fields []*Field) {
	if n.Type == NodeTypeEmitter && n.Emitter != nil {
		wp := n.WorldPosition()
		n.Emitter.worldX = wp.X
		n.Emitter.worldY = wp.Y
		n.Emitter.update(dt, fields)
	}
	for _, child := range n.children {
		updateParticles(child, dt, fields)
	}
}

// lerp32 linearly interpolates between a and b by t (float32).
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}
