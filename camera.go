package bramble

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the view into the scene: position, zoom, rotation, and
// viewport. A scene has at most one camera; without one the renderer uses
// the identity view.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// CullEnabled skips nodes whose world bounds don't intersect the
	// camera's visible area.
	CullEnabled bool

	followTarget  *Node
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
}

// newCamera creates a Camera with default values and the given viewport.
func newCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:        1.0,
		Viewport:    viewport,
		CullEnabled: true,
		dirty:       true,
	}
}

// NewCamera creates the scene's camera with the given screen-space viewport,
// replacing any previous one.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	s.camera = newCamera(viewport)
	return s.camera
}

// Camera returns the scene's camera, or nil if none was created.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Follow makes the camera track a target node with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following. Tracking a physics-driven node is the expected use.
func (c *Camera) Follow(node *Node, offsetX, offsetY, lerp float64) {
	c.followTarget = node
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position so the visible area
// stays within Bounds. Call this after modifying X/Y directly (e.g. in a
// drag callback) to prevent a single frame where the camera sees outside
// the bounds. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// update advances follow, scroll, and bounds clamping. Called from the
// scene's update phase.
func (c *Camera) update(dt float32) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	// Follow target
	if c.followTarget != nil && !c.followTarget.IsDisposed() {
		wp := c.followTarget.WorldPosition()
		targetX := wp.X + c.followOffsetX
		targetY := wp.Y + c.followOffsetY
		c.X += (targetX - c.X) * c.followLerp
		c.Y += (targetY - c.Y) * c.followLerp
	}

	// Scroll animation
	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	// Bounds clamping
	if c.BoundsEnabled {
		c.clampToBounds()
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// If bounds are smaller than visible area, center the camera.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
// where cx, cy = viewport center.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2

	cos := math.Cos(-c.Rotation)
	sin := math.Sin(-c.Rotation)
	z := c.Zoom

	// Combined: Translate(cx,cy) * Scale(z) * Rotate(-rot) * Translate(-X,-Y)
	a := z * cos
	b := -z * sin
	cc := z * sin
	d := z * cos
	tx := cx + z*(-cos*c.X+sin*c.Y)
	ty := cy + z*(-sin*c.X-cos*c.Y)

	c.viewMatrix = [6]float64{a, cc, b, d, tx, ty}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	sx, sy = transformPoint(c.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to world coordinates. Use this
// to turn pointer events into world-space hit tests while a camera is
// active.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	wx, wy = transformPoint(c.invViewMatrix, sx, sy)
	return
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's visible
// area in world space.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	inv := c.invViewMatrix

	vx := c.Viewport.X
	vy := c.Viewport.Y
	vr := vx + c.Viewport.Width
	vb := vy + c.Viewport.Height

	// Transform the four viewport corners to world space.
	x0, y0 := transformPoint(inv, vx, vy)
	x1, y1 := transformPoint(inv, vr, vy)
	x2, y2 := transformPoint(inv, vr, vb)
	x3, y3 := transformPoint(inv, vx, vb)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// shouldCull reports whether the node's own content lies entirely outside
// the camera's visible world-space bounds. Containers and boundless nodes
// are never culled; their children are tested individually.
func (c *Camera) shouldCull(n *Node) bool {
	if !c.CullEnabled {
		return false
	}
	local, ok := n.localBounds()
	if !ok {
		return false
	}
	aabb := transformRectAABB(n.worldTransform, local)
	return !aabb.Intersects(c.VisibleBounds())
}
