package bramble

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Renderer is the presentation-layer collaborator: it consumes the finalized
// node tree once per Finalize and produces pixels. The engine core only
// exposes settled transform and appearance state to it; rasterization
// strategy is the renderer's business.
type Renderer interface {
	Render(scene *Scene, screen *ebiten.Image)
}

// DebugRenderer draws the scene's sprites as solid quads and overlays body
// shapes, field regions, and particles. It is the batteries-included
// renderer for examples and debugging, not a general rasterizer.
type DebugRenderer struct {
	// DrawShapes toggles body shape outlines.
	DrawShapes bool
	// DrawFields toggles field region outlines.
	DrawFields bool

	whitePixel *ebiten.Image
}

// NewDebugRenderer creates a renderer with shape and field overlays enabled.
func NewDebugRenderer() *DebugRenderer {
	return &DebugRenderer{DrawShapes: true, DrawFields: true}
}

func (r *DebugRenderer) white() *ebiten.Image {
	if r.whitePixel == nil {
		r.whitePixel = ebiten.NewImage(1, 1)
		r.whitePixel.Fill(color.White)
	}
	return r.whitePixel
}

// Render clears the screen and draws the tree in Z order, through the
// scene's camera when one exists.
func (r *DebugRenderer) Render(scene *Scene, screen *ebiten.Image) {
	cc := scene.ClearColor
	screen.Fill(color.RGBA{
		R: uint8(cc.R * 255), G: uint8(cc.G * 255),
		B: uint8(cc.B * 255), A: uint8(cc.A * 255),
	})
	view := identityTransform
	zoom := 1.0
	if cam := scene.camera; cam != nil {
		view = cam.computeViewMatrix()
		zoom = cam.Zoom
	}
	r.drawNode(screen, scene.root, scene.camera, view, zoom, 1.0)
}

func (r *DebugRenderer) drawNode(screen *ebiten.Image, n *Node, cam *Camera, view [6]float64, zoom, parentAlpha float64) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Alpha
	culled := cam != nil && cam.shouldCull(n)

	switch n.Type {
	case NodeTypeSprite:
		if culled {
			break
		}
		if n.customImage != nil {
			wp := n.WorldPosition()
			sx, sy := transformPoint(view, wp.X, wp.Y)
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(sx, sy)
			op.ColorScale.ScaleAlpha(float32(alpha))
			screen.DrawImage(n.customImage, op)
		} else if n.ContentSize.X > 0 && n.ContentSize.Y > 0 {
			m := multiplyAffine(view, n.worldTransform)
			var geo ebiten.GeoM
			geo.Scale(n.ContentSize.X, n.ContentSize.Y)
			geo.Translate(-n.ContentSize.X/2, -n.ContentSize.Y/2)
			world := ebiten.GeoM{}
			world.SetElement(0, 0, m[0])
			world.SetElement(1, 0, m[1])
			world.SetElement(0, 1, m[2])
			world.SetElement(1, 1, m[3])
			world.SetElement(0, 2, m[4])
			world.SetElement(1, 2, m[5])
			geo.Concat(world)
			op := &ebiten.DrawImageOptions{GeoM: geo}
			op.ColorScale.Scale(
				float32(n.Color.R), float32(n.Color.G),
				float32(n.Color.B), float32(n.Color.A*alpha),
			)
			screen.DrawImage(r.white(), op)
		}
	case NodeTypeEmitter:
		if n.Emitter != nil {
			r.drawParticles(screen, n, view, alpha)
		}
	case NodeTypeField:
		if r.DrawFields && n.Field != nil && n.Field.Region != nil {
			wp := n.WorldPosition()
			sx, sy := transformPoint(view, wp.X, wp.Y)
			vector.StrokeCircle(screen,
				float32(sx), float32(sy), float32(n.Field.Region.Radius*zoom),
				1, color.RGBA{80, 160, 255, 120}, true)
		}
	}

	if r.DrawShapes && n.Body != nil && !n.Body.IsInert() && !culled {
		r.drawBody(screen, n.Body, view, zoom)
	}

	for _, child := range n.sortedChildrenForTraversal() {
		r.drawNode(screen, child, cam, view, zoom, alpha)
	}
}

func (r *DebugRenderer) drawBody(screen *ebiten.Image, b *Body, view [6]float64, zoom float64) {
	outline := color.RGBA{120, 255, 120, 180}
	var buf [4]placement
	for _, p := range b.placements(buf[:0]) {
		if p.shape.Kind == ShapeCircle {
			sx, sy := transformPoint(view, p.pos.X, p.pos.Y)
			vector.StrokeCircle(screen,
				float32(sx), float32(sy), float32(p.circleRadius()*zoom),
				1, outline, true)
			continue
		}
		verts := p.worldVertices()
		for i := range verts {
			ax, ay := transformPoint(view, verts[i].X, verts[i].Y)
			cx, cy := transformPoint(view, verts[(i+1)%len(verts)].X, verts[(i+1)%len(verts)].Y)
			vector.StrokeLine(screen,
				float32(ax), float32(ay), float32(cx), float32(cy),
				1, outline, true)
		}
	}
}

func (r *DebugRenderer) drawParticles(screen *ebiten.Image, n *Node, view [6]float64, alpha float64) {
	e := n.Emitter
	var originX, originY float64
	if !e.config.WorldSpace {
		wp := n.WorldPosition()
		originX, originY = wp.X, wp.Y
	}
	c := e.config.Color
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		size := float64(p.scale)
		if size <= 0 {
			size = 1
		}
		sx, sy := transformPoint(view, originX+p.x, originY+p.y)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(size, size)
		op.GeoM.Translate(sx-size/2, sy-size/2)
		op.ColorScale.Scale(
			float32(c.R), float32(c.G), float32(c.B),
			float32(float64(p.alpha)*alpha),
		)
		screen.DrawImage(r.white(), op)
	}
}

// RunConfig configures the Run convenience entry point.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// TargetTPS caps the simulation rate. An upper bound, not a guarantee:
	// slow frames simply integrate a larger delta.
	TargetTPS int
	// Renderer overrides the default DebugRenderer.
	Renderer Renderer
	// Input overrides the default ebiten-backed input source.
	Input InputSource
}

// game adapts a Loop to ebiten's Game interface.
type game struct {
	loop     *Loop
	input    InputSource
	renderer Renderer
	width    int
	height   int
	evBuf    []InputEvent
}

func (g *game) Update() error {
	g.evBuf = g.input.Poll(g.evBuf[:0])
	for _, ev := range g.evBuf {
		g.loop.PushInput(ev)
	}
	g.loop.Frame(time.Now())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.Render(g.loop.Scene(), screen)
	g.loop.Scene().flushScreenshots(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run creates a window and drives the loop until the window closes. For full
// control, implement ebiten.Game yourself and call Loop.Frame and a Renderer
// directly.
func Run(loop *Loop, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.TargetTPS > 0 {
		ebiten.SetTPS(cfg.TargetTPS)
	} else if loop.cfg.TargetTPS > 0 {
		ebiten.SetTPS(loop.cfg.TargetTPS)
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = NewDebugRenderer()
	}
	input := cfg.Input
	if input == nil {
		input = NewEbitenInput()
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	return ebiten.RunGame(&game{
		loop:     loop,
		input:    input,
		renderer: renderer,
		width:    cfg.Width,
		height:   cfg.Height,
	})
}
