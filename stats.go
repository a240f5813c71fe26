package bramble

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewStatsWidget creates a Node that displays frame rate and physics step
// counters for the given world. The widget refreshes every ~0.5 seconds.
// It uses a custom internal image and ebitenutil.DebugPrint for rendering.
func NewStatsWidget(world *World) *Node {
	// 160x48 is enough for three lines of counters.
	img := ebiten.NewImage(160, 48)

	node := NewSprite("stats_widget", Vec2{})
	node.SetCustomImage(img)
	node.SetZIndex(255) // Draw on top

	var lastUpdate float64

	node.OnUpdate = func(dt float64) {
		lastUpdate += dt
		if lastUpdate < 0.5 {
			return
		}
		lastUpdate = 0

		img.Clear()
		// Semi-transparent background for readability
		img.Fill(color.RGBA{0, 0, 0, 128})

		st := world.Stats()
		ebitenutil.DebugPrint(img, fmt.Sprintf(
			"FPS: %.1f  TPS: %.1f\nbodies: %d  contacts: %d\nstep: %s",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			st.Bodies, st.Contacts, st.StepTime,
		))
	}

	return node
}
