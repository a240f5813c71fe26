package bramble

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// maxPointers bounds the touch tracking table: pointer 0 = mouse, 1-9 = touch.
const maxPointers = 10

// InputEventKind identifies a discrete pointer transition.
type InputEventKind uint8

const (
	InputPointerDown InputEventKind = iota
	InputPointerUp
	InputPointerMove
)

// InputEvent is a discrete pointer event deposited into the per-frame input
// buffer. Events are captured strictly between the Finalize of one frame and
// the Update of the next — never mid-frame.
type InputEvent struct {
	Kind    InputEventKind
	X, Y    float64
	Pointer int // 0 = mouse, 1+ = touch
}

// InputSource supplies discrete input events to a Loop once per frame. The
// ebiten-backed implementation below is the default; substitute your own
// through RunConfig.Input.
type InputSource interface {
	// Poll appends the events that occurred since the previous poll.
	Poll(buf []InputEvent) []InputEvent
}

// EbitenInput polls ebiten's mouse and touch state and converts transitions
// into InputEvents.
type EbitenInput struct {
	prevMouseDown bool
	prevMouseX    int
	prevMouseY    int
	touchIDs      []ebiten.TouchID
	activeTouches map[ebiten.TouchID]int
	nextSlot      int
}

// NewEbitenInput creates an input source backed by ebiten's input state.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{activeTouches: make(map[ebiten.TouchID]int), nextSlot: 1}
}

// Poll converts ebiten mouse/touch state transitions into events.
func (in *EbitenInput) Poll(buf []InputEvent) []InputEvent {
	mx, my := ebiten.CursorPosition()
	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case down && !in.prevMouseDown:
		buf = append(buf, InputEvent{Kind: InputPointerDown, X: float64(mx), Y: float64(my)})
	case !down && in.prevMouseDown:
		buf = append(buf, InputEvent{Kind: InputPointerUp, X: float64(mx), Y: float64(my)})
	case mx != in.prevMouseX || my != in.prevMouseY:
		buf = append(buf, InputEvent{Kind: InputPointerMove, X: float64(mx), Y: float64(my)})
	}
	in.prevMouseDown = down
	in.prevMouseX, in.prevMouseY = mx, my

	in.touchIDs = inpututil.AppendJustPressedTouchIDs(in.touchIDs[:0])
	for _, id := range in.touchIDs {
		if in.nextSlot >= maxPointers {
			break
		}
		slot := in.nextSlot
		in.nextSlot++
		in.activeTouches[id] = slot
		x, y := ebiten.TouchPosition(id)
		buf = append(buf, InputEvent{Kind: InputPointerDown, X: float64(x), Y: float64(y), Pointer: slot})
	}
	for id, slot := range in.activeTouches {
		if inpututil.IsTouchJustReleased(id) {
			x, y := inpututil.TouchPositionInPreviousTick(id)
			buf = append(buf, InputEvent{Kind: InputPointerUp, X: float64(x), Y: float64(y), Pointer: slot})
			delete(in.activeTouches, id)
			continue
		}
		x, y := ebiten.TouchPosition(id)
		buf = append(buf, InputEvent{Kind: InputPointerMove, X: float64(x), Y: float64(y), Pointer: slot})
	}
	if len(in.activeTouches) == 0 {
		in.nextSlot = 1
	}
	return buf
}
