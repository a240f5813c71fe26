package bramble

// Synthetic pointer injection: scripted pointer sequences for tests and
// automated drivers. Injected events carry screen coordinates and are
// converted to world coordinates through the scene's camera at delivery
// time, identical to real pointer input. One injected event is consumed
// per frame so press/move/release sequences observe the same frame
// boundaries real input does.

// InjectPress queues a pointer-down event at the given screen coordinates.
// The event is delivered on the next frame's input capture.
func (l *Loop) InjectPress(x, y float64) {
	l.mu.Lock()
	l.injectQueue = append(l.injectQueue, InputEvent{Kind: InputPointerDown, X: x, Y: y})
	l.mu.Unlock()
}

// InjectMove queues a pointer-move event at the given screen coordinates.
// Use this between InjectPress and InjectRelease to simulate a drag.
func (l *Loop) InjectMove(x, y float64) {
	l.mu.Lock()
	l.injectQueue = append(l.injectQueue, InputEvent{Kind: InputPointerMove, X: x, Y: y})
	l.mu.Unlock()
}

// InjectRelease queues a pointer-up event at the given screen coordinates.
func (l *Loop) InjectRelease(x, y float64) {
	l.mu.Lock()
	l.injectQueue = append(l.injectQueue, InputEvent{Kind: InputPointerUp, X: x, Y: y})
	l.mu.Unlock()
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (l *Loop) InjectClick(x, y float64) {
	l.InjectPress(x, y)
	l.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes frames frames. Minimum is 2
// (press + release).
func (l *Loop) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	l.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		l.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	l.InjectRelease(toX, toY)
}

// popInjected removes and returns the next injected event, converted to
// world coordinates through the scene camera. Called under l.mu.
func (l *Loop) popInjected() (InputEvent, bool) {
	if len(l.injectQueue) == 0 {
		return InputEvent{}, false
	}
	ev := l.injectQueue[0]
	copy(l.injectQueue, l.injectQueue[1:])
	l.injectQueue = l.injectQueue[:len(l.injectQueue)-1]
	if cam := l.scene.camera; cam != nil {
		ev.X, ev.Y = cam.ScreenToWorld(ev.X, ev.Y)
	}
	return ev, true
}
