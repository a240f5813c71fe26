package bramble

import (
	"testing"
	"time"
)

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "screenshot", "label": "after-click"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadTestScriptInvalid(t *testing.T) {
	if _, err := LoadTestScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadTestScriptEmpty(t *testing.T) {
	if _, err := LoadTestScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestRunnerClickFlow(t *testing.T) {
	scene := NewScene()
	var events []InputEvent
	loop := collectLoop(scene, &events)

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "click", "x": 10, "y": 20}]}`))
	if err != nil {
		t.Fatal(err)
	}
	loop.SetTestRunner(runner)

	base := time.Now()
	// Frame 1: runner queues press+release, press delivered.
	frameAt(loop, base, 0)
	if len(events) != 1 || events[0].Kind != InputPointerDown {
		t.Fatalf("frame 1 events = %v", events)
	}
	if runner.Done() {
		t.Error("runner not done while injections pending")
	}
	// Frame 2: release delivered, queue drained.
	frameAt(loop, base, 1.0/60)
	if len(events) != 2 || events[1].Kind != InputPointerUp {
		t.Fatalf("frame 2 events = %v", events)
	}
	// Frame 3: runner observes the drained queue and finishes.
	frameAt(loop, base, 2.0/60)
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerWaitCountsFrames(t *testing.T) {
	scene := NewScene()
	loop := NewLoop(scene, LoopConfig{})

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "end"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	loop.SetTestRunner(runner)

	base := time.Now()
	frameAt(loop, base, 0) // executes wait
	frameAt(loop, base, 1.0/60)
	frameAt(loop, base, 2.0/60)
	if len(scene.screenshotQueue) != 0 {
		t.Fatal("screenshot should not be queued during the wait")
	}
	frameAt(loop, base, 3.0/60) // wait over; screenshot step runs
	if len(scene.screenshotQueue) != 1 || scene.screenshotQueue[0] != "end" {
		t.Fatalf("screenshotQueue = %v, want [end]", scene.screenshotQueue)
	}
}

func TestRunnerDragConsumesFrames(t *testing.T) {
	scene := NewScene()
	var events []InputEvent
	loop := collectLoop(scene, &events)

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 90, "toY": 0, "frames": 3}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	loop.SetTestRunner(runner)

	base := time.Now()
	for i := 0; i < 3; i++ {
		frameAt(loop, base, float64(i)/60)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	kinds := []InputEventKind{InputPointerDown, InputPointerMove, InputPointerUp}
	for i, want := range kinds {
		if events[i].Kind != want {
			t.Errorf("event[%d] = %v, want %v", i, events[i].Kind, want)
		}
	}
}

func TestRunnerStepAfterDoneIsNoOp(t *testing.T) {
	scene := NewScene()
	loop := NewLoop(scene, LoopConfig{})
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "wait", "frames": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	loop.SetTestRunner(runner)

	base := time.Now()
	for i := 0; i < 5; i++ {
		frameAt(loop, base, float64(i)/60)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}
