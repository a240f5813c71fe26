package bramble

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input events and screenshots across frames
// for scripted, repeatable runs. Attach to a Loop via SetTestRunner; the
// runner advances one step per frame, waiting for pending injections to
// drain before moving on.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Loop via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("bramble: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("bramble: parse test script: no steps")
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the loop. The runner's step method
// runs at the start of each frame's input capture, before injected events
// are delivered.
func (l *Loop) SetTestRunner(runner *TestRunner) {
	l.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame.
func (r *TestRunner) step(l *Loop) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(l.injectQueue) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		l.scene.Screenshot(st.Label)
	case "click":
		l.InjectClick(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		l.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(l.injectQueue) == 0 {
		r.done = true
	}
}
