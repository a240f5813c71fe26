package bramble

import (
	"fmt"
	"os"
)

// debugLogStep prints physics step stats to stderr. Only called when the
// scene is in debug mode.
func (s *Scene) debugLogStep() {
	if !s.debug {
		return
	}
	stats := s.world.Stats()
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] step: %v | dt: %.4fs | bodies: %d | contacts: %d\n",
		stats.StepTime, stats.DeltaTime, stats.Bodies, stats.Contacts)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called when the scene is in debug mode;
// in release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("bramble debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}
