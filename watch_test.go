package bramble

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchWorldSpecReloadsTuning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	if err := os.WriteFile(path, []byte("gravity: [0, 100]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	scene := NewScene()
	loop := NewLoop(scene, LoopConfig{})
	watcher, err := WatchWorldSpec(path, loop)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	if err := os.WriteFile(path, []byte("gravity: [0, -42]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The reload lands through Do at a frame boundary; pump frames until
	// the tuning shows up.
	base := time.Now()
	deadline := time.Now().Add(5 * time.Second)
	for i := 0; time.Now().Before(deadline); i++ {
		frameAt(loop, base, float64(i)/60)
		if scene.World().Gravity == (Vec2{0, -42}) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("gravity = %v, want {0 -42} after reload", scene.World().Gravity)
}

func TestWatchWorldSpecKeepsTuningOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	if err := os.WriteFile(path, []byte("gravity: [0, 100]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	scene := NewScene()
	scene.World().Gravity = Vec2{0, 100}
	loop := NewLoop(scene, LoopConfig{})
	watcher, err := WatchWorldSpec(path, loop)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	if err := os.WriteFile(path, []byte("speed: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-watcher.Errors:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a validation error on Errors")
	}

	base := time.Now()
	frameAt(loop, base, 0)
	frameAt(loop, base, 1.0/60)
	if scene.World().Gravity != (Vec2{0, 100}) {
		t.Errorf("gravity = %v, want unchanged {0 100}", scene.World().Gravity)
	}
	assertNear(t, "speed unchanged", scene.World().Speed, 1)
}

func TestWatchWorldSpecClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	if err := os.WriteFile(path, []byte("gravity: [0, 1]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loop := NewLoop(NewScene(), LoopConfig{})
	watcher, err := WatchWorldSpec(path, loop)
	if err != nil {
		t.Fatal(err)
	}
	if err := watcher.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
