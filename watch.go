package bramble

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SpecWatcher watches a world spec file and re-applies its world-level
// tuning (gravity, speed, solver passes) whenever the file changes on disk.
// The reload is handed to the loop with Do, so the world only mutates at a
// frame boundary — never mid-step. Parse errors are reported on Errors and
// the previous tuning stays in effect.
type SpecWatcher struct {
	watcher *fsnotify.Watcher
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// WatchWorldSpec starts watching path for changes. Each successful reload
// queues spec.ApplyTuning against the loop's scene world.
func WatchWorldSpec(path string, loop *Loop) (*SpecWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace files wholesale, which
	// drops a watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	sw := &SpecWatcher{
		watcher: w,
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go sw.run(path, loop)
	return sw, nil
}

// Close stops the watcher. Safe to call more than once.
func (sw *SpecWatcher) Close() error {
	var err error
	sw.once.Do(func() {
		close(sw.closeCh)
		err = sw.watcher.Close()
	})
	return err
}

func (sw *SpecWatcher) run(path string, loop *Loop) {
	var lastReload time.Time
	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire bursts of events per save; debounce.
			if time.Since(lastReload) < 100*time.Millisecond {
				continue
			}
			lastReload = time.Now()
			sw.reload(path, loop)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.reportError(err)
		case <-sw.closeCh:
			return
		}
	}
}

func (sw *SpecWatcher) reload(path string, loop *Loop) {
	data, err := os.ReadFile(path)
	if err != nil {
		sw.reportError(err)
		return
	}
	spec, err := LoadWorldSpec(data)
	if err != nil {
		sw.reportError(err)
		return
	}
	loop.Do(func() {
		spec.ApplyTuning(loop.Scene().World())
	})
}

func (sw *SpecWatcher) reportError(err error) {
	select {
	case sw.Errors <- err:
	default:
	}
}
