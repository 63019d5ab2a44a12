package device

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the watcher waits after the last event
// node change before probing again.
const DefaultSettleDelay = 250 * time.Millisecond

// Watcher re-runs detection when event nodes appear or disappear.
type Watcher struct {
	det      *Detector
	fw       *fsnotify.Watcher
	settle   time.Duration
	onChange func(present bool)

	mu      sync.Mutex
	present bool
	closed  bool
	timer   *time.Timer
	scans   sync.WaitGroup
	done    chan struct{}
}

// Watch starts watching the detector's directory. onChange is called from
// the watcher goroutine whenever the detection result changes. The watcher
// stops when ctx is cancelled or Close is called; onChange is never called
// after Close returns.
func (d *Detector) Watch(ctx context.Context, onChange func(present bool)) (*Watcher, error) {
	return d.watch(ctx, DefaultSettleDelay, onChange)
}

func (d *Detector) watch(ctx context.Context, settle time.Duration, onChange func(bool)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(d.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", d.dir, err)
	}
	w := &Watcher{
		det:      d,
		fw:       fw,
		settle:   settle,
		onChange: onChange,
		present:  d.HasPhysicalKeyboard(),
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Present returns the last detection result.
func (w *Watcher) Present() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.present
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				w.shutdown()
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), "event") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			w.mu.Lock()
			if !w.closed {
				if w.timer != nil {
					w.timer.Stop()
				}
				w.timer = time.AfterFunc(w.settle, w.rescan)
			}
			w.mu.Unlock()

		case err, ok := <-w.fw.Errors:
			if !ok {
				w.shutdown()
				return
			}
			w.det.log.Warn("input device watch error", "error", err)
		}
	}
}

// shutdown stops pending rescans from starting and keeps running ones from
// reporting.
func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) rescan() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.scans.Add(1)
	w.mu.Unlock()
	defer w.scans.Done()

	present := w.det.HasPhysicalKeyboard()
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	changed := present != w.present
	w.present = present
	w.mu.Unlock()
	if changed {
		w.det.log.Info("physical keyboard presence changed", "present", present)
		if w.onChange != nil {
			w.onChange(present)
		}
	}
}

// Close stops the watcher and waits for its goroutine and any rescan in
// progress.
func (w *Watcher) Close() error {
	w.shutdown()
	err := w.fw.Close()
	<-w.done
	w.scans.Wait()
	return err
}
