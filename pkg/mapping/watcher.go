package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change event
// before reloading. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Store when its mapping file changes on disk.
type Watcher struct {
	path     string
	store    *Store
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	onReload func(*Table, error)
}

// NewWatcher creates a watcher for path that reloads store.
// A nil logger uses slog.Default().
func NewWatcher(path string, store *Store, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		store:    store,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload sets a callback invoked after every reload attempt, with the new
// table on success or the error on failure.
func (w *Watcher) OnReload(fn func(*Table, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error if the watch could not be established or the watcher failed.
//
// The parent directory is watched rather than the file itself, so tools that
// save by writing a temporary file and renaming it are still noticed.
func (w *Watcher) Run(ctx context.Context) error {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve mapping path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	w.logger.Info("watching mapping file", "path", absPath)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("mapping file watcher error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	t, err := w.store.ReloadFile(w.path)
	if err != nil {
		w.logger.Error("failed to reload MIDI mappings, keeping previous table", "path", w.path, "error", err)
	} else {
		w.logger.Info("MIDI mappings reloaded", "path", w.path, "topics", t.Len())
	}

	w.mu.Lock()
	cb := w.onReload
	w.mu.Unlock()
	if cb != nil {
		cb(t, err)
	}
}
