package repository

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/giantswarm/lineage/pkg/logging"
)

// DefaultDebounce is used when a Watcher is created with a zero interval.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changed files below a root directory. Bursts of events
// are coalesced: after debounceInterval without new events, the changed
// paths (relative to root, sorted) are sent as one batch.
type Watcher struct {
	mu sync.Mutex

	// root is the directory paths are reported relative to
	root string

	// ignored are root-relative directories whose events are dropped
	ignored []string

	watcher *fsnotify.Watcher

	debounceInterval time.Duration
	timer            *time.Timer
	pending          map[string]bool

	stopCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher for root. Events below .git and the
// ignored directories are dropped.
func NewWatcher(root string, debounceInterval time.Duration, ignored ...string) *Watcher {
	if debounceInterval <= 0 {
		debounceInterval = DefaultDebounce
	}
	w := &Watcher{
		root:             root,
		debounceInterval: debounceInterval,
		pending:          make(map[string]bool),
		stopCh:           make(chan struct{}),
	}
	for _, dir := range append([]string{".git"}, ignored...) {
		if rel, ok := w.rel(dir); ok {
			w.ignored = append(w.ignored, rel)
		}
	}
	return w
}

// Start watches the given directories, relative to root or absolute, and
// sends batches of changed paths until ctx is done or Stop is called.
// Directories that do not exist are skipped.
func (w *Watcher) Start(ctx context.Context, dirs []string, changes chan<- []string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	watched := 0
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(w.root, dir)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logging.Warn("Watcher", "Failed to watch %s: %v", dir, err)
			continue
		}
		watched++
		logging.Debug("Watcher", "Watching directory: %s", dir)
	}

	go w.processEvents(ctx, changes)
	logging.Debug("Watcher", "Started watching %d directories below %s", watched, w.root)
	return nil
}

// Stop ends watching. Pending changes are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]bool)
	if err := w.watcher.Close(); err != nil {
		logging.Debug("Watcher", "Failed to close watcher: %v", err)
	}
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- []string) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, changes)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, changes chan<- []string) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel, ok := w.rel(event.Name)
	if !ok || w.isIgnored(rel) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.pending[rel] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceInterval, func() { w.flush(changes) })
}

func (w *Watcher) flush(changes chan<- []string) {
	w.mu.Lock()
	if !w.running || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(batch)
	select {
	case changes <- batch:
		logging.Debug("Watcher", "Emitted %d changed paths", len(batch))
	default:
		logging.Warn("Watcher", "Change channel full, dropping %d changed paths", len(batch))
	}
}

func (w *Watcher) rel(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.root, path)
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) isIgnored(rel string) bool {
	for _, dir := range w.ignored {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
