// Package watcher hands completed downloads to a handler once they have
// stopped changing.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/fsnotify/fsnotify"
)

// Handler receives one job path: a top-level file or folder of the
// watched directory
type Handler func(ctx context.Context, path string)

// Config holds watcher configuration.
type Config struct {
	// Debounce is how long to wait after the last event before checking jobs.
	Debounce time.Duration

	// Settle is how long a job must be quiet before it is handed over.
	Settle time.Duration

	// Formats are the video extensions a top-level file needs to count as a job.
	Formats []string
}

// DefaultConfig returns default watcher configuration.
func DefaultConfig() Config {
	return Config{
		Debounce: 2 * time.Second,
		Settle:   10 * time.Second,
	}
}

// Prefixes SABnzbd gives job folders that are still unpacking or failed
var skipPrefixes = []string{"_UNPACK_", "_FAILED_"}

// Watcher monitors one download directory.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	config    Config
	formats   map[string]bool
	handler   Handler
	events    types.EventHandler

	// last event time per job
	pending map[string]time.Time
	now     func() time.Time
}

// New creates a watcher for root. Nothing is watched until Run.
func New(root string, config Config, handler Handler) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, types.ErrIO{Op: "stat", Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	if config.Settle < 0 {
		config.Settle = 0
	}

	formats := make(map[string]bool, len(config.Formats))
	for _, f := range config.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		formats[f] = true
	}

	return &Watcher{
		root:    abs,
		config:  config,
		formats: formats,
		handler: handler,
		events:  func(types.Event) {},
		pending: make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

// SetEventHandler sets the receiver of progress events.
func (w *Watcher) SetEventHandler(h types.EventHandler) {
	if h != nil {
		w.events = h
	}
}

func (w *Watcher) emit(t types.EventType, format string, a ...any) {
	w.events(types.Event{Type: t, Message: fmt.Sprintf(format, a...)})
}

// Run watches until ctx is cancelled. Jobs already present when Run
// starts are left alone.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsWatcher
	defer fsWatcher.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.emit(types.EventInfo, "Watching %s", w.root)

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.handleFsEvent(event) {
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emit(types.EventWarning, "Watcher error: %v", err)

		case <-timer.C:
			if wait := w.flush(ctx); wait > 0 {
				timer.Reset(wait)
			}
		}
	}
}

// addTree watches dir and every folder below it
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			if path == dir {
				return types.ErrIO{Op: "watch", Path: path, Err: err}
			}
			w.emit(types.EventWarning, "Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// handleFsEvent marks the job an event belongs to. It reports whether a
// job was marked.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	// a rename reports the old name; the new name arrives as a create
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	job := w.jobOf(event.Name)
	if job == "" || skipped(filepath.Base(job)) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.emit(types.EventWarning, "Failed to watch %s: %v", event.Name, err)
			}
		}
	}

	w.pending[job] = w.now()
	return true
}

// jobOf maps a path below root to its top-level entry
func (w *Watcher) jobOf(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	top := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	return filepath.Join(w.root, top)
}

// flush hands over every settled job in name order. It returns how long
// to wait before the next check, or zero when nothing is pending.
func (w *Watcher) flush(ctx context.Context) time.Duration {
	now := w.now()
	var ready []string
	var wait time.Duration

	for job, last := range w.pending {
		quiet := now.Sub(last)
		if quiet < w.config.Settle {
			if remaining := w.config.Settle - quiet; wait == 0 || remaining < wait {
				wait = remaining
			}
			continue
		}
		ready = append(ready, job)
	}
	sort.Strings(ready)

	for _, job := range ready {
		delete(w.pending, job)
		if ctx.Err() != nil {
			return 0
		}

		info, err := os.Stat(job)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			w.emit(types.EventWarning, "Skipping %s: %v", job, err)
			continue
		}
		if !info.IsDir() && !w.formats[strings.ToLower(filepath.Ext(job))] {
			continue
		}
		if info.IsDir() {
			w.fsWatcher.Remove(job)
		}

		w.emit(types.EventProgress, "Job ready: %s", filepath.Base(job))
		w.handler(ctx, job)
	}

	if wait > 0 && wait < w.config.Debounce {
		wait = w.config.Debounce
	}
	return wait
}

func skipped(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
