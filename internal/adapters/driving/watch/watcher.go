// Package watch emits files newly created in a directory, for automatic
// ingestion of dropped documents.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// DefaultSettleDelay is how long a new file gets to finish writing
// before it is reported.
const DefaultSettleDelay = 200 * time.Millisecond

// Event is one newly created file.
type Event struct {
	// Path is the absolute path of the created file.
	Path string
}

// Watcher reports files created in a single directory. Hidden files and
// subdirectories are ignored.
type Watcher struct {
	dir    string
	settle time.Duration
	filter func(path string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter only reports paths the predicate accepts.
func WithFilter(fn func(path string) bool) Option {
	return func(w *Watcher) {
		w.filter = fn
	}
}

// WithSettleDelay overrides the write-settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// New creates a watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns the event channel. The channel is
// closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", w.dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}

	events := make(chan Event)
	go w.run(ctx, fw, events)
	return events, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, events chan<- Event) {
	defer close(events)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			if !w.accepts(ev.Name) {
				continue
			}

			// Give the writer a moment to finish before reporting.
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.settle):
			}
			if _, err := os.Stat(ev.Name); err != nil {
				continue // removed or renamed before it settled
			}

			select {
			case <-ctx.Done():
				return
			case events <- Event{Path: ev.Name}:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Debug("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) accepts(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	if w.filter != nil && !w.filter(path) {
		return false
	}
	return true
}
