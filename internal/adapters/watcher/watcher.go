package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// Watcher implements file system watching using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	window    time.Duration
	ignore    []string
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher that coalesces events over window.
func NewWatcher(window time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: watcher,
		window:    window,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start begins watching the given root directory recursively.
func (w *Watcher) Start(ctx context.Context, root string, ignore ...string) error {
	for _, dir := range ignore {
		w.ignore = append(w.ignore, filepath.Clean(dir))
	}

	// Walk the directory tree and add all directories to the watcher.
	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	debouncer := NewDebouncer(w.window, func(batch []ports.WatchEvent) {
		for _, event := range batch {
			select {
			case w.events <- event:
			case <-ctx.Done():
				return
			}
		}
	})

	// Start processing events in a goroutine.
	go w.processEvents(ctx, debouncer)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
// The iterator ends when the watcher stops or its context is canceled.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // skip unreadable directories
			}
			if d.IsDir() {
				if w.shouldSkip(path) {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// shouldSkip reports whether a directory must not be watched.
func (w *Watcher) shouldSkip(dir string) bool {
	if shouldSkipDirectories[filepath.Base(dir)] {
		return true
	}
	return w.ignored(dir)
}

// ignored reports whether path is an ignored directory or lies below one.
func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// processEvents converts raw fsnotify events and feeds them through the debouncer.
// Watcher errors are forwarded unbatched so the consumer can report them.
func (w *Watcher) processEvents(ctx context.Context, debouncer *Debouncer) {
	defer func() {
		debouncer.Stop()
		close(w.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent := w.convertEvent(event)
			if watchEvent == nil {
				continue
			}
			debouncer.Add(*watchEvent)

			// If a new directory was created, add it to the watcher.
			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					for dir := range w.watchRecursively(event.Name) {
						_ = w.fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.events <- ports.WatchEvent{Operation: ports.OpError, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// convertEvent converts an fsnotify event to a ports.WatchEvent.
// Events below ignored directories and editor scratch files are dropped.
func (w *Watcher) convertEvent(event fsnotify.Event) *ports.WatchEvent {
	path := event.Name
	if w.ignored(path) || isScratchFile(filepath.Base(path)) {
		return nil
	}

	var op ports.WatchOp
	switch {
	case event.Op.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Op.Has(fsnotify.Rename):
		op = ports.OpRename
	case event.Op.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Op.Has(fsnotify.Write):
		op = ports.OpWrite
	default:
		return nil
	}

	return &ports.WatchEvent{Path: path, Operation: op}
}

func isScratchFile(name string) bool {
	return strings.HasPrefix(name, ".#") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx")
}
