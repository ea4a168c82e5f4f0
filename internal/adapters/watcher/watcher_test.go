package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/watcher"
	"go.trai.ch/lokal/internal/core/ports"
)

// collect reads events until one matches path or the deadline passes.
func collect(t *testing.T, events <-chan ports.WatchEvent, path string) (ports.WatchEvent, bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return ports.WatchEvent{}, false
			}
			if event.Path == path {
				return event, true
			}
		case <-deadline:
			return ports.WatchEvent{}, false
		}
	}
}

func startWatcher(t *testing.T, root string, ignore ...string) <-chan ports.WatchEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	w, err := watcher.NewWatcher(10 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx, root, ignore...))
	t.Cleanup(func() { _ = w.Stop() })

	ch := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(ch)
		for event := range w.Events() {
			ch <- event
		}
	}()
	return ch
}

func TestWatcher_ReportsNestedChanges(t *testing.T) {
	root := t.TempDir()
	pages := filepath.Join(root, "src", "pages")
	require.NoError(t, os.MkdirAll(pages, 0o750))

	events := startWatcher(t, root)

	path := filepath.Join(pages, "about.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("about"), 0o600))

	event, ok := collect(t, events, path)
	require.True(t, ok, "expected an event for %s", path)
	assert.Equal(t, ports.OpCreate, event.Operation)

	require.NoError(t, os.Remove(path))
	event, ok = collect(t, events, path)
	require.True(t, ok)
	assert.Equal(t, ports.OpRemove, event.Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0o750))
	_, ok := collect(t, events, dir)
	require.True(t, ok)

	path := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(path, []byte("body{}"), 0o600))
	_, ok = collect(t, events, path)
	assert.True(t, ok)
}

func TestWatcher_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, ".tmp")
	require.NoError(t, os.MkdirAll(out, 0o750))

	events := startWatcher(t, root, out)

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o600))
	marker := filepath.Join(root, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	// Files below the output root are never reported.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case event := <-events:
			require.NotEqual(t, filepath.Join(out, "index.html"), event.Path)
			if event.Path == marker {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for marker event")
		}
	}
}
