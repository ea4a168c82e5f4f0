// Package watcher implements recursive file system watching with event coalescing.
package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unique"

	"go.trai.ch/lokal/internal/core/ports"
)

// Debouncer coalesces rapid file system events into batches, one event per path.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]ports.WatchEvent
	timer    *time.Timer
	window   time.Duration
	callback func(events []ports.WatchEvent)
	inflight sync.WaitGroup
	stopped  bool
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]ports.WatchEvent),
		window:   window,
		callback: callback,
	}
}

// Add records an event. A later event for the same path replaces the earlier one,
// except that a write following a create is still reported as a create.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	handle := unique.Make(event.Path)
	if prev, ok := d.pending[handle]; ok && prev.Operation == ports.OpCreate && event.Operation == ports.OpWrite {
		event.Operation = ports.OpCreate
	}
	d.pending[handle] = event

	// Reset the timer if it exists, or create a new one.
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// fire is called when the debounce window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if len(d.pending) == 0 || d.stopped {
		d.timer = nil
		d.mu.Unlock()
		return
	}
	batch := d.drain()
	d.timer = nil
	d.inflight.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.inflight.Done()
		if d.callback != nil {
			d.callback(batch)
		}
	}()
}

// Flush immediately delivers all pending events and blocks until the callback returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired, let it complete rather than processing twice.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	batch := d.drain()
	d.mu.Unlock()

	if len(batch) > 0 && d.callback != nil {
		d.callback(batch)
	}
}

// Stop discards pending events and waits for in-flight callbacks to return.
// Events added after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
	d.mu.Unlock()

	d.inflight.Wait()
}

// drain empties the pending set. The caller holds d.mu.
func (d *Debouncer) drain() []ports.WatchEvent {
	batch := make([]ports.WatchEvent, 0, len(d.pending))
	for _, event := range d.pending {
		batch = append(batch, event)
	}
	clear(d.pending)
	slices.SortFunc(batch, func(a, b ports.WatchEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	return batch
}
