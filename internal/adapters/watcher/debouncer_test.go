package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/watcher"
	"go.trai.ch/lokal/internal/core/ports"
)

func TestDebouncer_Add_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			callCount++
			received = events
		})

		d.Add(ports.WatchEvent{Path: "/site/src/styles/main.css", Operation: ports.OpWrite})

		// Advance time past the debounce window
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		require.Len(t, received, 1)
		assert.Equal(t, "/site/src/styles/main.css", received[0].Path)
	})
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(events []ports.WatchEvent) {
			callCount++
			received = events
		})

		// Editors often write the same file several times in a row.
		d.Add(ports.WatchEvent{Path: "/site/b.css", Operation: ports.OpWrite})
		time.Sleep(50 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/site/a.css", Operation: ports.OpWrite})
		time.Sleep(50 * time.Millisecond)
		d.Add(ports.WatchEvent{Path: "/site/b.css", Operation: ports.OpWrite})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		require.Len(t, received, 2)
		assert.Equal(t, "/site/a.css", received[0].Path)
		assert.Equal(t, "/site/b.css", received[1].Path)
	})
}

func TestDebouncer_MergesOperations(t *testing.T) {
	tests := []struct {
		name string
		ops  []ports.WatchOp
		want ports.WatchOp
	}{
		{name: "create then write", ops: []ports.WatchOp{ports.OpCreate, ports.OpWrite}, want: ports.OpCreate},
		{name: "write then remove", ops: []ports.WatchOp{ports.OpWrite, ports.OpRemove}, want: ports.OpRemove},
		{name: "remove then create", ops: []ports.WatchOp{ports.OpRemove, ports.OpCreate}, want: ports.OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				var received []ports.WatchEvent
				d := watcher.NewDebouncer(10*time.Millisecond, func(events []ports.WatchEvent) {
					received = events
				})
				for _, op := range tt.ops {
					d.Add(ports.WatchEvent{Path: "/site/x.tmpl", Operation: op})
				}

				time.Sleep(20 * time.Millisecond)
				synctest.Wait()

				require.Len(t, received, 1)
				assert.Equal(t, tt.want, received[0].Operation)
			})
		})
	}
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls int

		d := watcher.NewDebouncer(time.Hour, func([]ports.WatchEvent) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		d.Add(ports.WatchEvent{Path: "/site/a.css", Operation: ports.OpWrite})

		d.Flush()

		mu.Lock()
		assert.Equal(t, 1, calls)
		mu.Unlock()

		// Nothing pending, nothing delivered.
		d.Flush()
		mu.Lock()
		assert.Equal(t, 1, calls)
		mu.Unlock()
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		d := watcher.NewDebouncer(100*time.Millisecond, func([]ports.WatchEvent) {
			calls++
		})

		d.Add(ports.WatchEvent{Path: "/site/a.css", Operation: ports.OpWrite})
		d.Stop()
		d.Add(ports.WatchEvent{Path: "/site/b.css", Operation: ports.OpWrite})

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		assert.Zero(t, calls)
	})
}
