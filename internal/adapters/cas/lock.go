package cas

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

const lockRetryDelay = 25 * time.Millisecond

// FlushLock serializes cache and manifest flushes across processes sharing an output root.
type FlushLock struct {
	lock *flock.Flock
}

// NewFlushLock creates a lock backed by the file at path.
func NewFlushLock(path string) *FlushLock {
	return &FlushLock{lock: flock.New(filepath.Clean(path))}
}

// Acquire blocks until the lock is held or ctx is done.
// The returned function releases the lock.
func (l *FlushLock) Acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create lock directory")
	}

	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreLocked.Error()), "path", l.lock.Path())
	}
	if !locked {
		return nil, zerr.With(domain.ErrStoreLocked, "path", l.lock.Path())
	}

	return func() { _ = l.lock.Unlock() }, nil
}
