package cas_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/cas"
	"go.trai.ch/lokal/internal/core/domain"
)

func TestFlushLock_Acquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", domain.LockFileName)

	first := cas.NewFlushLock(path)
	release, err := first.Acquire(context.Background())
	require.NoError(t, err)

	second := cas.NewFlushLock(path)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = second.Acquire(ctx)
	require.Error(t, err, "a held lock must not be acquired twice")
	assert.ErrorContains(t, err, domain.ErrStoreLocked.Error())

	release()

	releaseAgain, err := second.Acquire(context.Background())
	require.NoError(t, err)
	releaseAgain()
}
