package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/fs"
)

func TestWriter_WriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "en", "about.html")
	writer := fs.NewWriter()

	written, err := writer.WriteFile(path, []byte("<h1>About</h1>"))
	require.NoError(t, err)
	assert.True(t, written)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	written, err = writer.WriteFile(path, []byte("<h1>About</h1>"))
	require.NoError(t, err)
	assert.False(t, written, "identical content must not be rewritten")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))

	written, err = writer.WriteFile(path, []byte("<h1>About us</h1>"))
	require.NoError(t, err)
	assert.True(t, written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>About us</h1>", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriter_CopyFileAndRemove(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "robots.txt")
	dst := filepath.Join(tmpDir, "out", "robots.txt")
	writeFile(t, src, "User-agent: *")

	writer := fs.NewWriter()

	written, err := writer.CopyFile(src, dst)
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, writer.Remove(dst))
	require.NoError(t, writer.Remove(dst), "removing a missing file is not an error")

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}
