package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

// Writer writes output files atomically and leaves files with identical content untouched,
// so unchanged outputs keep their modification time across passes.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes data to path unless the file already holds the same bytes.
// It reports whether the file was written.
func (w *Writer) WriteFile(path string, data []byte) (bool, error) {
	same, err := w.sameContent(path, data)
	if err != nil {
		return false, err
	}
	if same {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create temporary file"), "path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, zerr.With(zerr.Wrap(err, "failed to write temporary file"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to close temporary file"), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to set file mode"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to move file into place"), "path", path)
	}

	return true, nil
}

// CopyFile copies src to dst with the same write-if-changed semantics as WriteFile.
func (w *Writer) CopyFile(src, dst string) (bool, error) {
	data, err := os.ReadFile(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read file"), "path", src)
	}
	return w.WriteFile(dst, data)
}

// Remove deletes a file. A missing file is not an error.
func (w *Writer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
	}
	return nil
}

// sameContent compares the digest of the file on disk with the digest of data.
func (w *Writer) sameContent(path string, data []byte) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
	}
	if info.IsDir() || info.Size() != int64(len(data)) {
		return false, nil
	}

	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to open output"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to hash output"), "path", path)
	}

	return digest.Sum64() == xxhash.Sum64(data), nil
}
