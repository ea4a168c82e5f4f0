package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputVerifier = (*Verifier)(nil)

// Verifier provides functionality to verify the existence of files.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs checks if all output files exist in the given root directory.
// Outputs are slash-separated paths relative to root.
func (v *Verifier) VerifyOutputs(root string, outputs []string) (bool, error) {
	for _, output := range outputs {
		path := filepath.Join(root, filepath.FromSlash(output))
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return false, nil
			}
			return false, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
		}
		if info.IsDir() {
			return false, nil
		}
	}
	return true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
