package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes SHA-256 content fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint returns the hex-encoded SHA-256 digest of data.
func (h *Hasher) Fingerprint(data []byte) domain.Fingerprint {
	sum := sha256.Sum256(data)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// FingerprintFile streams a file through SHA-256.
func (h *Hasher) FingerprintFile(path string) (domain.Fingerprint, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return domain.Fingerprint(hex.EncodeToString(digest.Sum(nil))), nil
}
