package ports

import "go.trai.ch/lokal/internal/core/domain"

// Hasher computes content fingerprints.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint returns the digest of data. It never fails.
	Fingerprint(data []byte) domain.Fingerprint
	// FingerprintFile returns the digest of a file's content.
	FingerprintFile(path string) (domain.Fingerprint, error)
}
