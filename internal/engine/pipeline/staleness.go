package pipeline

import (
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
)

// Staleness decides whether a source must be reprocessed.
type Staleness struct {
	store    ports.CacheStore
	verifier ports.OutputVerifier
	root     string
}

// NewStaleness creates a detector for outputs below root.
func NewStaleness(store ports.CacheStore, verifier ports.OutputVerifier, root string) *Staleness {
	return &Staleness{store: store, verifier: verifier, root: root}
}

// IsStale reports true when there is no cache entry, the cached fingerprint differs,
// or any declared output is missing from disk.
func (s *Staleness) IsStale(
	class domain.AssetClass,
	sourcePath string,
	fingerprint domain.Fingerprint,
	declared domain.Outputs,
) bool {
	entry, ok := s.store.Get(class, sourcePath)
	if !ok || entry.Fingerprint != fingerprint {
		return true
	}

	present, err := s.verifier.VerifyOutputs(s.root, declared.Paths())
	if err != nil {
		return true
	}
	return !present
}
