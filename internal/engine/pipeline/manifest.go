package pipeline

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

// ManifestBuilder accumulates the manifest of the running pass and publishes it on flush.
// Published manifests are never mutated, so pages rendered concurrently with a pass
// keep a consistent view.
type ManifestBuilder struct {
	path   string
	writer ports.FileWriter

	mu        sync.Mutex
	published *domain.Manifest
	pending   *domain.Manifest
}

// NewManifestBuilder creates a builder persisting to path.
func NewManifestBuilder(path string, writer ports.FileWriter) *ManifestBuilder {
	return &ManifestBuilder{path: path, writer: writer, published: domain.NewManifest()}
}

// Load publishes the persisted manifest. A missing artifact publishes an empty manifest.
func (b *ManifestBuilder) Load() error {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", b.path)
	}

	loaded := domain.NewManifest()
	if err := json.Unmarshal(data, loaded); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "path", b.path)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = loaded
	return nil
}

// Begin starts a pass. A full pass starts from an empty manifest; an incremental
// pass starts from the published one.
func (b *ManifestBuilder) Begin(full bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if full {
		b.pending = domain.NewManifest()
		return
	}
	b.pending = b.published.Clone()
}

// Register maps a logical reference to a physical one in the running pass.
func (b *ManifestBuilder) Register(logical, physical string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		b.pending = b.published.Clone()
	}
	b.pending.Register(logical, physical)
}

// Unregister drops a logical reference from the running pass.
func (b *ManifestBuilder) Unregister(logical string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil {
		b.pending.Unregister(logical)
	}
}

// Flush publishes the running pass and writes the artifact. The manifest is
// published even when the write fails.
func (b *ManifestBuilder) Flush() error {
	b.mu.Lock()
	if b.pending != nil {
		b.published = b.pending
		b.pending = nil
	}
	current := b.published
	b.mu.Unlock()

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if _, err := b.writer.WriteFile(b.path, append(data, '\n')); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", b.path)
	}
	return nil
}

// Current returns the published manifest.
func (b *ManifestBuilder) Current() *domain.Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}
