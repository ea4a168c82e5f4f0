package ports

import "go.trai.ch/lokal/internal/core/domain"

// CacheStore persists the last successful processing of every source asset.
// Its absence or corruption only affects build speed, never build output.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Load replaces the in-memory state with the persisted state.
	// On any failure the store is left empty and the cause is returned for reporting.
	Load() error
	// Get returns the entry for a source, if any.
	Get(class domain.AssetClass, sourcePath string) (domain.CacheEntry, bool)
	// Put records an entry, replacing any previous one for the same source.
	Put(class domain.AssetClass, entry domain.CacheEntry)
	// Delete removes the entry for a source that no longer exists.
	Delete(class domain.AssetClass, sourcePath string)
	// Entries returns every entry of a class.
	Entries(class domain.AssetClass) []domain.CacheEntry
	// Save writes the in-memory state to disk. Failures must not abort a build.
	Save() error
}

// StoreFactory opens the persistence of an output root.
type StoreFactory interface {
	// OpenStore creates the cache store selected by backend. The store is not loaded yet.
	OpenStore(backend domain.CacheBackend, outputDir string) (CacheStore, error)
	// FlushLock returns the lock guarding flushes into outputDir.
	FlushLock(outputDir string) FlushLocker
}
