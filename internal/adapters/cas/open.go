package cas

import (
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

// Open creates the cache store selected by backend for an output root. The store is not loaded yet.
func Open(backend domain.CacheBackend, outputDir string) (ports.CacheStore, error) {
	switch backend {
	case "", domain.CacheBackendJSON:
		return NewStore(domain.CachePath(outputDir)), nil
	case domain.CacheBackendSQLite:
		return NewSQLiteStore(domain.CacheDBPath(outputDir)), nil
	default:
		return nil, zerr.With(domain.ErrUnknownCacheBackend, "backend", string(backend))
	}
}

var _ ports.StoreFactory = Factory{}

// Factory implements ports.StoreFactory.
type Factory struct{}

// OpenStore creates the cache store selected by backend.
func (Factory) OpenStore(backend domain.CacheBackend, outputDir string) (ports.CacheStore, error) {
	return Open(backend, outputDir)
}

// FlushLock returns the lock file guard of an output root.
func (Factory) FlushLock(outputDir string) ports.FlushLocker {
	return NewFlushLock(domain.LockPath(outputDir))
}
