package cas

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/lokal/internal/core/domain"
)

type classEntries map[string]domain.CacheEntry

// table is the in-memory state shared by every store backend.
type table struct {
	mu      sync.RWMutex
	entries map[domain.AssetClass]classEntries
}

func newTable() *table {
	return &table{entries: make(map[domain.AssetClass]classEntries)}
}

// Get retrieves the entry for a source.
func (t *table) Get(class domain.AssetClass, sourcePath string) (domain.CacheEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[class][sourcePath]
	return entry, ok
}

// Put stores the entry for a source.
func (t *table) Put(class domain.AssetClass, entry domain.CacheEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries[class] == nil {
		t.entries[class] = make(classEntries)
	}
	t.entries[class][entry.SourcePath] = entry
}

// Delete removes the entry for a source.
func (t *table) Delete(class domain.AssetClass, sourcePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries[class], sourcePath)
	if len(t.entries[class]) == 0 {
		delete(t.entries, class)
	}
}

// Entries returns every entry of a class, sorted by source path.
func (t *table) Entries(class domain.AssetClass) []domain.CacheEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := slices.Collect(maps.Values(t.entries[class]))
	slices.SortFunc(result, func(a, b domain.CacheEntry) int {
		return strings.Compare(a.SourcePath, b.SourcePath)
	})
	return result
}

func (t *table) replace(entries map[domain.AssetClass]classEntries) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[domain.AssetClass]classEntries, len(entries))
	for class, byPath := range entries {
		if len(byPath) == 0 {
			continue
		}
		t.entries[class] = byPath
	}
}

func (t *table) snapshot() map[domain.AssetClass]classEntries {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[domain.AssetClass]classEntries, len(t.entries))
	for class, byPath := range t.entries {
		out[class] = maps.Clone(byPath)
	}
	return out
}
