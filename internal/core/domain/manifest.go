package domain

import (
	"encoding/json"
	"maps"
	"sync"
)

// Manifest maps logical asset references to the physical references emitted by a pass.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{entries: make(map[string]string)}
}

// Register maps a logical reference to its physical reference, replacing any previous mapping.
func (m *Manifest) Register(logical, physical string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[logical] = physical
}

// Unregister removes the mapping for a logical reference.
func (m *Manifest) Unregister(logical string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, logical)
}

// Lookup returns the physical reference for a logical reference.
func (m *Manifest) Lookup(logical string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	physical, ok := m.entries[logical]
	return physical, ok
}

// Resolve returns the physical reference, or the logical reference when unmapped.
func (m *Manifest) Resolve(logical string) string {
	if physical, ok := m.Lookup(logical); ok {
		return physical
	}
	return logical
}

// Len returns the number of mappings.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a copy of all mappings.
func (m *Manifest) Entries() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries)
}

// Clone returns an independent copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	return &Manifest{entries: m.Entries()}
}

// MarshalJSON serializes the manifest as a flat object with sorted keys.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// UnmarshalJSON replaces the manifest contents.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	return nil
}
