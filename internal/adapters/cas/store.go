// Package cas implements the persisted asset cache and the flush lock that guards it.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lokalfs "go.trai.ch/lokal/internal/adapters/fs"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore using a single JSON document.
// The document shape is private: {"images": {"<source>": entry}, "styles": {...}}.
type Store struct {
	*table
	path   string
	writer *lokalfs.Writer
}

// NewStore creates an empty Store backed by the file at the given path. Call Load to read it.
func NewStore(path string) *Store {
	return &Store{
		table:  newTable(),
		path:   filepath.Clean(path),
		writer: lokalfs.NewWriter(),
	}
}

// Load reads the cache document. A missing file is a cold cache. A corrupt file
// leaves the store empty and returns the cause.
func (s *Store) Load() error {
	s.replace(nil)

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.path)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var decoded map[domain.AssetClass]classEntries
	if err := json.Unmarshal(data, &decoded); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "path", s.path)
	}

	s.replace(decoded)
	return nil
}

// Save writes the cache document atomically.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	if _, err := s.writer.WriteFile(s.path, append(data, '\n')); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}

	return nil
}

// Path returns the location of the cache document.
func (s *Store) Path() string {
	return s.path
}
