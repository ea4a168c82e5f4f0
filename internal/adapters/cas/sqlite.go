package cas

import (
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.
)

var _ ports.CacheStore = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	class TEXT NOT NULL,
	source_path TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	primary_output TEXT NOT NULL,
	secondary_output TEXT NOT NULL DEFAULT '',
	source_modified_at INTEGER NOT NULL DEFAULT 0,
	degraded INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (class, source_path)
);
`

const selectEntries = `SELECT class, source_path, fingerprint, primary_output, secondary_output,
	source_modified_at, degraded FROM cache_entries`

// SQLiteStore implements ports.CacheStore on a SQLite database.
// Reads are served from memory; Save rewrites the table in one transaction.
type SQLiteStore struct {
	*table
	path string
}

// NewSQLiteStore creates an empty SQLiteStore for the database at path. Call Load to read it.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{table: newTable(), path: filepath.Clean(path)}
}

// open returns a database with a usable cache table. A file that is not a database,
// or whose table does not have the expected columns, is deleted and created again;
// recreated reports that the previous content was discarded.
func (s *SQLiteStore) open() (db *sql.DB, recreated bool, err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to create cache directory"), "path", s.path)
	}

	db, unusable, err := s.connect()
	if err == nil {
		return db, false, nil
	}
	if !unusable {
		return nil, false, err
	}

	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		if rmErr := os.Remove(s.path + suffix); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, false, zerr.With(zerr.Wrap(rmErr, "failed to remove corrupt cache database"), "path", s.path)
		}
	}
	db, _, err = s.connect()
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

// connect opens the database and checks the cache table. unusable is set when the
// file exists but cannot serve as the cache.
func (s *SQLiteStore) connect() (db *sql.DB, unusable bool, err error) {
	db, err = sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to open cache database"), "path", s.path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, true, zerr.With(zerr.Wrap(err, "failed to initialize cache schema"), "path", s.path)
	}
	rows, err := db.Query(selectEntries + ` LIMIT 0`)
	if err != nil {
		_ = db.Close()
		return nil, true, zerr.With(zerr.Wrap(err, "cache table does not match the schema"), "path", s.path)
	}
	_ = rows.Close()
	return db, false, nil
}

// Load reads every row. Any failure leaves the store empty and returns the cause.
func (s *SQLiteStore) Load() error {
	s.replace(nil)

	db, recreated, err := s.open()
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	defer db.Close() //nolint:errcheck // Best effort close in defer
	if recreated {
		return zerr.With(domain.ErrStoreCorrupt, "path", s.path)
	}

	rows, err := db.Query(selectEntries)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "path", s.path)
	}
	defer rows.Close() //nolint:errcheck // Best effort close in defer

	loaded := make(map[domain.AssetClass]classEntries)
	for rows.Next() {
		var (
			class      string
			entry      domain.CacheEntry
			modifiedAt int64
			degraded   int
		)
		if err := rows.Scan(&class, &entry.SourcePath, &entry.Fingerprint, &entry.Outputs.Primary,
			&entry.Outputs.Secondary, &modifiedAt, &degraded); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "path", s.path)
		}
		if modifiedAt != 0 {
			entry.SourceModifiedAt = time.Unix(0, modifiedAt)
		}
		entry.Degraded = degraded != 0
		c := domain.AssetClass(class)
		if loaded[c] == nil {
			loaded[c] = make(classEntries)
		}
		loaded[c][entry.SourcePath] = entry
	}
	if err := rows.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "path", s.path)
	}

	s.replace(loaded)
	return nil
}

// Save replaces the table content with the in-memory state.
func (s *SQLiteStore) Save() error {
	db, _, err := s.open()
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer db.Close() //nolint:errcheck // Best effort close in defer

	tx, err := db.Begin()
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.Exec(`DELETE FROM cache_entries`); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	stmt, err := tx.Prepare(`INSERT INTO cache_entries
		(class, source_path, fingerprint, primary_output, secondary_output, source_modified_at, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer stmt.Close() //nolint:errcheck // Best effort close in defer

	for class, byPath := range s.snapshot() {
		for _, entry := range byPath {
			var modifiedAt int64
			if !entry.SourceModifiedAt.IsZero() {
				modifiedAt = entry.SourceModifiedAt.UnixNano()
			}
			degraded := 0
			if entry.Degraded {
				degraded = 1
			}
			if _, err := stmt.Exec(string(class), entry.SourcePath, string(entry.Fingerprint),
				entry.Outputs.Primary, entry.Outputs.Secondary, modifiedAt, degraded); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "source", entry.SourcePath)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}
