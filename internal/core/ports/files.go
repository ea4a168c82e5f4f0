package ports

import (
	"context"
	"iter"
)

// FileWriter writes outputs. Writes leave files with identical content untouched.
type FileWriter interface {
	// WriteFile writes data to path and reports whether the file changed.
	WriteFile(path string, data []byte) (bool, error)
	// Remove deletes a file. A missing file is not an error.
	Remove(path string) error
}

// PatternResolver expands glob patterns into files.
type PatternResolver interface {
	// ResolvePatterns returns the sorted files matched by patterns relative to root.
	ResolvePatterns(patterns []string, root string) ([]string, error)
	// Matches reports whether path is selected by any pattern relative to root.
	Matches(patterns []string, root, path string) bool
	// Rel returns the logical name of path below the static base of the pattern that selects it.
	Rel(patterns []string, root, path string) (string, bool)
}

// FileWalker enumerates files below a directory.
type FileWalker interface {
	// WalkFiles yields every regular file below root that no ignore pattern matches.
	WalkFiles(root string, ignores []string) iter.Seq[string]
	// WalkExt yields the files below root with the given extension.
	WalkExt(root, ext string) iter.Seq[string]
}

// FlushLocker serializes cache and manifest flushes across processes.
type FlushLocker interface {
	// Acquire blocks until the lock is held or ctx is done. The returned function releases it.
	Acquire(ctx context.Context) (func(), error)
}
