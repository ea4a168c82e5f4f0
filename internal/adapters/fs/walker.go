// Package fs provides file system adapters for walking, hashing, verifying and writing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root, skipping VCS directories,
// dot-directories and names matching the ignore patterns.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				//nolint:nilerr // Unreadable entries are skipped, the walk continues.
				return nil
			}

			if path != root && w.shouldSkip(d, ignores) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// WalkExt yields files below root whose extension is ext.
func (w *Walker) WalkExt(root, ext string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for path := range w.WalkFiles(root, nil) {
			if filepath.Ext(path) != ext {
				continue
			}
			if !yield(path) {
				return
			}
		}
	}
}

func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() && (name == ".git" || name == ".jj" || name == "node_modules") {
		return true
	}

	if strings.HasPrefix(name, ".") {
		return true
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
