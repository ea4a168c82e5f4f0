package fs

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Resolver expands asset glob patterns into concrete files.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolvePatterns resolves patterns relative to root into a sorted, de-duplicated file list.
// A pattern without matches is not an error: not every site has every asset class.
func (r *Resolver) ResolvePatterns(patterns []string, root string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, pattern := range patterns {
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, pattern)
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", pattern)
		}

		for _, match := range matches {
			if isDir(match) {
				continue
			}
			unique[match] = struct{}{}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}

// Matches reports whether path is selected by any of the patterns relative to root.
func (r *Resolver) Matches(patterns []string, root, path string) bool {
	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, pattern)
		}
		if ok, _ := filepath.Match(full, path); ok {
			return true
		}
	}
	return false
}

// Rel returns path relative to the static base directory of the first pattern that
// selects it, in slash form. The static base is the longest leading run of pattern
// segments without glob metacharacters, so "src/assets/*/*.png" keeps the
// subdirectory the wildcard matched.
func (r *Resolver) Rel(patterns []string, root, path string) (string, bool) {
	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, pattern)
		}
		if ok, _ := filepath.Match(full, path); !ok {
			continue
		}
		rel, err := filepath.Rel(staticBase(full), path)
		if err != nil {
			return filepath.Base(path), true
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func staticBase(pattern string) string {
	segments := strings.Split(filepath.ToSlash(pattern), "/")
	static := segments[:0:0]
	for _, seg := range segments[:len(segments)-1] {
		if strings.ContainsAny(seg, "*?[\\") {
			break
		}
		static = append(static, seg)
	}
	return filepath.FromSlash(strings.Join(static, "/"))
}
