package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/fs"
)

func TestResolver_ResolvePatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "src", "assets", "logo.png"), "png")
	writeFile(t, filepath.Join(tmpDir, "src", "assets", "icon.svg"), "svg")
	writeFile(t, filepath.Join(tmpDir, "src", "assets", "js", "app.js"), "js")

	resolver := fs.NewResolver()

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single pattern",
			patterns: []string{"src/assets/*.png"},
			want:     []string{"src/assets/logo.png"},
		},
		{
			name:     "multiple patterns are merged and sorted",
			patterns: []string{"src/assets/*.svg", "src/assets/*.png", "src/assets/*.png"},
			want:     []string{"src/assets/icon.svg", "src/assets/logo.png"},
		},
		{
			name:     "directories are not files",
			patterns: []string{"src/assets/*"},
			want:     []string{"src/assets/icon.svg", "src/assets/logo.png"},
		},
		{
			name:     "no matches",
			patterns: []string{"src/assets/*.gif"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolvePatterns(tt.patterns, tmpDir)
			require.NoError(t, err)

			rel := make([]string, 0, len(got))
			for _, path := range got {
				r, err := filepath.Rel(tmpDir, path)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestResolver_ResolvePatterns_BadPattern(t *testing.T) {
	resolver := fs.NewResolver()
	_, err := resolver.ResolvePatterns([]string{"src/[.css"}, t.TempDir())
	require.Error(t, err)
}

func TestResolver_Matches(t *testing.T) {
	root := "/site"
	resolver := fs.NewResolver()

	assert.True(t, resolver.Matches([]string{"src/styles/*.css"}, root, "/site/src/styles/main.css"))
	assert.False(t, resolver.Matches([]string{"src/styles/*.css"}, root, "/site/src/styles/partials/_vars.css"))
	assert.False(t, resolver.Matches(nil, root, "/site/src/styles/main.css"))
}

func TestResolver_Rel(t *testing.T) {
	root := "/site"
	resolver := fs.NewResolver()

	tests := []struct {
		name     string
		patterns []string
		path     string
		want     string
		ok       bool
	}{
		{
			name:     "flat pattern",
			patterns: []string{"src/assets/*.png"},
			path:     "/site/src/assets/logo.png",
			want:     "logo.png",
			ok:       true,
		},
		{
			name:     "wildcard directory is kept",
			patterns: []string{"src/assets/*/*.png"},
			path:     "/site/src/assets/team/photo.png",
			want:     "team/photo.png",
			ok:       true,
		},
		{
			name:     "first matching pattern wins",
			patterns: []string{"src/assets/*.svg", "src/*/icons/*.svg"},
			path:     "/site/src/brand/icons/mark.svg",
			want:     "brand/icons/mark.svg",
			ok:       true,
		},
		{
			name:     "not selected",
			patterns: []string{"src/assets/*.png"},
			path:     "/site/src/assets/team/photo.png",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolver.Rel(tt.patterns, root, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
