package watch_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/watch"
)

func testSite(root string) *domain.Site {
	src := filepath.Join(root, "src")
	return &domain.Site{
		Root:         root,
		SrcDir:       src,
		PagesDir:     filepath.Join(src, "pages"),
		LayoutsDir:   filepath.Join(src, "layouts"),
		PartialsDir:  filepath.Join(src, "partials"),
		DataDir:      filepath.Join(src, "data"),
		PublicDir:    filepath.Join(root, "public"),
		OutputDir:    filepath.Join(root, "dist"),
		DevOutputDir: filepath.Join(root, ".tmp"),
		RoutesFile:   filepath.Join(src, "routes.yaml"),
		Locales:      []string{"en", "fr"},
	}
}

func assetsUnder(site *domain.Site) watch.AssetClassifier {
	return func(path string) (domain.AssetClass, bool) {
		switch {
		case filepath.Ext(path) == ".css":
			return domain.ClassStyles, true
		case filepath.Dir(path) == site.PublicDir:
			return domain.ClassPublic, true
		default:
			return "", false
		}
	}
}

func TestClassifier_Classify(t *testing.T) {
	root := "/site"
	site := testSite(root)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		event    ports.WatchEvent
		modTime  time.Time
		ok       bool
		category domain.ChangeCategory
		op       domain.ChangeOp
		class    domain.AssetClass
	}{
		{
			name:     "page template",
			event:    ports.WatchEvent{Path: "/site/src/pages/about.fr.tmpl", Operation: ports.OpWrite},
			modTime:  now,
			ok:       true,
			category: domain.CategoryTemplate,
			op:       domain.ChangeModified,
		},
		{
			name:    "non-template below pages",
			event:   ports.WatchEvent{Path: "/site/src/pages/notes.md", Operation: ports.OpWrite},
			modTime: now,
		},
		{
			name:     "removed page directory",
			event:    ports.WatchEvent{Path: "/site/src/pages/blog", Operation: ports.OpRemove},
			ok:       true,
			category: domain.CategoryTemplate,
			op:       domain.ChangeRemoved,
		},
		{
			name:     "layout",
			event:    ports.WatchEvent{Path: "/site/src/layouts/base.tmpl", Operation: ports.OpWrite},
			modTime:  now,
			ok:       true,
			category: domain.CategoryData,
			op:       domain.ChangeModified,
		},
		{
			name:     "translation data",
			event:    ports.WatchEvent{Path: "/site/src/data/fr.json", Operation: ports.OpCreate},
			modTime:  now,
			ok:       true,
			category: domain.CategoryData,
			op:       domain.ChangeAdded,
		},
		{
			name:     "route document",
			event:    ports.WatchEvent{Path: "/site/src/routes.yaml", Operation: ports.OpWrite},
			modTime:  now,
			ok:       true,
			category: domain.CategoryData,
			op:       domain.ChangeModified,
		},
		{
			name:     "stylesheet",
			event:    ports.WatchEvent{Path: "/site/src/styles/main.css", Operation: ports.OpWrite},
			modTime:  now,
			ok:       true,
			category: domain.CategoryAsset,
			op:       domain.ChangeModified,
			class:    domain.ClassStyles,
		},
		{
			name:     "renamed public file",
			event:    ports.WatchEvent{Path: "/site/public/robots.txt", Operation: ports.OpRename},
			ok:       true,
			category: domain.CategoryAsset,
			op:       domain.ChangeRemoved,
			class:    domain.ClassPublic,
		},
		{
			name:     "write to a vanished file",
			event:    ports.WatchEvent{Path: "/site/src/pages/index.tmpl", Operation: ports.OpWrite},
			ok:       true,
			category: domain.CategoryTemplate,
			op:       domain.ChangeRemoved,
		},
		{
			name:    "output tree",
			event:   ports.WatchEvent{Path: "/site/dist/assets/styles/main.css", Operation: ports.OpWrite},
			modTime: now,
		},
		{
			name:    "unrelated file",
			event:   ports.WatchEvent{Path: "/site/README.md", Operation: ports.OpWrite},
			modTime: now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := watch.NewClassifier(site, assetsUnder(site))
			change, ok := c.Classify(tt.event, tt.modTime)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.event.Path, change.Path)
			assert.Equal(t, tt.category, change.Category)
			assert.Equal(t, tt.op, change.Op)
			assert.Equal(t, tt.class, change.Class)
		})
	}
}

func TestClassifier_DebouncesUnchangedModTime(t *testing.T) {
	site := testSite("/site")
	c := watch.NewClassifier(site, nil)
	path := "/site/src/pages/about.tmpl"
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(time.Second)

	_, ok := c.Classify(ports.WatchEvent{Path: path, Operation: ports.OpWrite}, first)
	assert.True(t, ok)

	_, ok = c.Classify(ports.WatchEvent{Path: path, Operation: ports.OpWrite}, first)
	assert.False(t, ok, "same modification time is a duplicate notification")

	change, ok := c.Classify(ports.WatchEvent{Path: path, Operation: ports.OpWrite}, second)
	assert.True(t, ok)
	assert.Equal(t, first, change.PreviousModifiedAt)
	assert.Equal(t, second, change.ModifiedAt)

	_, ok = c.Classify(ports.WatchEvent{Path: path, Operation: ports.OpRemove}, time.Time{})
	assert.True(t, ok, "removals always proceed")

	_, ok = c.Classify(ports.WatchEvent{Path: path, Operation: ports.OpCreate}, second)
	assert.True(t, ok, "a recreated file is not a duplicate")
}
