package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/config"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const validSitefile = `
locales: ["en", "fr"]
defaultLocale: en
siteUrl: https://example.com/
`

const validRoutes = `
en:
  - key: index
    path: /
    title: Home
  - key: about
    path: /about/
    title: About
    themeColor: "#000"
    anchors: ["team"]
fr:
  - key: index
    path: /fr/
  - key: about
    path: /fr/a-propos/
    title: À propos
    hidden: true
`

// newProject lays out a minimal site and returns its root.
func newProject(t *testing.T, sitefile, routes string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"src/pages", "src/data", "src/layouts", "src/partials"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte(sitefile), 0o600))
	if routes != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultRoutesFile), []byte(routes), 0o600))
	}
	return root
}

func newLoader(t *testing.T, env map[string]string) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	loader := config.NewLoader(log)
	loader.Getenv = func(key string) string { return env[key] }
	return loader, log
}

func TestLoad_Success(t *testing.T) {
	root := newProject(t, validSitefile, validRoutes)
	loader, _ := newLoader(t, nil)

	site, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, site.Root)
	assert.Equal(t, []string{"en", "fr"}, site.Locales)
	assert.Equal(t, "en", site.DefaultLocale)
	assert.Equal(t, "https://example.com", site.SiteURL)
	assert.True(t, site.AllowIndexing)
	assert.False(t, site.Production)
	assert.Equal(t, filepath.Join(root, "src", "pages"), site.PagesDir)
	assert.Equal(t, filepath.Join(root, "dist"), site.OutputDir)
	assert.Equal(t, filepath.Join(root, ".tmp"), site.DevOutputDir)
	assert.Equal(t, domain.CacheBackendJSON, site.CacheBackend)
	assert.Equal(t, domain.LinkModeSafetyNet, site.LinkMode)
	assert.Equal(t, config.DefaultStylePatterns, site.Assets.Styles)

	require.NotNil(t, site.Routes)
	assert.Equal(t, []string{"about", "index"}, site.Routes.Keys())

	about, ok := site.Routes.Lookup("about")
	require.True(t, ok)
	p, ok := about.Path("fr")
	require.True(t, ok)
	assert.Equal(t, "/fr/a-propos/", p)
	assert.Equal(t, "#000", about.ThemeColor("fr", "en"))
	assert.True(t, about.IsHidden("fr"))

	nav := site.Routes.Nav("fr")
	require.Len(t, nav, 1)
	assert.Equal(t, "index", nav[0].Key)
}

func TestLoad_DiscoversFromSubdirectory(t *testing.T) {
	root := newProject(t, validSitefile, validRoutes)
	loader, _ := newLoader(t, nil)

	site, err := loader.Load(filepath.Join(root, "src", "pages"))
	require.NoError(t, err)
	assert.Equal(t, root, site.Root)

	discovered, err := loader.DiscoverRoot(filepath.Join(root, "src", "data"))
	require.NoError(t, err)
	assert.Equal(t, root, discovered)
}

func TestLoad_NotFound(t *testing.T) {
	loader, _ := newLoader(t, nil)

	_, err := loader.Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestLoad_TOML(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"site/pages", "site/data"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}
	content := `
srcDir = "site"
locales = ["de"]
linkMode = "off"

[cache]
backend = "sqlite"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileNameTOML), []byte(content), 0o600))

	loader, log := newLoader(t, nil)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	site, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "site"), site.SrcDir)
	assert.Equal(t, filepath.Join(root, "site", "pages"), site.PagesDir)
	assert.Equal(t, "de", site.DefaultLocale)
	assert.Equal(t, domain.CacheBackendSQLite, site.CacheBackend)
	assert.Equal(t, domain.LinkModeOff, site.LinkMode)
	assert.Empty(t, site.Routes.Keys())
}

func TestLoad_Environment(t *testing.T) {
	root := newProject(t, validSitefile, validRoutes)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, domain.EnvFileName),
		[]byte("LOKAL_SITE_URL=https://from-dotenv.example\nLOKAL_ALLOW_INDEXING=false\n"),
		0o600,
	))

	t.Run("dotenv", func(t *testing.T) {
		loader, _ := newLoader(t, nil)
		site, err := loader.Load(root)
		require.NoError(t, err)
		assert.Equal(t, "https://from-dotenv.example", site.SiteURL)
		assert.False(t, site.AllowIndexing)
	})

	t.Run("process environment wins", func(t *testing.T) {
		loader, _ := newLoader(t, map[string]string{
			config.EnvSiteURL:    "https://process.example/",
			config.EnvProduction: "true",
		})
		site, err := loader.Load(root)
		require.NoError(t, err)
		assert.Equal(t, "https://process.example", site.SiteURL)
		assert.True(t, site.Production)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		loader, _ := newLoader(t, map[string]string{config.EnvProduction: "maybe"})
		_, err := loader.Load(root)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
	})
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		sitefile string
		setup    func(t *testing.T, root string)
		want     error
	}{
		{
			name:     "empty locale list",
			sitefile: "locales: []\n",
			want:     domain.ErrNoLocales,
		},
		{
			name:     "invalid locale",
			sitefile: "locales: [\"en\", \"not a locale\"]\n",
			want:     domain.ErrInvalidLocale,
		},
		{
			name:     "duplicate locale",
			sitefile: "locales: [\"en\", \"en\"]\n",
			want:     domain.ErrDuplicateLocale,
		},
		{
			name:     "default locale not listed",
			sitefile: "locales: [\"en\"]\ndefaultLocale: fr\n",
			want:     domain.ErrDefaultLocaleMissing,
		},
		{
			name:     "unknown cache backend",
			sitefile: "locales: [\"en\"]\ncache:\n  backend: redis\n",
			want:     domain.ErrUnknownCacheBackend,
		},
		{
			name:     "unknown link mode",
			sitefile: "locales: [\"en\"]\nlinkMode: aggressive\n",
			want:     domain.ErrUnknownLinkMode,
		},
		{
			name:     "missing pages directory",
			sitefile: "locales: [\"en\"]\n",
			setup: func(t *testing.T, root string) {
				t.Helper()
				require.NoError(t, os.RemoveAll(filepath.Join(root, "src", "pages")))
			},
			want: domain.ErrMissingSourceDir,
		},
		{
			name:     "malformed yaml",
			sitefile: "locales: [en\n",
			want:     domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t, tt.sitefile, validRoutes)
			if tt.setup != nil {
				tt.setup(t, root)
			}
			loader, _ := newLoader(t, nil)

			_, err := loader.Load(root)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want.Error())
		})
	}
}

func TestLoad_Routes(t *testing.T) {
	t.Run("unknown locale is skipped", func(t *testing.T) {
		routes := validRoutes + "\nde:\n  - key: index\n    path: /de/\n"
		root := newProject(t, validSitefile, routes)
		loader, log := newLoader(t, nil)
		log.EXPECT().Warn(gomock.Any()).Times(1)

		site, err := loader.Load(root)
		require.NoError(t, err)
		index, ok := site.Routes.Lookup("index")
		require.True(t, ok)
		_, ok = index.Path("de")
		assert.False(t, ok)
	})

	t.Run("entry without path", func(t *testing.T) {
		root := newProject(t, validSitefile, "en:\n  - key: index\n")
		loader, _ := newLoader(t, nil)

		_, err := loader.Load(root)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrInvalidRoute.Error())
	})

	t.Run("json document", func(t *testing.T) {
		root := newProject(t, validSitefile+"routes: routes.json\n", "")
		doc := `{"en": [{"key": "index", "path": "/", "title": "Home"}]}`
		require.NoError(t, os.WriteFile(filepath.Join(root, "routes.json"), []byte(doc), 0o600))
		loader, _ := newLoader(t, nil)

		site, err := loader.Load(root)
		require.NoError(t, err)
		index, ok := site.Routes.Lookup("index")
		require.True(t, ok)
		assert.Equal(t, "Home", index.Title("fr", "en"))
	})
}
