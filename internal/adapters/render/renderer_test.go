package render_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/render"
	"go.trai.ch/lokal/internal/core/domain"
)

const layout = `{{define "base"}}<!doctype html>
<html lang="{{.Hreflang}}"{{if .RTL}} dir="rtl"{{end}}>
<head><title>{{.Title}}</title>
<link rel="stylesheet" href="{{asset "/assets/styles/main.css"}}">
{{range .Alternates}}<link rel="alternate" hreflang="{{.Hreflang}}" href="{{.Path}}">
{{end}}</head>
<body>{{template "nav" .}}{{template "content" .}}</body>
</html>
{{end}}`

const nav = `{{define "nav"}}<nav>{{range .Nav}}<a href="{{.Path}}">{{.Title}}</a>{{end}}</nav>{{end}}`

const page = `{{define "content"}}<h1>{{t "home.title"}}</h1><p>{{t "home.missing"}}</p><a href="about">{{t "nav.about"}}</a>{{end}}{{template "base" .}}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newSite(t *testing.T) *domain.Site {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	site := &domain.Site{
		Root:          root,
		SrcDir:        src,
		PagesDir:      filepath.Join(src, "pages"),
		LayoutsDir:    filepath.Join(src, "layouts"),
		PartialsDir:   filepath.Join(src, "partials"),
		DataDir:       filepath.Join(src, "data"),
		Locales:       []string{"en", "fr"},
		DefaultLocale: "en",
		LinkMode:      domain.LinkModeSafetyNet,
		Routes:        domain.NewRouteTable("en", []string{"en", "fr"}),
	}
	site.Routes.Add("en", domain.RouteSpec{Key: "index", Path: "/", Title: "Home"})
	site.Routes.Add("en", domain.RouteSpec{Key: "about", Path: "/about/", Title: "About"})
	site.Routes.Add("fr", domain.RouteSpec{Key: "index", Path: "/fr/", Title: "Accueil"})
	site.Routes.Add("fr", domain.RouteSpec{Key: "about", Path: "/fr/a-propos/"})

	writeFile(t, filepath.Join(site.LayoutsDir, "base.tmpl"), layout)
	writeFile(t, filepath.Join(site.PartialsDir, "nav.tmpl"), nav)
	writeFile(t, filepath.Join(site.PagesDir, "index.tmpl"), page)
	writeFile(t, filepath.Join(site.DataDir, "en.json"), `{"home": {"title": "Welcome", "missing": "Only in English"}, "nav": {"about": "About us"}}`)
	writeFile(t, filepath.Join(site.DataDir, "fr.json"), `{"home": {"title": "Bienvenue"}, "nav": {"about": "À propos"}}`)
	return site
}

func request(site *domain.Site, locale string) domain.PageRequest {
	entry, _ := site.Routes.Lookup("index")
	p, _ := entry.Path(locale)
	manifest := domain.NewManifest()
	manifest.Register("/assets/styles/main.css", "/assets/styles/main.0123abcd.css")
	return domain.PageRequest{
		Site:        site,
		BaseRouteID: "index",
		Locale:      locale,
		Template:    filepath.Join(site.PagesDir, "index.tmpl"),
		Route:       entry,
		Path:        p,
		OutputPath:  domain.PageOutputPath(p, site.Locales),
		Manifest:    manifest,
	}
}

func TestRenderer_Render(t *testing.T) {
	site := newSite(t)
	r := render.NewRenderer()

	for _, locale := range site.Locales {
		t.Run(locale, func(t *testing.T) {
			out, err := r.Render(context.Background(), request(site, locale))
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, "page_"+locale, out)
		})
	}
}

func TestRenderer_LinkModeOff(t *testing.T) {
	site := newSite(t)
	site.LinkMode = domain.LinkModeOff
	r := render.NewRenderer()

	out, err := r.Render(context.Background(), request(site, "fr"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<a href="about">`)
}

func TestRenderer_PicksUpDataChanges(t *testing.T) {
	site := newSite(t)
	r := render.NewRenderer()

	out, err := r.Render(context.Background(), request(site, "en"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Welcome")

	path := filepath.Join(site.DataDir, "en.json")
	writeFile(t, path, `{"home": {"title": "Hello again"}}`)
	info, err := os.Stat(path)
	require.NoError(t, err)
	later := info.ModTime().Add(2e9)
	require.NoError(t, os.Chtimes(path, later, later))

	out, err = r.Render(context.Background(), request(site, "en"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Hello again")
}

func TestRenderer_Errors(t *testing.T) {
	t.Run("template syntax", func(t *testing.T) {
		site := newSite(t)
		writeFile(t, filepath.Join(site.PagesDir, "index.tmpl"), `{{if}}`)

		_, err := render.NewRenderer().Render(context.Background(), request(site, "en"))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrRenderFailed.Error())
	})

	t.Run("malformed data", func(t *testing.T) {
		site := newSite(t)
		writeFile(t, filepath.Join(site.DataDir, "fr.json"), `{`)

		_, err := render.NewRenderer().Render(context.Background(), request(site, "fr"))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrRenderFailed.Error())
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := render.NewRenderer().Render(ctx, request(newSite(t), "en"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestTranslator(t *testing.T) {
	tr := render.NewTranslator(
		map[string]any{"a": map[string]any{"b": "local"}, "n": 3.0},
		map[string]any{"a": map[string]any{"c": "fallback"}},
	)

	tests := []struct {
		key  string
		want string
	}{
		{key: "a.b", want: "local"},
		{key: "a.c", want: "fallback"},
		{key: "n", want: "3"},
		{key: "a", want: "a"},
		{key: "a.b.c", want: "a.b.c"},
		{key: "missing", want: "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.T(tt.key))
		})
	}
}

func TestTranslator_Placeholders(t *testing.T) {
	tr := render.NewTranslator(
		map[string]any{"greet": "Hello {{name}}, you have {{count}} items", "plain": "No params"},
		nil,
	)

	tests := []struct {
		name   string
		key    string
		params []any
		want   string
	}{
		{name: "pairs", key: "greet", params: []any{"name", "Ana", "count", 3}, want: "Hello Ana, you have 3 items"},
		{name: "map", key: "greet", params: []any{map[string]any{"name": "Ana", "count": 2.5}}, want: "Hello Ana, you have 2.5 items"},
		{name: "missing value stays", key: "greet", params: []any{"name", "Ana"}, want: "Hello Ana, you have {{count}} items"},
		{name: "no params", key: "greet", want: "Hello {{name}}, you have {{count}} items"},
		{name: "odd trailing name ignored", key: "greet", params: []any{"name", "Ana", "count"}, want: "Hello Ana, you have {{count}} items"},
		{name: "text without placeholders", key: "plain", params: []any{"name", "Ana"}, want: "No params"},
		{name: "unknown key", key: "nope", params: []any{"name", "Ana"}, want: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.T(tt.key, tt.params...))
		})
	}
}

func TestRenderer_PlaceholdersInTemplate(t *testing.T) {
	site := newSite(t)
	writeFile(t, filepath.Join(site.DataDir, "en.json"), `{"home": {"title": "Welcome {{who}}"}}`)
	writeFile(t, filepath.Join(site.PagesDir, "index.tmpl"), `<h1>{{t "home.title" "who" .Locale}}</h1>`)

	out, err := render.NewRenderer().Render(context.Background(), request(site, "en"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Welcome en</h1>", string(out))
}

func TestRenderer_Meta(t *testing.T) {
	const tmpl = `{{with .Meta.brand}}{{.name}}{{else}}none{{end}}|{{t "home.title"}}`

	t.Run("meta document in scope", func(t *testing.T) {
		site := newSite(t)
		writeFile(t, filepath.Join(site.DataDir, "meta.json"), `{"brand": {"name": "Lokal"}}`)
		writeFile(t, filepath.Join(site.PagesDir, "index.tmpl"), tmpl)

		for _, locale := range site.Locales {
			out, err := render.NewRenderer().Render(context.Background(), request(site, locale))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(out), "Lokal|"), "locale %s: %s", locale, out)
		}
	})

	t.Run("missing meta is empty", func(t *testing.T) {
		site := newSite(t)
		writeFile(t, filepath.Join(site.PagesDir, "index.tmpl"), tmpl)

		out, err := render.NewRenderer().Render(context.Background(), request(site, "en"))
		require.NoError(t, err)
		assert.Equal(t, "none|Welcome", string(out))
	})

	t.Run("malformed meta fails the render", func(t *testing.T) {
		site := newSite(t)
		writeFile(t, filepath.Join(site.DataDir, "meta.json"), `[`)

		_, err := render.NewRenderer().Render(context.Background(), request(site, "en"))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrRenderFailed.Error())
	})
}
