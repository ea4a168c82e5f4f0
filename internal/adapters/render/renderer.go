// Package render turns page templates into markup with html/template.
package render

import (
	"bytes"
	"context"
	"html/template"
	"path/filepath"
	"slices"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

// Renderer implements ports.Renderer. Layouts and partials are parsed with every page,
// so edits to shared templates are picked up by the next render.
type Renderer struct {
	translations *Translations
}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{translations: NewTranslations()}
}

// PageData is the dot value of a page template.
type PageData struct {
	Key           string
	Locale        string
	Hreflang      string
	Locales       []string
	DefaultLocale string
	Path          string
	Title         string
	ThemeColor    string
	RTL           bool
	Production    bool
	AllowIndexing bool
	SiteURL       string
	Nav           []domain.NavItem
	Alternates    []domain.Alternate
	Data          map[string]any
	// Meta is data/meta.json, shared by every locale.
	Meta map[string]any
}

// Render executes the page's template variant with layouts and partials in scope.
func (r *Renderer) Render(ctx context.Context, page domain.PageRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	site := page.Site
	table, fallback, err := r.tables(site, page.Locale)
	if err != nil {
		return nil, err
	}

	meta, err := r.translations.Meta(site.DataDir)
	if err != nil {
		return nil, err
	}

	data := PageData{
		Key:           page.BaseRouteID,
		Locale:        page.Locale,
		Hreflang:      domain.Hreflang(page.Locale),
		Locales:       site.Locales,
		DefaultLocale: site.DefaultLocale,
		Path:          page.Path,
		RTL:           domain.IsRTL(page.Locale),
		Production:    site.Production,
		AllowIndexing: site.AllowIndexing,
		SiteURL:       site.SiteURL,
		Data:          table,
		Meta:          meta,
	}
	if page.Route != nil {
		data.Key = page.Route.Key
		data.Title = page.Route.Title(page.Locale, site.DefaultLocale)
		data.ThemeColor = page.Route.ThemeColor(page.Locale, site.DefaultLocale)
		data.Alternates = page.Route.Alternates(site.Locales)
	}
	if site.Routes != nil {
		data.Nav = site.Routes.Nav(page.Locale)
	}

	tmpl, err := r.parse(page, NewTranslator(table, fallback))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, filepath.Base(page.Template), data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "template", page.Template)
	}

	out := buf.Bytes()
	if site.LinkMode == domain.LinkModeSafetyNet && site.Routes != nil {
		out = RewriteLinks(out, site.Routes, page.Locale)
	}
	return out, nil
}

// Lookup translates key for a locale outside of a template.
func (r *Renderer) Lookup(site *domain.Site, locale, key string) (string, bool, error) {
	table, fallback, err := r.tables(site, locale)
	if err != nil {
		return "", false, err
	}
	text, ok := NewTranslator(table, fallback).Lookup(key)
	return text, ok, nil
}

// tables returns the locale's string table and the default locale's table.
func (r *Renderer) tables(site *domain.Site, locale string) (table, fallback map[string]any, err error) {
	if table, err = r.translations.Table(site.DataDir, locale); err != nil {
		return nil, nil, err
	}
	if locale == site.DefaultLocale {
		return table, table, nil
	}
	if fallback, err = r.translations.Table(site.DataDir, site.DefaultLocale); err != nil {
		return nil, nil, err
	}
	return table, fallback, nil
}

func (r *Renderer) parse(page domain.PageRequest, tr *Translator) (*template.Template, error) {
	site := page.Site
	files := make([]string, 0, 8)
	for _, dir := range []string{site.LayoutsDir, site.PartialsDir} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+domain.TemplateExt))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "dir", dir)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	files = append(files, page.Template)

	tmpl, err := template.New(filepath.Base(page.Template)).Funcs(funcs(page, tr)).ParseFiles(files...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "template", page.Template)
	}
	return tmpl, nil
}

func funcs(page domain.PageRequest, tr *Translator) template.FuncMap {
	return template.FuncMap{
		"t": tr.T,
		"asset": func(logical string) string {
			if page.Manifest == nil {
				return logical
			}
			return page.Manifest.Resolve(logical)
		},
		"url": func(key string) string {
			if page.Site.Routes == nil {
				return "/"
			}
			entry, ok := page.Site.Routes.Lookup(key)
			if !ok {
				return "/"
			}
			if p, ok := entry.Path(page.Locale); ok {
				return p
			}
			p, _ := entry.Path(page.Site.DefaultLocale)
			return p
		},
		"absURL": func(p string) string {
			return page.Site.SiteURL + p
		},
	}
}
