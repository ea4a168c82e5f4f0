package site

import (
	"bytes"
	"context"
	"html/template"
	"path"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/engine/routes"
	"go.trai.ch/zerr"
)

// NotFoundID is the base route id of the not-found page templates (404.tmpl, 404.<locale>.tmpl).
// It is rendered once per locale into the locale directory instead of through the route table.
const NotFoundID = "404"

const notFoundPage = NotFoundID + domain.PageExt

var notFoundTemplate = template.Must(template.New("404").Parse(`<!DOCTYPE html>
<html lang="{{.Hreflang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>{{.Title}}</title>
</head>
<body>
<main>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
<p><a href="{{.Home}}">{{.HomeLabel}}</a></p>
</main>
</body>
</html>
`))

type notFoundData struct {
	Hreflang  string
	Title     string
	Heading   string
	Message   string
	Home      string
	HomeLabel string
}

// builtinStrings are the translation keys of the built-in page and their fallbacks.
var builtinStrings = []struct {
	key      string
	fallback string
}{
	{"404.title", "404 - Page Not Found"},
	{"404.heading", "404 - Page Not Found"},
	{"404.message", "The page you are looking for could not be found."},
	{"404.home", "Back to the home page"},
}

// writeNotFound writes <locale dir>/404.html for every locale. A 404 template in the pages
// directory is rendered when present, otherwise a built-in page with translated strings.
func (g *Generator) writeNotFound(ctx context.Context, pass Pass, group *domain.BaseRouteGroup, c *collector) {
	for _, locale := range pass.Site.Locales {
		output := path.Join(localeDir(pass.Site, locale), notFoundPage)

		markup, err := g.renderNotFound(ctx, pass, group, locale, output)
		if err != nil {
			g.fail(pass, output, err, c)
			continue
		}
		if err := g.write(pass, output, markup, c); err != nil {
			g.fail(pass, output, err, c)
			continue
		}
		g.recorder.ObservePage(true)
	}
}

func (g *Generator) renderNotFound(
	ctx context.Context,
	pass Pass,
	group *domain.BaseRouteGroup,
	locale, output string,
) ([]byte, error) {
	site := pass.Site
	if group != nil {
		if tmpl, err := routes.Resolve(group, locale); err == nil {
			route, _ := site.Routes.Lookup(NotFoundID)
			return g.renderer.Render(ctx, domain.PageRequest{
				Site:        site,
				BaseRouteID: NotFoundID,
				Locale:      locale,
				Template:    tmpl,
				Route:       route,
				Path:        "/" + output,
				OutputPath:  output,
				Manifest:    pass.Manifest,
			})
		}
	}

	text := make([]string, len(builtinStrings))
	for i, s := range builtinStrings {
		v, ok, err := g.renderer.Lookup(site, locale, s.key)
		if err != nil {
			return nil, err
		}
		if !ok || v == "" {
			v = s.fallback
		}
		text[i] = v
	}

	var buf bytes.Buffer
	err := notFoundTemplate.Execute(&buf, notFoundData{
		Hreflang:  domain.Hreflang(locale),
		Title:     text[0],
		Heading:   text[1],
		Message:   text[2],
		HomeLabel: text[3],
		Home:      homePath(site, locale),
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "output", output)
	}
	return buf.Bytes(), nil
}

// localeDir is the first segment of the locale's home path, else the locale itself.
// A home at the site root therefore keeps its locale-specific files under /<locale>/.
func localeDir(site *domain.Site, locale string) string {
	first, _, _ := strings.Cut(strings.Trim(homePath(site, locale), "/"), "/")
	if first == "" {
		return locale
	}
	return first
}
