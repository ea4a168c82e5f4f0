package site

import (
	"bytes"
	"html/template"
	"path/filepath"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const rootPage = "index.html"

var redirectTemplate = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html lang="{{.Hreflang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="0; url={{.Target}}">
<link rel="canonical" href="{{.Target}}">
<title>Language selection</title>
</head>
<body>
<ul>
{{- range .Choices}}
<li><a href="{{.Path}}" hreflang="{{.Hreflang}}" lang="{{.Hreflang}}">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type localeChoice struct {
	Path     string
	Hreflang string
	Name     string
}

type redirectPage struct {
	Hreflang string
	Target   string
	Choices  []localeChoice
}

// writeRootRedirect writes a language selection page at the output root that
// redirects to the default locale's home. A page mapped to index.html takes precedence.
func (g *Generator) writeRootRedirect(pass Pass, c *collector) error {
	if c.has(rootPage) {
		return nil
	}

	page := redirectPage{
		Hreflang: domain.Hreflang(pass.Site.DefaultLocale),
		Target:   homePath(pass.Site, pass.Site.DefaultLocale),
	}
	for _, locale := range pass.Site.Locales {
		page.Choices = append(page.Choices, localeChoice{
			Path:     homePath(pass.Site, locale),
			Hreflang: domain.Hreflang(locale),
			Name:     localeName(locale),
		})
	}

	var buf bytes.Buffer
	if err := redirectTemplate.Execute(&buf, page); err != nil {
		return zerr.Wrap(err, domain.ErrRenderFailed.Error())
	}
	return g.write(pass, rootPage, buf.Bytes(), c)
}

// homePath returns the index route's path for a locale, else the locale root.
func homePath(site *domain.Site, locale string) string {
	if site.Routes != nil {
		if entry, ok := site.Routes.Lookup("index"); ok {
			if p, ok := entry.Path(locale); ok {
				return p
			}
		}
	}
	return "/" + locale + "/"
}

// localeName returns a locale's name in its own language.
func localeName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return locale
}

func sitePath(pass Pass, rel string) string {
	return filepath.Join(pass.Site.OutDir(), filepath.FromSlash(rel))
}
