package site

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc   string      `xml:"loc"`
	Links []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// BuildSitemap returns the sitemap document for the base routes. Every visible
// route path of every locale gets one url element that lists all of its
// alternates plus an x-default pointing at the default locale.
func BuildSitemap(site *domain.Site, ids []string) ([]byte, error) {
	base := strings.TrimSuffix(site.SiteURL, "/")
	set := urlSet{NS: sitemapNS, XHTML: xhtmlNS}

	ids = slices.Clone(ids)
	slices.Sort(ids)

	for _, id := range ids {
		entry, ok := site.Routes.Lookup(id)
		if !ok {
			continue
		}

		alternates := entry.Alternates(site.Locales)
		links := make([]xhtmlLink, 0, len(alternates)+1)
		for _, alt := range alternates {
			links = append(links, xhtmlLink{Rel: "alternate", Hreflang: alt.Hreflang, Href: base + alt.Path})
		}
		if p, ok := entry.Path(site.DefaultLocale); ok {
			links = append(links, xhtmlLink{Rel: "alternate", Hreflang: "x-default", Href: base + p})
		}

		for _, alt := range alternates {
			if entry.IsHidden(alt.Locale) {
				continue
			}
			set.URLs = append(set.URLs, sitemapURL{Loc: base + alt.Path, Links: links})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRenderFailed.Error())
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (g *Generator) writeSitemap(pass Pass, groups map[string]*domain.BaseRouteGroup, c *collector) error {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}

	data, err := BuildSitemap(pass.Site, ids)
	if err != nil {
		return err
	}

	changed, err := g.writer.WriteFile(sitePath(pass, domain.SitemapFileName), data)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPageWriteFailed.Error()), "output", domain.SitemapFileName)
	}
	c.written(domain.SitemapFileName, changed)
	return nil
}
