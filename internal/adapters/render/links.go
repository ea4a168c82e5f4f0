package render

import (
	"regexp"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
)

var hrefAttr = regexp.MustCompile(`href="([^"]*)"`)

// skippedPrefixes mark hrefs that never name a route.
var skippedPrefixes = []string{"http:", "https:", "//", "#", "mailto:", "tel:", "/assets/", "data:"}

// RewriteLinks resolves hrefs written as route keys ("about", "/about", "about.html") to the
// current locale's route path. Paths that already belong to a route in any locale, external
// links and asset links are left alone. Fragments and query strings are preserved.
func RewriteLinks(markup []byte, routes *domain.RouteTable, locale string) []byte {
	routed := make(map[string]bool)
	for _, key := range routes.Keys() {
		entry, _ := routes.Lookup(key)
		for _, p := range entry.Paths {
			routed[p] = true
		}
	}

	return hrefAttr.ReplaceAllFunc(markup, func(attr []byte) []byte {
		value := string(attr[len(`href="`) : len(attr)-1])
		for _, prefix := range skippedPrefixes {
			if strings.HasPrefix(value, prefix) {
				return attr
			}
		}

		target, suffix := value, ""
		if cut := strings.IndexAny(value, "?#"); cut >= 0 {
			target, suffix = value[:cut], value[cut:]
		}
		if target == "" || routed[target] {
			return attr
		}

		key := strings.TrimSuffix(strings.Trim(target, "/"), domain.PageExt)
		entry, ok := routes.Lookup(key)
		if !ok {
			return attr
		}
		p, ok := entry.Path(locale)
		if !ok {
			p, ok = entry.Path(routes.DefaultLocale())
		}
		if !ok {
			return attr
		}
		return []byte(`href="` + p + suffix + `"`)
	})
}
