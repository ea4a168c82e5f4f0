package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// RouteSpec is one entry of a locale's ordered route list in the route document.
type RouteSpec struct {
	Key        string   `yaml:"key" json:"key"`
	Path       string   `yaml:"path" json:"path"`
	Title      string   `yaml:"title" json:"title"`
	ThemeColor string   `yaml:"themeColor,omitempty" json:"themeColor,omitempty"`
	Anchors    []string `yaml:"anchors,omitempty" json:"anchors,omitempty"`
	Hidden     bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// RouteEntry is the locale-independent identity of a route with its per-locale properties.
type RouteEntry struct {
	Key         string
	Paths       map[string]string
	Titles      map[string]string
	ThemeColors map[string]string
	Anchors     map[string][]string
	Hidden      map[string]bool
}

func newRouteEntry(key string) *RouteEntry {
	return &RouteEntry{
		Key:         key,
		Paths:       make(map[string]string),
		Titles:      make(map[string]string),
		ThemeColors: make(map[string]string),
		Anchors:     make(map[string][]string),
		Hidden:      make(map[string]bool),
	}
}

// NavItem is a route as presented in a locale's navigation.
type NavItem struct {
	Key        string
	Path       string
	Title      string
	ThemeColor string
	Anchors    []string
}

// Alternate is one locale's version of a route, as announced by hreflang links.
type Alternate struct {
	Locale   string
	Hreflang string
	Path     string
}

// RouteTable holds every route for a build pass. It is never mutated after loading.
type RouteTable struct {
	defaultLocale string
	locales       []string
	routes        map[string]*RouteEntry
	order         map[string][]string
}

// NewRouteTable creates an empty route table for the given locales.
func NewRouteTable(defaultLocale string, locales []string) *RouteTable {
	return &RouteTable{
		defaultLocale: defaultLocale,
		locales:       slices.Clone(locales),
		routes:        make(map[string]*RouteEntry),
		order:         make(map[string][]string),
	}
}

// Add records a route spec for a locale, preserving the document order.
func (t *RouteTable) Add(locale string, spec RouteSpec) {
	entry, ok := t.routes[spec.Key]
	if !ok {
		entry = newRouteEntry(spec.Key)
		t.routes[spec.Key] = entry
	}
	entry.Paths[locale] = spec.Path
	if spec.Title != "" {
		entry.Titles[locale] = spec.Title
	}
	if spec.ThemeColor != "" {
		entry.ThemeColors[locale] = spec.ThemeColor
	}
	if len(spec.Anchors) > 0 {
		entry.Anchors[locale] = slices.Clone(spec.Anchors)
	}
	entry.Hidden[locale] = spec.Hidden
	if !slices.Contains(t.order[locale], spec.Key) {
		t.order[locale] = append(t.order[locale], spec.Key)
	}
}

// DefaultLocale returns the fallback locale.
func (t *RouteTable) DefaultLocale() string {
	return t.defaultLocale
}

// Locales returns the configured locales.
func (t *RouteTable) Locales() []string {
	return slices.Clone(t.locales)
}

// Lookup returns the route with the given key.
func (t *RouteTable) Lookup(key string) (*RouteEntry, bool) {
	entry, ok := t.routes[key]
	return entry, ok
}

// Keys returns all route keys in sorted order.
func (t *RouteTable) Keys() []string {
	keys := make([]string, 0, len(t.routes))
	for key := range t.routes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Nav returns the visible routes for a locale in document order.
func (t *RouteTable) Nav(locale string) []NavItem {
	items := make([]NavItem, 0, len(t.order[locale]))
	for _, key := range t.order[locale] {
		entry := t.routes[key]
		if entry.IsHidden(locale) {
			continue
		}
		p, _ := entry.Path(locale)
		items = append(items, NavItem{
			Key:        key,
			Path:       p,
			Title:      entry.Title(locale, t.defaultLocale),
			ThemeColor: entry.ThemeColor(locale, t.defaultLocale),
			Anchors:    entry.Anchors[locale],
		})
	}
	return items
}

// Path returns the route path for a locale. Paths never fall back across locales.
func (e *RouteEntry) Path(locale string) (string, bool) {
	p, ok := e.Paths[locale]
	return p, ok
}

// Title returns the title for a locale, falling back to the default locale.
func (e *RouteEntry) Title(locale, defaultLocale string) string {
	return pick(e.Titles, locale, defaultLocale)
}

// ThemeColor returns the theme color for a locale, falling back to the default locale.
func (e *RouteEntry) ThemeColor(locale, defaultLocale string) string {
	return pick(e.ThemeColors, locale, defaultLocale)
}

// IsHidden reports whether the route is hidden from navigation and sitemaps for a locale.
func (e *RouteEntry) IsHidden(locale string) bool {
	return e.Hidden[locale]
}

// Alternates returns the route's path in every locale that has one, in locale order.
func (e *RouteEntry) Alternates(locales []string) []Alternate {
	alts := make([]Alternate, 0, len(locales))
	for _, locale := range locales {
		p, ok := e.Paths[locale]
		if !ok {
			continue
		}
		alts = append(alts, Alternate{Locale: locale, Hreflang: Hreflang(locale), Path: p})
	}
	return alts
}

// Hreflang returns the canonical BCP 47 form of a locale, e.g. "pt-BR" for "pt-br".
func Hreflang(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// rtlBases are the languages written right to left.
var rtlBases = []string{"ar", "he", "fa", "ur"}

// IsRTL reports whether a locale's language is written right to left.
func IsRTL(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return slices.Contains(rtlBases, base.String())
}

func pick(values map[string]string, locale, defaultLocale string) string {
	if v, ok := values[locale]; ok {
		return v
	}
	return values[defaultLocale]
}

// PageOutputPath maps a route path to a page file relative to the output root.
// "/" becomes "index.html", "/fr/" becomes "fr/index.html" and "/fr/about/" becomes "fr/about.html".
func PageOutputPath(routePath string, locales []string) string {
	trimmed := strings.Trim(routePath, "/")
	switch {
	case trimmed == "":
		trimmed = "index"
	case slices.Contains(locales, trimmed):
		trimmed += "/index"
	}
	if strings.HasSuffix(trimmed, PageExt) {
		return trimmed
	}
	return trimmed + PageExt
}
