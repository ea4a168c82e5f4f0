// Package routes groups page templates into base routes with per-locale variants.
package routes

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

// localeSuffix matches a trailing locale tag such as ".fr" or ".pt-BR".
var localeSuffix = regexp.MustCompile(`^(.+)\.([a-z]{2}(?:-[A-Za-z]{2})?)$`)

// Grouper discovers page templates and groups them by base route.
type Grouper struct {
	walker ports.FileWalker
}

// NewGrouper creates a Grouper.
func NewGrouper(walker ports.FileWalker) *Grouper {
	return &Grouper{walker: walker}
}

// Discover scans pagesDir once and groups every template found.
func (g *Grouper) Discover(pagesDir string) map[string]*domain.BaseRouteGroup {
	return GroupByBaseRoute(pagesDir, slices.Collect(g.walker.WalkExt(pagesDir, domain.TemplateExt)))
}

// GroupByBaseRoute groups template files below pagesDir by their base route id.
// Files outside pagesDir and files without the template extension are ignored.
func GroupByBaseRoute(pagesDir string, templates []string) map[string]*domain.BaseRouteGroup {
	groups := make(map[string]*domain.BaseRouteGroup)
	for _, tmpl := range templates {
		id, locale, ok := BaseRouteID(pagesDir, tmpl)
		if !ok {
			continue
		}
		group, exists := groups[id]
		if !exists {
			group = domain.NewBaseRouteGroup(id)
			groups[id] = group
		}
		if locale == "" {
			group.Default = tmpl
		} else {
			group.Variants[locale] = tmpl
		}
	}
	return groups
}

// BaseRouteID returns the base route id of a template and the locale of its suffix,
// which is empty for the default variant. The id is the slash-separated path below
// pagesDir without locale suffix and extension.
func BaseRouteID(pagesDir, template string) (id, locale string, ok bool) {
	if filepath.Ext(template) != domain.TemplateExt {
		return "", "", false
	}
	rel, err := filepath.Rel(pagesDir, template)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", false
	}

	name := filepath.ToSlash(strings.TrimSuffix(rel, domain.TemplateExt))
	if m := localeSuffix.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	return name, "", true
}

// Resolve returns the template of a group for a locale: the locale's variant, else the default.
func Resolve(group *domain.BaseRouteGroup, locale string) (string, error) {
	tmpl, ok := group.TemplateFor(locale)
	if !ok {
		return "", zerr.With(zerr.With(domain.ErrRouteUnavailable, "route", group.ID), "locale", locale)
	}
	return tmpl, nil
}

// IDs returns the group ids in sorted order.
func IDs(groups map[string]*domain.BaseRouteGroup) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
