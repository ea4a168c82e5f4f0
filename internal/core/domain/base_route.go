package domain

import "slices"

// BaseRouteGroup collects the template variants of one locale-independent page.
type BaseRouteGroup struct {
	// ID is the template path below the pages root without locale suffix or extension.
	ID string
	// Default is the suffix-free template, if any.
	Default string
	// Variants maps a locale to its explicit template.
	Variants map[string]string
}

// NewBaseRouteGroup creates an empty group.
func NewBaseRouteGroup(id string) *BaseRouteGroup {
	return &BaseRouteGroup{ID: id, Variants: make(map[string]string)}
}

// TemplateFor resolves the template for a locale: the explicit variant, else the default.
func (g *BaseRouteGroup) TemplateFor(locale string) (string, bool) {
	if tmpl, ok := g.Variants[locale]; ok {
		return tmpl, true
	}
	if g.Default != "" {
		return g.Default, true
	}
	return "", false
}

// Templates returns every template file in the group, sorted.
func (g *BaseRouteGroup) Templates() []string {
	files := make([]string, 0, len(g.Variants)+1)
	if g.Default != "" {
		files = append(files, g.Default)
	}
	for _, tmpl := range g.Variants {
		files = append(files, tmpl)
	}
	slices.Sort(files)
	return files
}
