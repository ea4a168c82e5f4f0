package domain

// PageRequest describes one (base route, locale) page to render.
type PageRequest struct {
	Site        *Site
	BaseRouteID string
	Locale      string
	// Template is the absolute path of the resolved template variant.
	Template string
	Route    *RouteEntry
	// Path is the route path for the locale, as linked from markup.
	Path string
	// OutputPath is the page file relative to the output root.
	OutputPath string
	Manifest   *Manifest
}
