// Package domain contains the core models of the asset pipeline and the page generator.
package domain

import (
	"path/filepath"
	"slices"
)

// LinkMode controls the post-render link rewrite pass.
type LinkMode string

const (
	// LinkModeOff leaves rendered links untouched.
	LinkModeOff LinkMode = "off"
	// LinkModeSafetyNet rewrites links to another locale's route onto the current locale.
	LinkModeSafetyNet LinkMode = "safety-net"
)

// CacheBackend selects the cache store implementation.
type CacheBackend string

const (
	// CacheBackendJSON stores the cache as a JSON document.
	CacheBackendJSON CacheBackend = "json"
	// CacheBackendSQLite stores the cache in a SQLite database.
	CacheBackendSQLite CacheBackend = "sqlite"
)

// AssetPatterns are the glob patterns, relative to the project root, that select source assets.
type AssetPatterns struct {
	Styles  []string
	Scripts []string
	Images  []string
}

// For returns the patterns of an asset class.
func (p AssetPatterns) For(class AssetClass) []string {
	switch class {
	case ClassStyles:
		return p.Styles
	case ClassScripts:
		return p.Scripts
	case ClassImages:
		return p.Images
	default:
		return nil
	}
}

// Site is the validated project configuration. All directories are absolute.
type Site struct {
	Root          string
	SrcDir        string
	PagesDir      string
	LayoutsDir    string
	PartialsDir   string
	DataDir       string
	PublicDir     string
	OutputDir     string
	DevOutputDir  string
	RoutesFile    string
	Locales       []string
	DefaultLocale string
	SiteURL       string
	AllowIndexing bool
	Production    bool
	Assets        AssetPatterns
	CacheBackend  CacheBackend
	LinkMode      LinkMode
	Routes        *RouteTable
}

// OutDir returns the output root for the current mode.
func (s *Site) OutDir() string {
	if s.Production {
		return s.OutputDir
	}
	return s.DevOutputDir
}

// HasLocale reports whether a locale is configured.
func (s *Site) HasLocale(locale string) bool {
	return slices.Contains(s.Locales, locale)
}

// AssetSourceDirs returns the directories whose content is classified as assets.
func (s *Site) AssetSourceDirs() []string {
	return []string{filepath.Join(s.SrcDir, "assets"), filepath.Join(s.SrcDir, "styles"), s.PublicDir}
}
