package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the YAML project configuration file.
	ConfigFileName = "lokal.yaml"

	// ConfigFileNameTOML is the name of the TOML project configuration file.
	ConfigFileNameTOML = "lokal.toml"

	// EnvFileName is the optional dotenv file loaded from the project root.
	EnvFileName = ".env"

	// CacheFileName is the name of the JSON asset cache inside the output root.
	CacheFileName = ".asset-cache.json"

	// CacheDBFileName is the name of the SQLite asset cache inside the output root.
	CacheDBFileName = ".asset-cache.db"

	// LockFileName is the name of the lock file guarding cache and manifest flushes.
	LockFileName = ".lokal.lock"

	// ManifestFileName is the name of the manifest artifact inside the output root.
	ManifestFileName = "asset-manifest.json"

	// SitemapFileName is the name of the generated sitemap.
	SitemapFileName = "sitemap.xml"

	// TemplateExt is the extension of page, layout and partial templates.
	TemplateExt = ".tmpl"

	// PageExt is the extension of rendered pages.
	PageExt = ".html"

	// StylesURLBase is the public URL prefix for stylesheets.
	StylesURLBase = "/assets/styles"

	// ScriptsURLBase is the public URL prefix for scripts.
	ScriptsURLBase = "/assets/js"

	// ImagesURLBase is the public URL prefix for images.
	ImagesURLBase = "/assets/images"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// URLBase returns the public URL prefix for an asset class.
func URLBase(class AssetClass) string {
	switch class {
	case ClassStyles:
		return StylesURLBase
	case ClassScripts:
		return ScriptsURLBase
	case ClassImages:
		return ImagesURLBase
	default:
		return "/"
	}
}

// CachePath returns the location of the JSON asset cache for an output root.
func CachePath(outputDir string) string {
	return filepath.Join(outputDir, CacheFileName)
}

// CacheDBPath returns the location of the SQLite asset cache for an output root.
func CacheDBPath(outputDir string) string {
	return filepath.Join(outputDir, CacheDBFileName)
}

// ManifestPath returns the location of the manifest artifact for an output root.
func ManifestPath(outputDir string) string {
	return filepath.Join(outputDir, ManifestFileName)
}

// LockPath returns the location of the flush lock for an output root.
func LockPath(outputDir string) string {
	return filepath.Join(outputDir, LockFileName)
}
