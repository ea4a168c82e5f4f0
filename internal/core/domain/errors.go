package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigNotFound is returned when no lokal.yaml or lokal.toml is found.
	ErrConfigNotFound = zerr.New("could not find lokal.yaml or lokal.toml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrMissingSourceDir is returned when a required source directory does not exist.
	ErrMissingSourceDir = zerr.New("required source directory is missing")

	// ErrNoLocales is returned when the locale list is empty.
	ErrNoLocales = zerr.New("at least one locale must be configured")

	// ErrInvalidLocale is returned when a locale is not a valid BCP 47 tag.
	ErrInvalidLocale = zerr.New("invalid locale tag")

	// ErrDefaultLocaleMissing is returned when the default locale is not part of the locale list.
	ErrDefaultLocaleMissing = zerr.New("default locale is not in the locale list")

	// ErrDuplicateLocale is returned when a locale is declared more than once.
	ErrDuplicateLocale = zerr.New("duplicate locale")

	// ErrRoutesReadFailed is returned when the route document cannot be read.
	ErrRoutesReadFailed = zerr.New("failed to read route configuration")

	// ErrRoutesParseFailed is returned when the route document cannot be parsed.
	ErrRoutesParseFailed = zerr.New("failed to parse route configuration")

	// ErrInvalidRoute is returned when a route entry has no key or no path.
	ErrInvalidRoute = zerr.New("invalid route entry")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend, expected 'json' or 'sqlite'")

	// ErrUnknownLinkMode is returned when the configured link rewrite mode is not supported.
	ErrUnknownLinkMode = zerr.New("unknown link rewrite mode, expected 'off' or 'safety-net'")

	// ErrStoreReadFailed is returned when the cache artifact cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read asset cache")

	// ErrStoreCorrupt is returned when the cache artifact cannot be decoded.
	ErrStoreCorrupt = zerr.New("asset cache is corrupt")

	// ErrStoreWriteFailed is returned when the cache artifact cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write asset cache")

	// ErrStoreLocked is returned when another process holds the cache lock.
	ErrStoreLocked = zerr.New("asset cache is locked by another process")

	// ErrManifestWriteFailed is returned when the manifest artifact cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write asset manifest")

	// ErrAssetReadFailed is returned when an asset source cannot be read.
	ErrAssetReadFailed = zerr.New("failed to read asset source")

	// ErrAssetTransformFailed is returned when an asset cannot be transformed.
	ErrAssetTransformFailed = zerr.New("failed to transform asset")

	// ErrAssetWriteFailed is returned when an asset output cannot be written.
	ErrAssetWriteFailed = zerr.New("failed to write asset output")

	// ErrImportNotFound is returned when a stylesheet import cannot be resolved.
	ErrImportNotFound = zerr.New("stylesheet import not found")

	// ErrDuplicateAsset is returned when two sources resolve to the same logical asset name.
	ErrDuplicateAsset = zerr.New("asset source resolves to a logical name already in use")

	// ErrUnsupportedFormat is returned when a codec does not handle a source format.
	ErrUnsupportedFormat = zerr.New("unsupported asset format")

	// ErrRenderFailed is returned when a page cannot be rendered.
	ErrRenderFailed = zerr.New("failed to render page")

	// ErrPageWriteFailed is returned when a rendered page cannot be written.
	ErrPageWriteFailed = zerr.New("failed to write page")

	// ErrUnresolvedAsset is returned when a rendered page references an asset that does not exist.
	ErrUnresolvedAsset = zerr.New("page references a missing asset")

	// ErrRouteUnavailable is returned when a base route has no template for a locale.
	ErrRouteUnavailable = zerr.New("base route has no template for locale")

	// ErrRouteNotConfigured is returned when a base route has no route entry for a locale.
	ErrRouteNotConfigured = zerr.New("base route has no route entry for locale")

	// ErrWatchFailed is returned when the file watcher reports a transport failure.
	ErrWatchFailed = zerr.New("file watcher failed")

	// ErrWatchClosed is returned when the file watcher stops delivering events.
	ErrWatchClosed = zerr.New("file watcher stopped unexpectedly")

	// ErrBuildFailed is returned when a build pass cannot complete.
	ErrBuildFailed = zerr.New("build failed")
)
