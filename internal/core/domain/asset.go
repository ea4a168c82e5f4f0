package domain

import (
	"path"
	"time"
)

// AssetClass groups source assets that share a processing strategy and URL base.
type AssetClass string

const (
	// ClassStyles are stylesheet entries, bundled with their imports.
	ClassStyles AssetClass = "styles"
	// ClassScripts are standalone script files.
	ClassScripts AssetClass = "scripts"
	// ClassImages are raster and vector images.
	ClassImages AssetClass = "images"
	// ClassPublic are files mirrored verbatim into the output root.
	ClassPublic AssetClass = "public"
)

// AssetClasses lists every class in processing order.
var AssetClasses = []AssetClass{ClassStyles, ClassScripts, ClassImages, ClassPublic}

// Outputs are the files produced for one source, relative to the output root in slash form.
type Outputs struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// Paths returns the non-empty output paths.
func (o Outputs) Paths() []string {
	paths := make([]string, 0, 2)
	if o.Primary != "" {
		paths = append(paths, o.Primary)
	}
	if o.Secondary != "" {
		paths = append(paths, o.Secondary)
	}
	return paths
}

// CacheEntry records the last successful processing of one source asset.
type CacheEntry struct {
	SourcePath       string      `json:"sourcePath"`
	Fingerprint      Fingerprint `json:"fingerprint"`
	Outputs          Outputs     `json:"outputs"`
	SourceModifiedAt time.Time   `json:"sourceModifiedAt,omitzero"`
	// Degraded marks an output copied unmodified after a failed transform.
	Degraded         bool        `json:"degraded,omitempty"`
}

// AssetSource is a discovered source asset awaiting processing.
type AssetSource struct {
	Class AssetClass
	// Path is the absolute source path.
	Path string
	// Rel is the slash-separated path used as the logical name below the class URL base.
	Rel string
}

// LogicalURL returns the reference an author writes in markup for this asset.
func (s AssetSource) LogicalURL() string {
	if s.Class == ClassPublic {
		return "/" + s.Rel
	}
	return path.Join(URLBase(s.Class), s.Rel)
}

// OutputRel returns the output path, relative to the output root, for a logical URL.
func OutputRel(logicalURL string) string {
	return path.Clean(logicalURL)[1:]
}
