package config

// Sitefile represents the structure of lokal.yaml (or lokal.toml).
type Sitefile struct {
	SrcDir        string    `yaml:"srcDir" toml:"srcDir"`
	PagesDir      string    `yaml:"pagesDir" toml:"pagesDir"`
	LayoutsDir    string    `yaml:"layoutsDir" toml:"layoutsDir"`
	PartialsDir   string    `yaml:"partialsDir" toml:"partialsDir"`
	DataDir       string    `yaml:"dataDir" toml:"dataDir"`
	PublicDir     string    `yaml:"publicDir" toml:"publicDir"`
	OutputDir     string    `yaml:"outputDir" toml:"outputDir"`
	DevOutputDir  string    `yaml:"devOutputDir" toml:"devOutputDir"`
	Routes        string    `yaml:"routes" toml:"routes"`
	Locales       []string  `yaml:"locales" toml:"locales"`
	DefaultLocale string    `yaml:"defaultLocale" toml:"defaultLocale"`
	SiteURL       string    `yaml:"siteUrl" toml:"siteUrl"`
	AllowIndexing *bool     `yaml:"allowIndexing" toml:"allowIndexing"`
	LinkMode      string    `yaml:"linkMode" toml:"linkMode"`
	Assets        AssetsDTO `yaml:"assets" toml:"assets"`
	Cache         CacheDTO  `yaml:"cache" toml:"cache"`
}

// AssetsDTO holds the asset source patterns.
type AssetsDTO struct {
	Styles  []string `yaml:"styles" toml:"styles"`
	Scripts []string `yaml:"scripts" toml:"scripts"`
	Images  []string `yaml:"images" toml:"images"`
}

// CacheDTO configures the asset cache.
type CacheDTO struct {
	Backend string `yaml:"backend" toml:"backend"`
}

// Defaults applied to fields left empty in the site file.
const (
	DefaultSrcDir       = "src"
	DefaultPublicDir    = "public"
	DefaultOutputDir    = "dist"
	DefaultDevOutputDir = ".tmp"
	DefaultRoutesFile   = "routes.yaml"
)

// Default asset patterns, relative to the project root.
var (
	DefaultStylePatterns  = []string{"src/styles/*.css"}
	DefaultScriptPatterns = []string{"src/assets/js/*.js"}
	DefaultImagePatterns  = []string{
		"src/assets/*.svg",
		"src/assets/*.png",
		"src/assets/*.jpg",
		"src/assets/*.jpeg",
		"src/assets/*.webp",
		"src/assets/*.gif",
	}
)

// Environment variables that override the site file.
const (
	EnvSiteURL       = "LOKAL_SITE_URL"
	EnvAllowIndexing = "LOKAL_ALLOW_INDEXING"
	EnvProduction    = "LOKAL_PRODUCTION"
)
