// Package config provides the site and route configuration loader for lokal.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML or TOML site file.
type Loader struct {
	Logger ports.Logger
	// Getenv reads the process environment. Tests replace it.
	Getenv func(string) string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Getenv: os.Getenv}
}

// DiscoverRoot walks up from cwd to the first directory holding a site file.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := findSitefile(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads the site file, applies defaults and environment overrides, validates the
// result and loads the route table.
func (l *Loader) Load(cwd string) (*domain.Site, error) {
	configPath, err := findSitefile(cwd)
	if err != nil {
		return nil, err
	}

	var sitefile Sitefile
	if err := decodeFile(configPath, &sitefile); err != nil {
		return nil, err
	}

	root := filepath.Dir(configPath)
	env, err := l.environment(root)
	if err != nil {
		return nil, err
	}

	site, err := buildSite(root, &sitefile, env)
	if err != nil {
		return nil, err
	}

	if err := validateSite(site); err != nil {
		return nil, err
	}

	routes, err := l.loadRoutes(site)
	if err != nil {
		return nil, err
	}
	site.Routes = routes

	return site, nil
}

func findSitefile(cwd string) (string, error) {
	currentDir := cwd
	for {
		for _, name := range []string{domain.ConfigFileName, domain.ConfigFileNameTOML} {
			candidate := filepath.Join(currentDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// decodeFile unmarshals a YAML, TOML or JSON document selected by the file extension.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the project root
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, out)
	case ".json":
		err = json.Unmarshal(data, out)
	default:
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return nil
}

// environment merges the project .env file with the process environment.
// Variables set in the process take precedence.
func (l *Loader) environment(root string) (map[string]string, error) {
	env := make(map[string]string)
	envPath := filepath.Join(root, domain.EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		values, err := godotenv.Read(envPath)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", envPath)
		}
		maps.Copy(env, values)
	}

	for _, key := range []string{EnvSiteURL, EnvAllowIndexing, EnvProduction} {
		if v := l.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env, nil
}

func buildSite(root string, sf *Sitefile, env map[string]string) (*domain.Site, error) {
	srcDir := resolveDir(root, sf.SrcDir, DefaultSrcDir)

	site := &domain.Site{
		Root:          root,
		SrcDir:        srcDir,
		PagesDir:      resolveDir(root, sf.PagesDir, filepath.Join(srcDir, "pages")),
		LayoutsDir:    resolveDir(root, sf.LayoutsDir, filepath.Join(srcDir, "layouts")),
		PartialsDir:   resolveDir(root, sf.PartialsDir, filepath.Join(srcDir, "partials")),
		DataDir:       resolveDir(root, sf.DataDir, filepath.Join(srcDir, "data")),
		PublicDir:     resolveDir(root, sf.PublicDir, DefaultPublicDir),
		OutputDir:     resolveDir(root, sf.OutputDir, DefaultOutputDir),
		DevOutputDir:  resolveDir(root, sf.DevOutputDir, DefaultDevOutputDir),
		RoutesFile:    resolveDir(root, sf.Routes, DefaultRoutesFile),
		Locales:       slices.Clone(sf.Locales),
		DefaultLocale: sf.DefaultLocale,
		SiteURL:       strings.TrimSuffix(sf.SiteURL, "/"),
		AllowIndexing: sf.AllowIndexing == nil || *sf.AllowIndexing,
		Assets: domain.AssetPatterns{
			Styles:  withDefault(sf.Assets.Styles, DefaultStylePatterns),
			Scripts: withDefault(sf.Assets.Scripts, DefaultScriptPatterns),
			Images:  withDefault(sf.Assets.Images, DefaultImagePatterns),
		},
		CacheBackend: domain.CacheBackend(sf.Cache.Backend),
		LinkMode:     domain.LinkMode(sf.LinkMode),
	}

	if site.DefaultLocale == "" && len(site.Locales) > 0 {
		site.DefaultLocale = site.Locales[0]
	}
	if site.CacheBackend == "" {
		site.CacheBackend = domain.CacheBackendJSON
	}
	if site.LinkMode == "" {
		site.LinkMode = domain.LinkModeSafetyNet
	}

	if v, ok := env[EnvSiteURL]; ok {
		site.SiteURL = strings.TrimSuffix(v, "/")
	}
	var err error
	if site.AllowIndexing, err = envBool(env, EnvAllowIndexing, site.AllowIndexing); err != nil {
		return nil, err
	}
	if site.Production, err = envBool(env, EnvProduction, false); err != nil {
		return nil, err
	}

	return site, nil
}

func envBool(env map[string]string, key string, fallback bool) (bool, error) {
	raw, ok := env[key]
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "variable", key)
	}
	return v, nil
}

// resolveDir makes a configured path absolute against the project root.
// An empty value selects the fallback, which may itself be absolute.
func resolveDir(root, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

func withDefault(patterns, fallback []string) []string {
	if len(patterns) == 0 {
		return slices.Clone(fallback)
	}
	return slices.Clone(patterns)
}

func validateSite(site *domain.Site) error {
	for _, dir := range []string{site.SrcDir, site.PagesDir, site.DataDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return zerr.With(domain.ErrMissingSourceDir, "dir", dir)
		}
	}

	if len(site.Locales) == 0 {
		return domain.ErrNoLocales
	}

	seen := make(map[string]bool, len(site.Locales))
	for _, locale := range site.Locales {
		if _, err := language.Parse(locale); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidLocale.Error()), "locale", locale)
		}
		if seen[locale] {
			return zerr.With(domain.ErrDuplicateLocale, "locale", locale)
		}
		seen[locale] = true
	}

	if !seen[site.DefaultLocale] {
		return zerr.With(domain.ErrDefaultLocaleMissing, "default_locale", site.DefaultLocale)
	}

	switch site.CacheBackend {
	case domain.CacheBackendJSON, domain.CacheBackendSQLite:
	default:
		return zerr.With(domain.ErrUnknownCacheBackend, "backend", string(site.CacheBackend))
	}

	switch site.LinkMode {
	case domain.LinkModeOff, domain.LinkModeSafetyNet:
	default:
		return zerr.With(domain.ErrUnknownLinkMode, "mode", string(site.LinkMode))
	}

	return nil
}

// loadRoutes reads the route document, a map from locale to its ordered route list.
// A missing document yields an empty table.
func (l *Loader) loadRoutes(site *domain.Site) (*domain.RouteTable, error) {
	table := domain.NewRouteTable(site.DefaultLocale, site.Locales)

	if _, err := os.Stat(site.RoutesFile); os.IsNotExist(err) {
		l.Logger.Warn(fmt.Sprintf("route configuration %s not found, no pages will be generated", site.RoutesFile))
		return table, nil
	}

	var doc map[string][]domain.RouteSpec
	if err := decodeFile(site.RoutesFile, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRoutesParseFailed.Error())
	}

	for _, locale := range slices.Sorted(maps.Keys(doc)) {
		if !site.HasLocale(locale) {
			l.Logger.Warn(fmt.Sprintf("route configuration lists unknown locale %q, skipping", locale))
			continue
		}
		for i, spec := range doc[locale] {
			if spec.Key == "" || spec.Path == "" {
				return nil, zerr.With(zerr.With(domain.ErrInvalidRoute, "locale", locale), "index", i)
			}
			table.Add(locale, spec)
		}
	}

	return table, nil
}
