package site

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

// WebManifestFileName is the per-locale web app manifest written next to each locale's pages.
const WebManifestFileName = "site.webmanifest"

// manifestStrings map manifest members to the translation keys tried in order.
var manifestStrings = []struct {
	member string
	keys   []string
}{
	{"name", []string{"site.name", "meta.title"}},
	{"short_name", []string{"site.short_name", "meta.short_title"}},
	{"description", []string{"site.description", "meta.description"}},
}

// writeWebManifests writes <locale dir>/site.webmanifest for every locale. Members of
// public/site.webmanifest are kept; names come from the locale's strings when translated,
// and start_url, scope, lang and dir follow the locale.
func (g *Generator) writeWebManifests(pass Pass, c *collector) {
	base, err := baseWebManifest(pass.Site)
	if err != nil {
		g.logger.Warn(err.Error())
		pass.Diags.Warn(domain.DiagRender, WebManifestFileName, err)
		base = map[string]any{}
	}

	for _, locale := range pass.Site.Locales {
		output := path.Join(localeDir(pass.Site, locale), WebManifestFileName)
		if err := g.writeWebManifest(pass, base, locale, output, c); err != nil {
			g.recordFailure(pass, domain.DiagRender, output, err)
		}
	}
}

func (g *Generator) writeWebManifest(pass Pass, base map[string]any, locale, output string, c *collector) error {
	site := pass.Site
	manifest := make(map[string]any, len(base)+7)
	for k, v := range base {
		manifest[k] = v
	}

	for _, s := range manifestStrings {
		for _, key := range s.keys {
			v, ok, err := g.renderer.Lookup(site, locale, key)
			if err != nil {
				return err
			}
			if ok && v != "" {
				manifest[s.member] = v
				break
			}
		}
	}

	home := homePath(site, locale)
	manifest["start_url"] = home
	manifest["scope"] = home
	manifest["lang"] = domain.Hreflang(locale)
	manifest["dir"] = "ltr"
	if domain.IsRTL(locale) {
		manifest["dir"] = "rtl"
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "output", output)
	}
	data = append(data, '\n')

	changed, err := g.writer.WriteFile(sitePath(pass, output), data)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPageWriteFailed.Error()), "output", output)
	}
	c.written(output, changed)
	return nil
}

// baseWebManifest reads the project's public/site.webmanifest. A missing file yields no members.
func baseWebManifest(site *domain.Site) (map[string]any, error) {
	manifest := map[string]any{}
	if site.PublicDir == "" {
		return manifest, nil
	}
	file := filepath.Join(site.PublicDir, WebManifestFileName)
	data, err := os.ReadFile(file) //nolint:gosec // path is below the configured public directory
	if errors.Is(err, fs.ErrNotExist) {
		return manifest, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", file)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", file)
	}
	return manifest, nil
}
