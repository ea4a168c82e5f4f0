// Package site renders pages for every base route and locale and writes the
// site-wide artifacts of a full regeneration.
package site

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/routes"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Pass is the input of one page generation.
type Pass struct {
	Site     *domain.Site
	Manifest *domain.Manifest
	Diags    *domain.Diagnostics
}

// Report summarizes a page generation.
type Report struct {
	// Written lists the page files whose content changed, relative to the output root.
	Written []string
	// Unchanged counts rendered pages identical to the file on disk.
	Unchanged int
	// Skipped counts route and locale pairs without a template or route entry.
	Skipped int
	// Failed counts pages that could not be rendered or written.
	Failed int
	// Pages lists every page file present after the pass, relative to the output root.
	Pages    []string
	Duration time.Duration
}

// Rendered returns the number of pages rendered successfully.
func (r Report) Rendered() int {
	return len(r.Written) + r.Unchanged
}

// Generator renders pages through the renderer and writes them below the output root.
type Generator struct {
	renderer ports.Renderer
	minifier ports.Minifier
	writer   ports.FileWriter
	grouper  *routes.Grouper
	recorder ports.Recorder
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(
	renderer ports.Renderer,
	minifier ports.Minifier,
	writer ports.FileWriter,
	grouper *routes.Grouper,
	recorder ports.Recorder,
	tracer ports.Tracer,
	logger ports.Logger,
) *Generator {
	return &Generator{
		renderer: renderer,
		minifier: minifier,
		writer:   writer,
		grouper:  grouper,
		recorder: recorder,
		tracer:   tracer,
		logger:   logger,
	}
}

// Full renders every base route for every locale, then writes the per-locale 404 pages
// and web app manifests, the root redirect and the sitemap.
func (g *Generator) Full(ctx context.Context, pass Pass) (Report, error) {
	ctx, span := g.tracer.Start(ctx, "pages.render")
	defer span.End()

	start := time.Now()
	groups := g.grouper.Discover(pass.Site.PagesDir)

	notFound := groups[NotFoundID]
	delete(groups, NotFoundID)

	c := newCollector()
	if err := g.render(ctx, pass, groups, routes.IDs(groups), c); err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	g.writeNotFound(ctx, pass, notFound, c)
	g.writeWebManifests(pass, c)
	if err := g.writeRootRedirect(pass, c); err != nil {
		g.recordFailure(pass, domain.DiagRender, "index.html", err)
	}
	if pass.Site.SiteURL != "" {
		if err := g.writeSitemap(pass, groups, c); err != nil {
			g.recordFailure(pass, domain.DiagRender, domain.SitemapFileName, err)
		}
	}

	report := c.report(time.Since(start))
	span.SetAttribute("lokal.pages.rendered", report.Rendered())
	return report, nil
}

// Route renders one base route for every configured locale. Other routes are not touched.
// The not-found route rewrites every locale's 404 page, falling back to the built-in page
// once its templates are gone.
func (g *Generator) Route(ctx context.Context, pass Pass, id string) (Report, error) {
	ctx, span := g.tracer.Start(ctx, "rebuild.route")
	defer span.End()
	span.SetAttribute("lokal.route", id)

	start := time.Now()
	groups := g.grouper.Discover(pass.Site.PagesDir)
	c := newCollector()
	if id == NotFoundID {
		g.writeNotFound(ctx, pass, groups[id], c)
		return c.report(time.Since(start)), nil
	}
	if _, ok := groups[id]; !ok {
		return Report{Duration: time.Since(start)}, nil
	}

	if err := g.render(ctx, pass, groups, []string{id}, c); err != nil {
		span.RecordError(err)
		return Report{}, err
	}
	return c.report(time.Since(start)), nil
}

func (g *Generator) render(
	ctx context.Context,
	pass Pass,
	groups map[string]*domain.BaseRouteGroup,
	ids []string,
	c *collector,
) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for _, id := range ids {
		for _, locale := range pass.Site.Locales {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				g.renderOne(ctx, pass, groups[id], locale, c)
				return nil
			})
		}
	}

	return eg.Wait()
}

// renderOne renders and writes one page. Failures are recorded and never returned.
func (g *Generator) renderOne(ctx context.Context, pass Pass, group *domain.BaseRouteGroup, locale string, c *collector) {
	site := pass.Site

	tmpl, err := routes.Resolve(group, locale)
	if err != nil {
		g.skip(pass, group.ID, err, c)
		return
	}

	route, ok := site.Routes.Lookup(group.ID)
	var routePath string
	if ok {
		routePath, ok = route.Path(locale)
	}
	if !ok {
		err := zerr.With(zerr.With(domain.ErrRouteNotConfigured, "route", group.ID), "locale", locale)
		g.skip(pass, tmpl, err, c)
		return
	}

	output := domain.PageOutputPath(routePath, site.Locales)
	markup, err := g.renderer.Render(ctx, domain.PageRequest{
		Site:        site,
		BaseRouteID: group.ID,
		Locale:      locale,
		Template:    tmpl,
		Route:       route,
		Path:        routePath,
		OutputPath:  output,
		Manifest:    pass.Manifest,
	})
	if err != nil {
		g.fail(pass, tmpl, err, c)
		return
	}

	if err := g.write(pass, output, markup, c); err != nil {
		g.fail(pass, output, err, c)
		return
	}
	g.recorder.ObservePage(true)
}

// write minifies production pages and writes them if their content changed.
func (g *Generator) write(pass Pass, output string, markup []byte, c *collector) error {
	if pass.Site.Production {
		minified, err := g.minifier.HTML(markup)
		if err != nil {
			g.logger.Warn(fmt.Sprintf("%s: %v, written unminified", output, err))
			pass.Diags.Warn(domain.DiagRender, output, err)
		} else {
			markup = minified
		}
	}

	changed, err := g.writer.WriteFile(sitePath(pass, output), markup)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPageWriteFailed.Error()), "output", output)
	}
	c.written(output, changed)
	return nil
}

func (g *Generator) skip(pass Pass, path string, err error, c *collector) {
	g.logger.Warn(err.Error())
	pass.Diags.Warn(domain.DiagRender, path, err)
	c.skipped()
}

func (g *Generator) fail(pass Pass, path string, err error, c *collector) {
	g.recordFailure(pass, domain.DiagRender, path, err)
	g.recorder.ObservePage(false)
	c.failed()
}

func (g *Generator) recordFailure(pass Pass, category domain.DiagnosticCategory, path string, err error) {
	g.logger.Error(err)
	pass.Diags.Fail(category, path, err)
}

// collector gathers page outcomes from concurrent renders.
type collector struct {
	mu        sync.Mutex
	changed   []string
	unchanged int
	skips     int
	failures  int
	outputs   map[string]bool
}

func newCollector() *collector {
	return &collector{outputs: make(map[string]bool)}
}

func (c *collector) written(output string, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs[output] = true
	if changed {
		c.changed = append(c.changed, output)
		return
	}
	c.unchanged++
}

func (c *collector) skipped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skips++
}

func (c *collector) failed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
}

func (c *collector) has(output string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outputs[output]
}

func (c *collector) report(d time.Duration) Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	written := slices.Clone(c.changed)
	slices.Sort(written)
	pages := make([]string, 0, len(c.outputs))
	for output := range c.outputs {
		if strings.HasSuffix(output, domain.PageExt) {
			pages = append(pages, output)
		}
	}
	slices.Sort(pages)
	return Report{
		Written:   written,
		Pages:     pages,
		Unchanged: c.unchanged,
		Skipped:   c.skips,
		Failed:    c.failures,
		Duration:  d,
	}
}
