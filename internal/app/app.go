// Package app implements the application layer for lokal.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"go.trai.ch/lokal/internal/adapters/devserver"
	"go.trai.ch/lokal/internal/adapters/htmlscan"
	"go.trai.ch/lokal/internal/adapters/metrics"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/pipeline"
	"go.trai.ch/lokal/internal/engine/site"
	"go.trai.ch/lokal/internal/engine/watch"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	pipelines    *pipeline.Factory
	generator    *site.Generator
	sessions     *watch.Factory
	scanner      *htmlscan.Scanner
	hub          *devserver.Hub
	recorder     *metrics.PrometheusRecorder
	tracer       ports.Tracer
	logger       ports.Logger
	out          io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	pipelines *pipeline.Factory,
	generator *site.Generator,
	sessions *watch.Factory,
	scanner *htmlscan.Scanner,
	hub *devserver.Hub,
	recorder *metrics.PrometheusRecorder,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		pipelines:    pipelines,
		generator:    generator,
		sessions:     sessions,
		scanner:      scanner,
		hub:          hub,
		recorder:     recorder,
		tracer:       tracer,
		logger:       log,
		out:          os.Stdout,
	}
}

// WithOutput sets the writer the build summary is printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Dir is the directory the project root is discovered from.
	Dir        string
	Production bool
	// Clean removes the output root first, forcing a cold build.
	Clean bool
}

// BuildResult summarizes a full build.
type BuildResult struct {
	Site        *domain.Site
	Assets      pipeline.Report
	Pages       site.Report
	Diagnostics []domain.Diagnostic
	Duration    time.Duration
}

// Warnings returns the number of warning diagnostics.
func (r *BuildResult) Warnings() int {
	return r.count(domain.SeverityWarning)
}

// Errors returns the number of error diagnostics.
func (r *BuildResult) Errors() int {
	return r.count(domain.SeverityError)
}

func (r *BuildResult) count(severity domain.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Build runs one full build: the asset pass, then every page, then the
// asset reference check of the rendered pages.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	s, err := a.loadSite(opts.Dir, opts.Production)
	if err != nil {
		return nil, err
	}

	if opts.Clean {
		if err := a.remove(s.OutDir(), "output directory"); err != nil {
			return nil, err
		}
	}

	diags := domain.NewDiagnostics()
	p, err := a.pipelines.New(s, diags)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	result, err := a.fullBuild(ctx, s, p, diags)
	if err != nil {
		return nil, err
	}

	WriteSummary(a.out, result)
	return result, nil
}

func (a *App) fullBuild(
	ctx context.Context,
	s *domain.Site,
	p *pipeline.Pipeline,
	diags *domain.Diagnostics,
) (*BuildResult, error) {
	ctx, span := a.tracer.Start(ctx, "build.full")
	defer span.End()

	start := time.Now()
	assets, err := p.Run(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	pages, err := a.generator.Full(ctx, site.Pass{Site: s, Manifest: p.Manifest(), Diags: diags})
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	a.verifyAssets(s, pages.Pages, diags)

	d := time.Since(start)
	a.recorder.ObserveRebuild(domain.ScopeFull, d)
	return &BuildResult{
		Site:        s,
		Assets:      assets,
		Pages:       pages,
		Diagnostics: diags.All(),
		Duration:    d,
	}, nil
}

// verifyAssets records every asset reference of a rendered page that does not
// resolve to a file below the output root.
func (a *App) verifyAssets(s *domain.Site, pages []string, diags *domain.Diagnostics) {
	missing, err := a.scanner.MissingAssets(s.OutDir(), pages)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("asset reference check skipped: %v", err))
		return
	}
	for _, ref := range missing {
		err := zerr.With(zerr.With(domain.ErrUnresolvedAsset, "page", ref.Page), "url", ref.URL)
		a.logger.Warn(err.Error())
		diags.Warn(domain.DiagRender, ref.Page, err)
	}
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Dir        string
	Production bool
	// Addr is the listen address of the development server.
	Addr string
	// NoServe disables the development server.
	NoServe bool
	// CleanOnExit removes the development output root once the session ends.
	// It has no effect in production mode.
	CleanOnExit bool
}

// Watch builds the site, then rebuilds on every source change until ctx is canceled.
// Unless disabled, the output root is served with live reload.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.loadSite(opts.Dir, opts.Production)
	if err != nil {
		return err
	}

	diags := domain.NewDiagnostics()
	p, err := a.pipelines.New(s, diags)
	if err != nil {
		return zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	result, err := a.fullBuild(ctx, s, p, diags)
	if err != nil {
		return err
	}
	WriteSummary(a.out, result)

	session := a.sessions.New(s, &rebuilder{app: a, site: s, pipeline: p, diags: diags}, diags)

	g, ctx := errgroup.WithContext(ctx)
	if !opts.NoServe {
		ln, err := net.Listen("tcp", opts.Addr)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", opts.Addr)
		}
		a.logger.Info("serving " + s.OutDir() + " at http://" + ln.Addr().String())
		server := devserver.NewServer(s.OutDir(), a.hub, a.recorder.Handler())
		g.Go(func() error {
			return server.Serve(ctx, ln)
		})
	}
	g.Go(func() error {
		return session.Run(ctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if opts.CleanOnExit && !s.Production {
		err = errors.Join(err, a.remove(s.DevOutputDir, "development output"))
	}
	return err
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Dir string
}

// Clean removes both output roots, including the cache and manifest artifacts.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	s, err := a.configLoader.Load(opts.Dir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	errs = errors.Join(errs, a.remove(s.OutputDir, "production output"))
	errs = errors.Join(errs, a.remove(s.DevOutputDir, "development output"))
	return errs
}

func (a *App) remove(path, name string) error {
	a.logger.Info(fmt.Sprintf("removing %s...", name))
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path)
	}
	a.logger.Info(fmt.Sprintf("removed %s", name))
	return nil
}

func (a *App) loadSite(dir string, production bool) (*domain.Site, error) {
	s, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	s.Production = s.Production || production
	return s, nil
}

// rebuilder runs the watch session's rebuild steps against one site.
type rebuilder struct {
	app      *App
	site     *domain.Site
	pipeline *pipeline.Pipeline
	diags    *domain.Diagnostics
}

func (r *rebuilder) Assets(ctx context.Context, paths []string, all bool) error {
	if all {
		_, err := r.pipeline.Run(ctx)
		return err
	}
	for _, path := range paths {
		if _, err := r.pipeline.Reprocess(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *rebuilder) Pages(ctx context.Context, scope domain.RebuildScope) error {
	pass := site.Pass{Site: r.site, Manifest: r.pipeline.Manifest(), Diags: r.diags}
	if scope.Kind == domain.ScopeRoute {
		_, err := r.app.generator.Route(ctx, pass, scope.RouteID)
		return err
	}

	// Full scopes hold the scheduler gate exclusively, so the route table can be swapped.
	r.reloadRoutes()
	report, err := r.app.generator.Full(ctx, pass)
	if err != nil {
		return err
	}
	r.app.verifyAssets(r.site, report.Pages, r.diags)
	return nil
}

func (r *rebuilder) ClassOf(path string) (domain.AssetClass, bool) {
	return r.pipeline.ClassOf(path)
}

// reloadRoutes picks up edits to the route document. A broken document keeps
// the previous routes.
func (r *rebuilder) reloadRoutes() {
	fresh, err := r.app.configLoader.Load(r.site.Root)
	if err != nil {
		r.app.logger.Warn(strings.TrimSpace(err.Error()))
		r.diags.Warn(domain.DiagConfig, r.site.RoutesFile, err)
		return
	}
	r.site.Routes = fresh.Routes
}
