// Package pipeline implements the incremental asset pipeline: discovery, staleness
// checks, variant generation, pruning and the manifest.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators shared by every pipeline.
type Deps struct {
	Hasher   ports.Hasher
	Verifier ports.OutputVerifier
	Minifier ports.Minifier
	Codec    ports.Codec
	Resolver ports.PatternResolver
	Walker   ports.FileWalker
	Writer   ports.FileWriter
	Recorder ports.Recorder
	Tracer   ports.Tracer
	Logger   ports.Logger
}

// ClassStats counts the outcomes of one asset class in a pass.
type ClassStats struct {
	Processed int
	Cached    int
	Degraded  int
	Failed    int
	Removed   int
	Bytes     int64
}

// Report summarizes an asset pass.
type Report struct {
	Classes  map[domain.AssetClass]ClassStats
	Duration time.Duration
}

// Total sums the stats of every class.
func (r Report) Total() ClassStats {
	var total ClassStats
	for _, s := range r.Classes {
		total.Processed += s.Processed
		total.Cached += s.Cached
		total.Degraded += s.Degraded
		total.Failed += s.Failed
		total.Removed += s.Removed
		total.Bytes += s.Bytes
	}
	return total
}

// Pipeline processes the assets of one site into its output root.
// Passes are serialized; concurrent callers wait for each other.
type Pipeline struct {
	deps      Deps
	site      *domain.Site
	root      string
	store     ports.CacheStore
	lock      ports.FlushLocker
	diags     *domain.Diagnostics
	staleness *Staleness
	variants  *Variants
	manifest  *ManifestBuilder

	mu sync.Mutex
	// dependents maps an imported stylesheet to the entries that inline it.
	dependents map[string][]string

	// passMu guards stats and dependents while a pass runs its workers.
	passMu sync.Mutex
	stats  map[domain.AssetClass]ClassStats
}

// New creates a pipeline for a site. Call Init before the first pass.
func New(site *domain.Site, store ports.CacheStore, lock ports.FlushLocker, diags *domain.Diagnostics, deps Deps) *Pipeline {
	root := site.OutDir()
	return &Pipeline{
		deps:       deps,
		site:       site,
		root:       root,
		store:      store,
		lock:       lock,
		diags:      diags,
		staleness:  NewStaleness(store, deps.Verifier, root),
		variants:   NewVariants(deps.Minifier, deps.Codec, deps.Writer, root),
		manifest:   NewManifestBuilder(domain.ManifestPath(root), deps.Writer),
		dependents: make(map[string][]string),
	}
}

// Init loads the cache and the manifest. Unreadable state is a cold start, recorded
// as a persistence warning.
func (p *Pipeline) Init() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Load(); err != nil {
		p.persistenceFailure("cache", domain.CachePath(p.root), err)
	}
	if err := p.manifest.Load(); err != nil {
		p.persistenceFailure("manifest", domain.ManifestPath(p.root), err)
	}
}

// Manifest returns the manifest published by the last pass.
func (p *Pipeline) Manifest() *domain.Manifest {
	return p.manifest.Current()
}

// Run performs a full asset pass: every class is discovered and processed, outputs of
// vanished sources are removed, and the manifest is rebuilt from scratch.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := p.deps.Tracer.Start(ctx, "assets.pass")
	defer span.End()

	start := time.Now()
	p.resetStats()
	p.manifest.Begin(true)
	p.dependents = make(map[string][]string)

	for _, class := range domain.AssetClasses {
		sources, err := p.discover(class)
		if err != nil {
			span.RecordError(err)
			return Report{}, err
		}
		if err := p.processAll(ctx, sources); err != nil {
			span.RecordError(err)
			return Report{}, err
		}
		p.removeOrphans(class, sources)
	}

	p.flush(ctx)
	report := p.report(time.Since(start))
	span.SetAttribute("lokal.assets.processed", report.Total().Processed)
	return report, nil
}

// Reprocess runs a pass for the asset at path only. A stylesheet that is not an entry
// reprocesses the entries that import it; an unknown one reprocesses every stylesheet.
func (p *Pipeline) Reprocess(ctx context.Context, path string) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := p.deps.Tracer.Start(ctx, "assets.reprocess")
	defer span.End()
	span.SetAttribute("lokal.path", path)

	start := time.Now()
	p.resetStats()
	p.manifest.Begin(false)

	sources, err := p.affected(path)
	if err != nil {
		span.RecordError(err)
		return Report{}, err
	}
	if err := p.processAll(ctx, sources); err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	p.flush(ctx)
	return p.report(time.Since(start)), nil
}

// ClassOf reports the asset class a path belongs to.
func (p *Pipeline) ClassOf(path string) (domain.AssetClass, bool) {
	path = filepath.Clean(path)
	for _, class := range []domain.AssetClass{domain.ClassStyles, domain.ClassScripts, domain.ClassImages} {
		if p.deps.Resolver.Matches(p.site.Assets.For(class), p.site.Root, path) {
			return class, true
		}
	}
	if filepath.Ext(path) == ".css" && isBelow(filepath.Join(p.site.SrcDir, "styles"), path) {
		return domain.ClassStyles, true
	}
	if isBelow(p.site.PublicDir, path) {
		return domain.ClassPublic, true
	}
	return "", false
}

func (p *Pipeline) affected(path string) ([]domain.AssetSource, error) {
	path = filepath.Clean(path)
	class, ok := p.ClassOf(path)
	if !ok {
		return nil, nil
	}

	switch class {
	case domain.ClassStyles:
		entries, err := p.discover(domain.ClassStyles)
		if err != nil {
			return nil, err
		}
		isEntry := slices.ContainsFunc(entries, func(s domain.AssetSource) bool { return s.Path == path })
		dependents, known := p.dependents[path]
		if !isEntry && !known {
			return entries, nil
		}
		return slices.DeleteFunc(entries, func(s domain.AssetSource) bool {
			return s.Path != path && !slices.Contains(dependents, s.Path)
		}), nil
	case domain.ClassPublic:
		return []domain.AssetSource{p.publicSource(path)}, nil
	default:
		sources, err := p.discover(class)
		if err != nil {
			return nil, err
		}
		return slices.DeleteFunc(sources, func(s domain.AssetSource) bool { return s.Path != path }), nil
	}
}

func (p *Pipeline) discover(class domain.AssetClass) ([]domain.AssetSource, error) {
	if class == domain.ClassPublic {
		var sources []domain.AssetSource
		if _, err := os.Stat(p.site.PublicDir); err != nil {
			return nil, nil
		}
		for path := range p.deps.Walker.WalkFiles(p.site.PublicDir, nil) {
			sources = append(sources, p.publicSource(path))
		}
		return sources, nil
	}

	patterns := p.site.Assets.For(class)
	files, err := p.deps.Resolver.ResolvePatterns(patterns, p.site.Root)
	if err != nil {
		return nil, zerr.With(err, "class", string(class))
	}

	sources := make([]domain.AssetSource, 0, len(files))
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		rel, ok := p.deps.Resolver.Rel(patterns, p.site.Root, f)
		if !ok {
			rel = filepath.Base(f)
		}
		src := domain.AssetSource{Class: class, Path: f, Rel: rel}

		// Files are sorted, so the first path claiming a logical name keeps it.
		logical := src.LogicalURL()
		if first, taken := claimed[logical]; taken {
			err := zerr.With(zerr.With(zerr.With(domain.ErrDuplicateAsset, "logical", logical), "path", f), "kept", first)
			p.deps.Logger.Warn(fmt.Sprintf("%s: %s also resolves here, skipped", logical, f))
			p.diags.Warn(domain.DiagAsset, f, err)
			continue
		}
		claimed[logical] = f
		sources = append(sources, src)
	}
	return sources, nil
}

func (p *Pipeline) publicSource(path string) domain.AssetSource {
	rel, err := filepath.Rel(p.site.PublicDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return domain.AssetSource{Class: domain.ClassPublic, Path: path, Rel: filepath.ToSlash(rel)}
}

func (p *Pipeline) processAll(ctx context.Context, sources []domain.AssetSource) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.process(src)
			return nil
		})
	}

	return g.Wait()
}

// process runs one source through read, staleness, generate and register.
// Every failure is recorded and never returned.
func (p *Pipeline) process(src domain.AssetSource) {
	content, modifiedAt, err := p.read(src)
	if err != nil {
		p.fail(src, err)
		return
	}

	fp := p.deps.Hasher.Fingerprint(content)
	plan := p.variants.Plan(src, fp, p.site.Production)

	// A degraded copy of unchanged content is not retried; it declares its primary only.
	declared := plan
	if entry, ok := p.store.Get(src.Class, src.Path); ok && entry.Degraded && entry.Fingerprint == fp {
		declared = plan.PrimaryOnly()
	}
	if !p.staleness.IsStale(src.Class, src.Path, fp, declared.Outputs()) {
		p.register(declared)
		p.count(src.Class, ports.AssetCached, 0)
		return
	}

	res, err := p.variants.Generate(plan, content)
	if err != nil {
		p.fail(src, err)
		return
	}
	p.countPruned(src.Class, res.Pruned)

	if res.Degraded {
		p.deps.Logger.Warn(fmt.Sprintf("%s: %v, copied unmodified", src.LogicalURL(), res.Err))
		p.diags.Warn(domain.DiagAsset, src.Path, res.Err)
		primaryOnly := plan.PrimaryOnly()
		p.store.Put(src.Class, domain.CacheEntry{
			SourcePath:       src.Path,
			Fingerprint:      fp,
			Outputs:          primaryOnly.Outputs(),
			SourceModifiedAt: modifiedAt,
			Degraded:         true,
		})
		p.register(primaryOnly)
		p.count(src.Class, ports.AssetDegraded, res.Written)
		return
	}

	p.store.Put(src.Class, domain.CacheEntry{
		SourcePath:       src.Path,
		Fingerprint:      fp,
		Outputs:          plan.Outputs(),
		SourceModifiedAt: modifiedAt,
	})
	p.register(plan)
	p.count(src.Class, ports.AssetProcessed, res.Written)
}

func (p *Pipeline) read(src domain.AssetSource) ([]byte, time.Time, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", src.Path)
	}

	if src.Class == domain.ClassStyles {
		res, err := ResolveImports(src.Path)
		if err != nil {
			return nil, time.Time{}, err
		}
		for _, missing := range res.Missing {
			err := zerr.With(zerr.With(domain.ErrImportNotFound, "import", missing), "entry", src.Path)
			p.deps.Logger.Warn(fmt.Sprintf("%s: import %s not found, skipped", src.LogicalURL(), missing))
			p.diags.Warn(domain.DiagAsset, src.Path, err)
		}
		p.trackImports(res)
		return res.Concat(), info.ModTime(), nil
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", src.Path)
	}
	return data, info.ModTime(), nil
}

func (p *Pipeline) trackImports(res *Resolution) {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	for _, imported := range append(res.Imports(), res.Missing...) {
		if !slices.Contains(p.dependents[imported], res.Entry) {
			p.dependents[imported] = append(p.dependents[imported], res.Entry)
		}
	}
}

func (p *Pipeline) register(plan Plan) {
	for logical, physical := range plan.Mappings() {
		p.manifest.Register(logical, physical)
	}
}

func (p *Pipeline) fail(src domain.AssetSource, err error) {
	p.deps.Logger.Error(err)
	p.diags.Fail(domain.DiagAsset, src.Path, err)
	p.deps.Recorder.ObserveAsset(src.Class, ports.AssetFailed)
	p.passMu.Lock()
	defer p.passMu.Unlock()
	s := p.stats[src.Class]
	s.Failed++
	p.stats[src.Class] = s
}

// removeOrphans deletes the outputs and cache entries of sources that no longer exist.
func (p *Pipeline) removeOrphans(class domain.AssetClass, current []domain.AssetSource) {
	live := make(map[string]bool, len(current))
	for _, src := range current {
		live[src.Path] = true
	}

	entries := p.store.Entries(class)
	claimed := make(map[string]bool)
	for _, entry := range entries {
		if live[entry.SourcePath] {
			for _, out := range entry.Outputs.Paths() {
				claimed[out] = true
			}
		}
	}

	removed := 0
	for _, entry := range entries {
		if live[entry.SourcePath] {
			continue
		}
		for _, out := range entry.Outputs.Paths() {
			if claimed[out] {
				continue
			}
			if err := p.deps.Writer.Remove(filepath.Join(p.root, filepath.FromSlash(out))); err != nil {
				p.diags.Warn(domain.DiagAsset, entry.SourcePath, err)
				continue
			}
			removed++
		}
		p.store.Delete(class, entry.SourcePath)
	}
	p.countPruned(class, removed)
}

// flush persists the cache and the manifest under the flush lock. Failures keep the
// in-memory state and are recorded as persistence warnings.
func (p *Pipeline) flush(ctx context.Context) {
	release, err := p.lock.Acquire(ctx)
	if err != nil {
		p.persistenceFailure("lock", domain.LockPath(p.root), err)
		release = func() {}
	}
	defer release()

	if err := p.store.Save(); err != nil {
		p.persistenceFailure("cache", domain.CachePath(p.root), err)
	}
	if err := p.manifest.Flush(); err != nil {
		p.persistenceFailure("manifest", domain.ManifestPath(p.root), err)
	}
}

func (p *Pipeline) persistenceFailure(artifact, path string, err error) {
	p.deps.Logger.Warn(fmt.Sprintf("%s not persisted, continuing in memory: %v", artifact, err))
	p.diags.Warn(domain.DiagPersistence, path, err)
	p.deps.Recorder.IncPersistenceFailure(artifact)
}

func (p *Pipeline) resetStats() {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	p.stats = make(map[domain.AssetClass]ClassStats)
}

func (p *Pipeline) count(class domain.AssetClass, result ports.AssetResult, written int64) {
	p.deps.Recorder.ObserveAsset(class, result)
	p.passMu.Lock()
	defer p.passMu.Unlock()
	s := p.stats[class]
	switch result {
	case ports.AssetProcessed:
		s.Processed++
	case ports.AssetCached:
		s.Cached++
	case ports.AssetDegraded:
		s.Degraded++
	}
	s.Bytes += written
	p.stats[class] = s
}

func (p *Pipeline) countPruned(class domain.AssetClass, n int) {
	if n == 0 {
		return
	}
	p.passMu.Lock()
	defer p.passMu.Unlock()
	s := p.stats[class]
	s.Removed += n
	p.stats[class] = s
}

func (p *Pipeline) report(d time.Duration) Report {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	classes := make(map[domain.AssetClass]ClassStats, len(p.stats))
	for class, s := range p.stats {
		classes[class] = s
	}
	return Report{Classes: classes, Duration: d}
}

func isBelow(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
