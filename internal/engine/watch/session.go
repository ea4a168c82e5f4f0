package watch

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Rebuilder performs the rebuild steps a session schedules.
type Rebuilder interface {
	// Assets reprocesses the given sources, or runs a full asset pass when all is set.
	Assets(ctx context.Context, paths []string, all bool) error
	// Pages regenerates the pages of a scope.
	Pages(ctx context.Context, scope domain.RebuildScope) error
	// ClassOf reports the asset class of a source path.
	ClassOf(path string) (domain.AssetClass, bool)
}

// Session is one long-lived watch session over a project root.
type Session struct {
	site       *domain.Site
	watcher    ports.Watcher
	notifier   ports.ReloadNotifier
	rebuilder  Rebuilder
	classifier *Classifier
	scheduler  *scheduler.Scheduler
	diags      *domain.Diagnostics
	logger     ports.Logger

	mu        sync.Mutex
	assets    []string
	allAssets bool
}

// NewSession creates a session. The scheduler is built from schedulers so
// every scope runs the session's rebuild job.
func NewSession(
	site *domain.Site,
	watcher ports.Watcher,
	notifier ports.ReloadNotifier,
	rebuilder Rebuilder,
	schedulers *scheduler.Factory,
	diags *domain.Diagnostics,
	logger ports.Logger,
) *Session {
	s := &Session{
		site:      site,
		watcher:   watcher,
		notifier:  notifier,
		rebuilder: rebuilder,
		diags:     diags,
		logger:    logger,
	}
	s.classifier = NewClassifier(site, rebuilder.ClassOf)
	s.scheduler = schedulers.New(s.rebuild)
	return s
}

// Run watches the project root until ctx is canceled. It returns ErrWatchClosed
// when the watcher stops delivering events on its own.
func (s *Session) Run(ctx context.Context) error {
	if err := s.watcher.Start(ctx, s.site.Root, s.site.OutputDir, s.site.DevOutputDir); err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	defer func() {
		_ = s.watcher.Stop()
	}()

	s.logger.Info("watching " + s.site.Root)
	for event := range s.watcher.Events() {
		if event.Operation == ports.OpError {
			err := zerr.Wrap(event.Err, domain.ErrWatchFailed.Error())
			s.logger.Warn(err.Error())
			s.diags.Warn(domain.DiagWatch, event.Path, err)
			continue
		}

		change, ok := s.classifier.Observe(event)
		if !ok {
			continue
		}
		s.logger.Info(change.Category.String() + " " + change.Op.String() + ": " + change.Path)
		s.Handle(ctx, []domain.PendingChange{change})
	}

	s.scheduler.Settle()
	if ctx.Err() != nil {
		return nil
	}
	s.diags.Fail(domain.DiagWatch, s.site.Root, domain.ErrWatchClosed)
	return domain.ErrWatchClosed
}

// Handle schedules the rebuilds that a batch of classified changes requires.
func (s *Session) Handle(ctx context.Context, changes []domain.PendingChange) Plan {
	plan := Dispatch(s.site, changes)
	if plan.Empty() {
		return plan
	}

	if plan.Full() {
		s.mu.Lock()
		for _, path := range plan.Assets {
			if !slices.Contains(s.assets, path) {
				s.assets = append(s.assets, path)
			}
		}
		s.allAssets = s.allAssets || plan.AllAssets
		s.mu.Unlock()
	}

	for _, scope := range plan.Scopes {
		s.scheduler.Submit(ctx, scope)
	}
	return plan
}

// Settle blocks until every scheduled rebuild has finished.
func (s *Session) Settle() {
	s.scheduler.Settle()
}

// rebuild is the scheduler job. A full scope first drains the queued asset work.
func (s *Session) rebuild(ctx context.Context, scope domain.RebuildScope) error {
	if scope.Kind == domain.ScopeFull {
		s.mu.Lock()
		paths, all := s.assets, s.allAssets
		s.assets, s.allAssets = nil, false
		s.mu.Unlock()

		if all || len(paths) > 0 {
			if err := s.rebuilder.Assets(ctx, paths, all); err != nil {
				return err
			}
		}
	}

	if err := s.rebuilder.Pages(ctx, scope); err != nil {
		return err
	}

	s.notifier.Reload(uuid.NewString())
	return nil
}
