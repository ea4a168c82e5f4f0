// Package scheduler serializes rebuilds per scope.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

// ScopeStatus represents the status of a rebuild scope.
type ScopeStatus string

const (
	// StatusIdle indicates no rebuild is running for the scope.
	StatusIdle ScopeStatus = "Idle"
	// StatusRunning indicates a rebuild is running and nothing is queued behind it.
	StatusRunning ScopeStatus = "Running"
	// StatusQueued indicates a rebuild is running and a follow-up run is queued.
	StatusQueued ScopeStatus = "Queued"
)

// Job performs one rebuild of a scope. It must read its sources when it starts,
// so a follow-up run observes every change that was requested before it.
type Job func(ctx context.Context, scope domain.RebuildScope) error

// Scheduler runs at most one rebuild per scope at a time. A request that arrives
// while its scope is running is coalesced into a single follow-up run.
// Full rebuilds hold the gate exclusively; route rebuilds share it.
type Scheduler struct {
	job      Job
	recorder ports.Recorder
	logger   ports.Logger

	gate sync.RWMutex

	mu     sync.Mutex
	idle   *sync.Cond
	active int
	scopes map[string]*scopeState
}

type scopeState struct {
	scope     domain.RebuildScope
	status    ScopeStatus
	requested uint64
	completed uint64
	err       error
}

// NewScheduler creates a new Scheduler that runs job for every scope.
func NewScheduler(job Job, recorder ports.Recorder, logger ports.Logger) *Scheduler {
	s := &Scheduler{
		job:      job,
		recorder: recorder,
		logger:   logger,
		scopes:   make(map[string]*scopeState),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Submit requests a rebuild of scope and returns the request's generation.
// The rebuild runs in the background with ctx.
func (s *Scheduler) Submit(ctx context.Context, scope domain.RebuildScope) uint64 {
	if scope.Kind == domain.ScopeNone {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := scope.Key()
	st, ok := s.scopes[key]
	if !ok {
		st = &scopeState{scope: scope, status: StatusIdle}
		s.scopes[key] = st
	}
	st.requested++

	switch st.status {
	case StatusRunning:
		st.status = StatusQueued
	case StatusIdle:
		st.status = StatusRunning
		s.active++
		go s.loop(ctx, st)
	case StatusQueued:
	}
	return st.requested
}

// loop runs a scope until no request is queued behind the current run.
func (s *Scheduler) loop(ctx context.Context, st *scopeState) {
	for {
		s.mu.Lock()
		generation := st.requested
		s.mu.Unlock()

		err := s.execute(ctx, st.scope)

		s.mu.Lock()
		st.completed = generation
		st.err = err
		if st.status == StatusQueued && ctx.Err() == nil {
			st.status = StatusRunning
			s.mu.Unlock()
			continue
		}
		st.status = StatusIdle
		s.active--
		if s.active == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
		return
	}
}

func (s *Scheduler) execute(ctx context.Context, scope domain.RebuildScope) error {
	if scope.Kind == domain.ScopeFull {
		s.gate.Lock()
		defer s.gate.Unlock()
	} else {
		s.gate.RLock()
		defer s.gate.RUnlock()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := s.job(ctx, scope)
	s.recorder.ObserveRebuild(scope.Kind, time.Since(start))
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "rebuild failed"), "scope", scope.String())
		s.logger.Error(err)
	}
	return err
}

// Settle blocks until every submitted rebuild, including queued follow-ups, has finished.
func (s *Scheduler) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.active > 0 {
		s.idle.Wait()
	}
}

// Status returns the status of a scope.
func (s *Scheduler) Status(scope domain.RebuildScope) ScopeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.scopes[scope.Key()]; ok {
		return st.status
	}
	return StatusIdle
}

// Completed returns the newest generation of scope whose rebuild has finished,
// and the error of that rebuild.
func (s *Scheduler) Completed(scope domain.RebuildScope) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.scopes[scope.Key()]; ok {
		return st.completed, st.err
	}
	return 0, nil
}
