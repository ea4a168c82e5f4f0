package watch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/devserver" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/watcher"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/scheduler"
)

// NodeID is the unique identifier for the watch session factory Graft node.
const NodeID graft.ID = "engine.watch"

// Factory creates watch sessions.
type Factory struct {
	watcher    ports.Watcher
	notifier   ports.ReloadNotifier
	schedulers *scheduler.Factory
	logger     ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(
	w ports.Watcher,
	notifier ports.ReloadNotifier,
	schedulers *scheduler.Factory,
	logger ports.Logger,
) *Factory {
	return &Factory{watcher: w, notifier: notifier, schedulers: schedulers, logger: logger}
}

// New creates a session over site that rebuilds through rebuilder.
func (f *Factory) New(site *domain.Site, rebuilder Rebuilder, diags *domain.Diagnostics) *Session {
	return NewSession(site, f.watcher, f.notifier, rebuilder, f.schedulers, diags, f.logger)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			watcher.NodeID,
			devserver.HubNodeID,
			scheduler.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			hub, err := graft.Dep[*devserver.Hub](ctx)
			if err != nil {
				return nil, err
			}
			schedulers, err := graft.Dep[*scheduler.Factory](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(w, hub, schedulers, log), nil
		},
	})
}
