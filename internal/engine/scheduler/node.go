package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/metrics" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler factory Graft node.
const NodeID graft.ID = "engine.scheduler"

// Factory creates schedulers that share the process-wide recorder and logger.
type Factory struct {
	recorder ports.Recorder
	logger   ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(recorder ports.Recorder, logger ports.Logger) *Factory {
	return &Factory{recorder: recorder, logger: logger}
}

// New creates a Scheduler that runs job.
func (f *Factory) New(job Job) *Scheduler {
	return NewScheduler(job, f.recorder, f.logger)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			metrics.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			recorder, err := graft.Dep[*metrics.PrometheusRecorder](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(recorder, log), nil
		},
	})
}
