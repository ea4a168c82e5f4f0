package site

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/metrics"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/minify"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/render"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/routes"
)

// NodeID is the unique identifier for the page generator Graft node.
const NodeID graft.ID = "engine.site"

func init() {
	graft.Register(graft.Node[*Generator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			render.NodeID,
			minify.NodeID,
			fs.WriterNodeID,
			routes.NodeID,
			metrics.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Generator, error) {
			renderer, err := graft.Dep[ports.Renderer](ctx)
			if err != nil {
				return nil, err
			}
			minifier, err := graft.Dep[ports.Minifier](ctx)
			if err != nil {
				return nil, err
			}
			writer, err := graft.Dep[*fs.Writer](ctx)
			if err != nil {
				return nil, err
			}
			grouper, err := graft.Dep[*routes.Grouper](ctx)
			if err != nil {
				return nil, err
			}
			recorder, err := graft.Dep[*metrics.PrometheusRecorder](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewGenerator(renderer, minifier, writer, grouper, recorder, tracer, log), nil
		},
	})
}
