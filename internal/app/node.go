package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/adapters/devserver" //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/adapters/htmlscan"  //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/lokal/internal/engine/pipeline"
	"go.trai.ch/lokal/internal/engine/site"
	"go.trai.ch/lokal/internal/engine/watch"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			pipeline.NodeID,
			site.NodeID,
			watch.NodeID,
			htmlscan.NodeID,
			devserver.HubNodeID,
			metrics.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	pipelines, err := graft.Dep[*pipeline.Factory](ctx)
	if err != nil {
		return nil, err
	}
	generator, err := graft.Dep[*site.Generator](ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := graft.Dep[*watch.Factory](ctx)
	if err != nil {
		return nil, err
	}
	scanner, err := graft.Dep[*htmlscan.Scanner](ctx)
	if err != nil {
		return nil, err
	}
	hub, err := graft.Dep[*devserver.Hub](ctx)
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

	return New(loader, pipelines, generator, sessions, scanner, hub, recorder, tracer, log), nil
}
