package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/codec"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/metrics"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/minify"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline factory Graft node.
const NodeID graft.ID = "engine.pipeline"

// Factory creates pipelines bound to a site's output root.
type Factory struct {
	deps   Deps
	stores ports.StoreFactory
}

// NewFactory creates a Factory.
func NewFactory(deps Deps, stores ports.StoreFactory) *Factory {
	return &Factory{deps: deps, stores: stores}
}

// New opens the cache of the site's output root and returns an initialized pipeline.
func (f *Factory) New(site *domain.Site, diags *domain.Diagnostics) (*Pipeline, error) {
	root := site.OutDir()
	store, err := f.stores.OpenStore(site.CacheBackend, root)
	if err != nil {
		return nil, err
	}
	p := New(site, store, f.stores.FlushLock(root), diags, f.deps)
	p.Init()
	return p, nil
}

// Deps returns the collaborators shared by the factory's pipelines.
func (f *Factory) Deps() Deps {
	return f.deps
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.HasherNodeID,
			fs.VerifierNodeID,
			fs.ResolverNodeID,
			fs.WalkerNodeID,
			fs.WriterNodeID,
			minify.NodeID,
			codec.NodeID,
			cas.NodeID,
			metrics.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			verifier, err := graft.Dep[ports.OutputVerifier](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[*fs.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			writer, err := graft.Dep[*fs.Writer](ctx)
			if err != nil {
				return nil, err
			}
			minifier, err := graft.Dep[ports.Minifier](ctx)
			if err != nil {
				return nil, err
			}
			c, err := graft.Dep[ports.Codec](ctx)
			if err != nil {
				return nil, err
			}
			stores, err := graft.Dep[ports.StoreFactory](ctx)
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

			return NewFactory(Deps{
				Hasher:   hasher,
				Verifier: verifier,
				Minifier: minifier,
				Codec:    c,
				Resolver: resolver,
				Walker:   walker,
				Writer:   writer,
				Recorder: recorder,
				Tracer:   tracer,
				Logger:   log,
			}, stores), nil
		},
	})
}
