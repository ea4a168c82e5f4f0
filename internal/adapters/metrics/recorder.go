// Package metrics records pipeline metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
)

const namespace = "lokal"

var _ ports.Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements ports.Recorder using Prometheus metrics.
// A nil recorder records nothing.
type PrometheusRecorder struct {
	registry            *prom.Registry
	assets              *prom.CounterVec
	pages               *prom.CounterVec
	rebuildDuration     *prom.HistogramVec
	persistenceFailures *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		assets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assets_total",
			Help:      "Assets handled by the pipeline, by class and result",
		}, []string{"class", "result"}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages rendered, by result",
		}, []string{"result"}),
		rebuildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of rebuilds, by scope",
			Buckets:   prom.DefBuckets,
		}, []string{"scope"}),
		persistenceFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed cache and manifest writes, by artifact",
		}, []string{"artifact"}),
	}
	reg.MustRegister(pr.assets, pr.pages, pr.rebuildDuration, pr.persistenceFailures)
	return pr
}

// ObserveAsset counts one processed asset.
func (p *PrometheusRecorder) ObserveAsset(class domain.AssetClass, result ports.AssetResult) {
	if p == nil {
		return
	}
	p.assets.WithLabelValues(string(class), string(result)).Inc()
}

// ObservePage counts one page render.
func (p *PrometheusRecorder) ObservePage(ok bool) {
	if p == nil {
		return
	}
	result := "failed"
	if ok {
		result = "success"
	}
	p.pages.WithLabelValues(result).Inc()
}

// ObserveRebuild records the duration of one rebuild.
func (p *PrometheusRecorder) ObserveRebuild(scope domain.ScopeKind, d time.Duration) {
	if p == nil {
		return
	}
	p.rebuildDuration.WithLabelValues(scopeLabel(scope)).Observe(d.Seconds())
}

// IncPersistenceFailure counts one failed artifact write.
func (p *PrometheusRecorder) IncPersistenceFailure(artifact string) {
	if p == nil {
		return
	}
	p.persistenceFailures.WithLabelValues(artifact).Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func scopeLabel(scope domain.ScopeKind) string {
	switch scope {
	case domain.ScopeFull:
		return "full"
	case domain.ScopeRoute:
		return "route"
	default:
		return "none"
	}
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveAsset(domain.AssetClass, ports.AssetResult) {}
func (NoopRecorder) ObservePage(bool)                                  {}
func (NoopRecorder) ObserveRebuild(domain.ScopeKind, time.Duration)    {}
func (NoopRecorder) IncPersistenceFailure(string)                      {}
