package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/metrics"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := metrics.NewPrometheusRecorder(reg)

	pr.ObserveAsset(domain.ClassStyles, ports.AssetProcessed)
	pr.ObserveAsset(domain.ClassStyles, ports.AssetCached)
	pr.ObserveAsset(domain.ClassImages, ports.AssetDegraded)
	pr.ObservePage(true)
	pr.ObservePage(true)
	pr.ObservePage(false)
	pr.ObserveRebuild(domain.ScopeRoute, 120*time.Millisecond)
	pr.IncPersistenceFailure("cache")

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	count, err = testutil.GatherAndCount(reg, "lokal_pages_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusRecorder_Nil(t *testing.T) {
	var pr *metrics.PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveAsset(domain.ClassScripts, ports.AssetProcessed)
		pr.ObservePage(false)
		pr.ObserveRebuild(domain.ScopeFull, time.Second)
		pr.IncPersistenceFailure("manifest")
	})
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	pr := metrics.NewPrometheusRecorder(nil)
	pr.ObservePage(true)

	srv := httptest.NewServer(pr.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lokal_pages_total{result="success"} 1`)
}
