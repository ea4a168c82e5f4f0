package ports

import (
	"time"

	"go.trai.ch/lokal/internal/core/domain"
)

// AssetResult is the outcome of processing one asset.
type AssetResult string

const (
	// AssetProcessed means fresh outputs were written.
	AssetProcessed AssetResult = "processed"
	// AssetCached means the cache proved the outputs current.
	AssetCached AssetResult = "cached"
	// AssetDegraded means a transform failed and a plain copy was written.
	AssetDegraded AssetResult = "degraded"
	// AssetFailed means no output could be written.
	AssetFailed AssetResult = "failed"
)

// Recorder records pipeline metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveAsset(class domain.AssetClass, result AssetResult)
	ObservePage(ok bool)
	ObserveRebuild(scope domain.ScopeKind, d time.Duration)
	IncPersistenceFailure(artifact string)
}
