package domain

import "time"

// ChangeOp is the kind of file system change observed by the watch session.
type ChangeOp uint8

const (
	// ChangeModified means an existing file's content changed.
	ChangeModified ChangeOp = iota
	// ChangeAdded means a file was created.
	ChangeAdded
	// ChangeRemoved means a file was deleted or renamed away.
	ChangeRemoved
)

// String implements fmt.Stringer.
func (o ChangeOp) String() string {
	switch o {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "modified"
	}
}

// ChangeCategory is the classification of a changed path.
type ChangeCategory uint8

const (
	// CategoryOther is a path the pipeline does not depend on.
	CategoryOther ChangeCategory = iota
	// CategoryTemplate is a page template below the pages root.
	CategoryTemplate
	// CategoryData is shared input: data files, layouts, partials and the route document.
	CategoryData
	// CategoryAsset is a stylesheet, script, image or public file.
	CategoryAsset
)

// String implements fmt.Stringer.
func (c ChangeCategory) String() string {
	switch c {
	case CategoryTemplate:
		return "template"
	case CategoryData:
		return "data"
	case CategoryAsset:
		return "asset"
	default:
		return "other"
	}
}

// PendingChange is a classified change. It is consumed by the orchestrator and never persisted.
type PendingChange struct {
	Path               string
	Op                 ChangeOp
	Category           ChangeCategory
	Class              AssetClass
	PreviousModifiedAt time.Time
	ModifiedAt         time.Time
}

// ScopeKind distinguishes rebuild scopes.
type ScopeKind uint8

const (
	// ScopeNone means nothing needs rebuilding.
	ScopeNone ScopeKind = iota
	// ScopeRoute is one base route across every configured locale.
	ScopeRoute
	// ScopeFull is every route plus the site-wide artifacts.
	ScopeFull
)

// FullScopeKey is the scheduler key of a full regeneration.
const FullScopeKey = "full"

// RebuildScope is the unit of work that the scheduler serializes.
type RebuildScope struct {
	Kind    ScopeKind
	RouteID string
}

// FullScope returns the scope of a full regeneration.
func FullScope() RebuildScope {
	return RebuildScope{Kind: ScopeFull}
}

// RouteScope returns the scope of a single base route.
func RouteScope(id string) RebuildScope {
	return RebuildScope{Kind: ScopeRoute, RouteID: id}
}

// Key returns the single-flight key of the scope.
func (s RebuildScope) Key() string {
	switch s.Kind {
	case ScopeFull:
		return FullScopeKey
	case ScopeRoute:
		return "route:" + s.RouteID
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (s RebuildScope) String() string {
	if s.Kind == ScopeNone {
		return "none"
	}
	return s.Key()
}
