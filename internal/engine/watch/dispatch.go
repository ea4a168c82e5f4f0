package watch

import (
	"slices"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/engine/routes"
)

// Plan is the work a batch of changes requires.
type Plan struct {
	// Scopes is either a single full scope or one scope per changed base route.
	Scopes []domain.RebuildScope
	// Assets lists modified asset sources to reprocess before the pages.
	Assets []string
	// AllAssets requests a full asset pass because the set of sources changed.
	AllAssets bool
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool {
	return len(p.Scopes) == 0
}

// Full reports whether the plan regenerates every route.
func (p Plan) Full() bool {
	return len(p.Scopes) == 1 && p.Scopes[0].Kind == domain.ScopeFull
}

// Dispatch maps classified changes to a rebuild plan:
//   - a modified asset is reprocessed, then every page is regenerated;
//   - a modified template regenerates its base route for every locale;
//   - data, layouts, partials and the route document regenerate every page;
//   - an added or removed template or asset regenerates everything.
func Dispatch(site *domain.Site, changes []domain.PendingChange) Plan {
	var plan Plan
	full := false
	routeIDs := make(map[string]bool)

	for _, change := range changes {
		switch change.Category {
		case domain.CategoryAsset:
			full = true
			if change.Op == domain.ChangeModified {
				if !slices.Contains(plan.Assets, change.Path) {
					plan.Assets = append(plan.Assets, change.Path)
				}
			} else {
				plan.AllAssets = true
			}
		case domain.CategoryTemplate:
			if change.Op != domain.ChangeModified {
				full = true
				continue
			}
			id, _, ok := routes.BaseRouteID(site.PagesDir, change.Path)
			if !ok {
				full = true
				continue
			}
			routeIDs[id] = true
		case domain.CategoryData:
			full = true
		case domain.CategoryOther:
		}
	}

	if plan.AllAssets {
		plan.Assets = nil
	}
	if full {
		plan.Scopes = []domain.RebuildScope{domain.FullScope()}
		return plan
	}

	ids := make([]string, 0, len(routeIDs))
	for id := range routeIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		plan.Scopes = append(plan.Scopes, domain.RouteScope(id))
	}
	return plan
}
