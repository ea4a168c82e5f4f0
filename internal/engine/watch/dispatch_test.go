package watch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/engine/watch"
)

func TestDispatch(t *testing.T) {
	site := testSite("/site")
	template := func(path string, op domain.ChangeOp) domain.PendingChange {
		return domain.PendingChange{Path: path, Op: op, Category: domain.CategoryTemplate}
	}
	asset := func(path string, op domain.ChangeOp) domain.PendingChange {
		return domain.PendingChange{Path: path, Op: op, Category: domain.CategoryAsset, Class: domain.ClassStyles}
	}

	tests := []struct {
		name    string
		changes []domain.PendingChange
		want    watch.Plan
	}{
		{
			name:    "nothing",
			changes: []domain.PendingChange{{Path: "/site/README.md", Category: domain.CategoryOther}},
			want:    watch.Plan{},
		},
		{
			name:    "locale variant rebuilds its base route",
			changes: []domain.PendingChange{template("/site/src/pages/about.fr.tmpl", domain.ChangeModified)},
			want:    watch.Plan{Scopes: []domain.RebuildScope{domain.RouteScope("about")}},
		},
		{
			name: "two routes rebuild independently",
			changes: []domain.PendingChange{
				template("/site/src/pages/contact.tmpl", domain.ChangeModified),
				template("/site/src/pages/about.tmpl", domain.ChangeModified),
				template("/site/src/pages/about.en.tmpl", domain.ChangeModified),
			},
			want: watch.Plan{Scopes: []domain.RebuildScope{domain.RouteScope("about"), domain.RouteScope("contact")}},
		},
		{
			name:    "added template is a full rebuild",
			changes: []domain.PendingChange{template("/site/src/pages/blog.tmpl", domain.ChangeAdded)},
			want:    watch.Plan{Scopes: []domain.RebuildScope{domain.FullScope()}},
		},
		{
			name: "shared data wins over a route scope",
			changes: []domain.PendingChange{
				template("/site/src/pages/about.tmpl", domain.ChangeModified),
				{Path: "/site/src/data/en.json", Category: domain.CategoryData},
			},
			want: watch.Plan{Scopes: []domain.RebuildScope{domain.FullScope()}},
		},
		{
			name:    "modified asset is reprocessed before a full rebuild",
			changes: []domain.PendingChange{asset("/site/src/styles/main.css", domain.ChangeModified)},
			want: watch.Plan{
				Scopes: []domain.RebuildScope{domain.FullScope()},
				Assets: []string{"/site/src/styles/main.css"},
			},
		},
		{
			name: "removed asset runs a full asset pass",
			changes: []domain.PendingChange{
				asset("/site/src/styles/main.css", domain.ChangeModified),
				asset("/site/src/styles/old.css", domain.ChangeRemoved),
			},
			want: watch.Plan{
				Scopes:    []domain.RebuildScope{domain.FullScope()},
				AllAssets: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := watch.Dispatch(site, tt.changes)
			assert.Equal(t, tt.want, got)
		})
	}
}
