package ports

import (
	"context"

	"go.trai.ch/lokal/internal/core/domain"
)

// Renderer turns a page request into markup. From the pipeline's point of view it is a pure function.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	Render(ctx context.Context, page domain.PageRequest) ([]byte, error)
	// Lookup translates key for a locale, falling back to the default locale.
	// The boolean is false when neither table has the key.
	Lookup(site *domain.Site, locale, key string) (string, bool, error)
}
