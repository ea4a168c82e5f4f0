package ports

import "go.trai.ch/lokal/internal/core/domain"

// ConfigLoader defines the interface for loading the site configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration starting at cwd, validates it and loads the route table.
	Load(cwd string) (*domain.Site, error)
	// DiscoverRoot walks up from cwd to the directory holding the configuration file.
	DiscoverRoot(cwd string) (string, error)
}
