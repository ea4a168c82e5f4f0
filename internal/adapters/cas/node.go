package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/core/ports"
)

// NodeID is the unique identifier for the cache store factory Graft node.
const NodeID graft.ID = "adapter.cas"

func init() {
	graft.Register(graft.Node[ports.StoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StoreFactory, error) {
			return Factory{}, nil
		},
	})
}
