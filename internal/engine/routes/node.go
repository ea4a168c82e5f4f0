package routes

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/adapters/fs" //nolint:depguard // Wired in engine wiring
)

// NodeID is the unique identifier for the route grouper Graft node.
const NodeID graft.ID = "engine.routes"

func init() {
	graft.Register(graft.Node[*Grouper]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID},
		Run: func(ctx context.Context) (*Grouper, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewGrouper(walker), nil
		},
	})
}
