package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lokal/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// ResolverNodeID is the unique identifier for the pattern resolver Graft node.
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	// HasherNodeID is the unique identifier for the hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// VerifierNodeID is the unique identifier for the output verifier Graft node.
	VerifierNodeID graft.ID = "adapter.fs.verifier"
	// WriterNodeID is the unique identifier for the output writer Graft node.
	WriterNodeID graft.ID = "adapter.fs.writer"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[*Resolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Resolver, error) {
			return NewResolver(), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Hasher, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[ports.OutputVerifier]{
		ID:        VerifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OutputVerifier, error) {
			return NewVerifier(), nil
		},
	})

	graft.Register(graft.Node[*Writer]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Writer, error) {
			return NewWriter(), nil
		},
	})
}
