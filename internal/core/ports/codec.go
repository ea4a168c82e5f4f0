package ports

import "go.trai.ch/lokal/internal/core/domain"

// Codec recompresses binary assets and produces compact sibling variants.
type Codec interface {
	// Optimize re-encodes data in its own format.
	// It returns domain.ErrUnsupportedFormat for extensions it does not handle.
	Optimize(ext string, data []byte) ([]byte, error)
	// SiblingFor reports the secondary output for a primary output name, if the format is convertible.
	SiblingFor(primaryName string) (domain.Sibling, bool)
	// EncodeSibling produces the secondary output content from the primary output content.
	EncodeSibling(sibling domain.Sibling, primary []byte) ([]byte, error)
}
