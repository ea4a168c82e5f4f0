package domain

// SiblingKind distinguishes secondary outputs.
type SiblingKind uint8

const (
	// SiblingFormat is an alternative image format that markup can reference directly.
	SiblingFormat SiblingKind = iota
	// SiblingEncoding is a precompressed copy served by content negotiation.
	SiblingEncoding
)

// Sibling is the secondary output produced next to a primary output.
type Sibling struct {
	// Name is the file name of the sibling, in the primary output's directory.
	Name string
	Kind SiblingKind
	// Ext is the extension that replaces or extends the primary extension, including the dot.
	Ext string
}

// Addressable reports whether the sibling gets its own manifest mapping.
func (s Sibling) Addressable() bool {
	return s.Kind == SiblingFormat
}
