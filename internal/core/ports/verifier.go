package ports

// OutputVerifier checks that declared outputs are present on disk.
type OutputVerifier interface {
	// VerifyOutputs reports whether every output exists below root.
	VerifyOutputs(root string, outputs []string) (bool, error)
}
