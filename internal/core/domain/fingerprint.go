package domain

// ShortFingerprintLen is the number of hex characters used in output filenames.
const ShortFingerprintLen = 8

// Fingerprint is the hex-encoded content digest of a byte sequence.
// The full digest is kept for change detection; only filenames use the short form.
type Fingerprint string

// Short returns the filename form of the fingerprint.
func (f Fingerprint) Short() string {
	if len(f) <= ShortFingerprintLen {
		return string(f)
	}
	return string(f[:ShortFingerprintLen])
}

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return string(f)
}

// IsZero reports whether the fingerprint is empty.
func (f Fingerprint) IsZero() bool {
	return f == ""
}
