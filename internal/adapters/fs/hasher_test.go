package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/fs"
)

func TestHasher_Fingerprint(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "short input",
			input: "abc",
			want:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	hasher := fs.NewHasher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasher.Fingerprint([]byte(tt.input))
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.want[:8], got.Short())
		})
	}
}

func TestHasher_FingerprintFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "main.css")
	writeFile(t, path, "abc")

	hasher := fs.NewHasher()

	got, err := hasher.FingerprintFile(path)
	require.NoError(t, err)
	assert.Equal(t, hasher.Fingerprint([]byte("abc")), got)

	_, err = hasher.FingerprintFile(filepath.Join(tmpDir, "missing.css"))
	require.Error(t, err)
}
