package htmlscan_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/htmlscan"
)

const page = `<!doctype html>
<html><head>
<link rel="stylesheet" href="/assets/styles/main.0123abcd.css">
<link rel="icon" href="/favicon.ico">
<meta property="og:image" content="/assets/images/og.png">
</head><body>
<img src="/assets/images/logo.png?v=2" srcset="/assets/images/logo.webp 1x, /assets/images/logo@2x.webp 2x">
<a href="/about/">About</a>
<script src="/assets/js/app.js"></script>
<script src="https://cdn.example/x.js"></script>
</body></html>`

func TestScanner_AssetRefs(t *testing.T) {
	refs, err := htmlscan.NewScanner().AssetRefs(strings.NewReader(page))
	require.NoError(t, err)

	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}
	assert.Equal(t, []string{
		"/assets/styles/main.0123abcd.css",
		"/assets/images/og.png",
		"/assets/images/logo.png",
		"/assets/images/logo.webp",
		"/assets/images/logo@2x.webp",
		"/assets/js/app.js",
	}, urls)
	assert.Equal(t, "link", refs[0].Tag)
}

func TestScanner_MissingAssets(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "fr"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "assets", "styles"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "assets", "styles", "main.css"), []byte("body{}"), 0o600))

	ok := `<link rel="stylesheet" href="/assets/styles/main.css">`
	broken := `<link rel="stylesheet" href="/assets/styles/main.css"><script src="/assets/js/gone.js"></script>`
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte(ok), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "fr", "index.html"), []byte(broken), 0o600))

	missing, err := htmlscan.NewScanner().MissingAssets(out, []string{"index.html", "fr/index.html"})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "fr/index.html", missing[0].Page)
	assert.Equal(t, "/assets/js/gone.js", missing[0].URL)

	_, err = htmlscan.NewScanner().MissingAssets(out, []string{"nope.html"})
	require.Error(t, err)
}
