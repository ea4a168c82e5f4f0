package codec_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/internal/adapters/codec"
	"go.trai.ch/lokal/internal/core/domain"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, img))
	return buf.Bytes()
}

func TestCodec_Optimize(t *testing.T) {
	c := codec.New()
	src := samplePNG(t)

	out, err := c.Optimize(".png", src)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), len(src))

	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err, "optimized output must stay a valid png")
}

func TestCodec_Optimize_Errors(t *testing.T) {
	c := codec.New()

	_, err := c.Optimize(".gif", []byte("GIF89a"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnsupportedFormat.Error())

	_, err = c.Optimize(".png", []byte("not a png"))
	require.Error(t, err)
}

func TestCodec_SiblingFor(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		want    domain.Sibling
		ok      bool
	}{
		{
			name:    "png converts to webp",
			primary: "logo.1a2b3c4d.png",
			want:    domain.Sibling{Name: "logo.1a2b3c4d.webp", Kind: domain.SiblingFormat, Ext: ".webp"},
			ok:      true,
		},
		{
			name:    "uppercase jpeg converts to webp",
			primary: "photo.JPEG",
			want:    domain.Sibling{Name: "photo.webp", Kind: domain.SiblingFormat, Ext: ".webp"},
			ok:      true,
		},
		{
			name:    "stylesheet gets gzip",
			primary: "main.1a2b3c4d.css",
			want:    domain.Sibling{Name: "main.1a2b3c4d.css.gz", Kind: domain.SiblingEncoding, Ext: ".gz"},
			ok:      true,
		},
		{
			name:    "gif has no sibling",
			primary: "anim.gif",
			ok:      false,
		},
		{
			name:    "webp has no sibling",
			primary: "hero.webp",
			ok:      false,
		},
	}

	c := codec.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.SiblingFor(tt.primary)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCodec_EncodeSibling_Gzip(t *testing.T) {
	c := codec.New()
	src := []byte("body{color:red}body{color:red}body{color:red}")

	sibling, ok := c.SiblingFor("main.css")
	require.True(t, ok)

	out, err := c.EncodeSibling(sibling, src)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(out))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestCodec_EncodeSibling_WebP(t *testing.T) {
	c := codec.New()

	sibling, ok := c.SiblingFor("logo.png")
	require.True(t, ok)

	out, err := c.EncodeSibling(sibling, samplePNG(t))
	require.NoError(t, err)
	require.Greater(t, len(out), 12)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))

	_, err = c.EncodeSibling(sibling, []byte("broken"))
	require.Error(t, err)
}
