// Package codec recompresses images and produces compact sibling outputs.
package codec

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	_ "image/gif" // Registers GIF decoding for sibling conversion.

	"github.com/HugoSmits86/nativewebp"
	"github.com/klauspost/compress/gzip"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Codec = (*Codec)(nil)

// DefaultJPEGQuality is the quality used when re-encoding JPEG images.
const DefaultJPEGQuality = 82

// rasterFormats can be recompressed and converted to WebP.
var rasterFormats = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// textFormats get a precompressed gzip sibling.
var textFormats = map[string]bool{
	".css": true,
	".js":  true,
	".svg": true,
}

// Codec implements ports.Codec with the standard image codecs, nativewebp and klauspost gzip.
type Codec struct {
	jpegQuality int
}

// New creates a Codec with default settings.
func New() *Codec {
	return &Codec{jpegQuality: DefaultJPEGQuality}
}

// Optimize re-encodes PNG and JPEG images. The original bytes are kept when
// re-encoding does not make the file smaller.
func (c *Codec) Optimize(ext string, data []byte) ([]byte, error) {
	ext = strings.ToLower(ext)
	if !rasterFormats[ext] {
		return nil, zerr.With(domain.ErrUnsupportedFormat, "ext", ext)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode image"), "ext", ext)
	}

	var buf bytes.Buffer
	switch ext {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.jpegQuality})
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to encode image"), "ext", ext)
	}

	if buf.Len() >= len(data) {
		return data, nil
	}
	return buf.Bytes(), nil
}

// SiblingFor returns a WebP sibling for raster images and a gzip sibling for text assets.
func (c *Codec) SiblingFor(primaryName string) (domain.Sibling, bool) {
	ext := strings.ToLower(filepath.Ext(primaryName))

	switch {
	case rasterFormats[ext]:
		return domain.Sibling{
			Name: strings.TrimSuffix(primaryName, filepath.Ext(primaryName)) + ".webp",
			Kind: domain.SiblingFormat,
			Ext:  ".webp",
		}, true
	case textFormats[ext]:
		return domain.Sibling{
			Name: primaryName + ".gz",
			Kind: domain.SiblingEncoding,
			Ext:  ".gz",
		}, true
	default:
		return domain.Sibling{}, false
	}
}

// EncodeSibling produces the sibling content from the primary output content.
func (c *Codec) EncodeSibling(sibling domain.Sibling, primary []byte) ([]byte, error) {
	switch sibling.Kind {
	case domain.SiblingFormat:
		return c.encodeWebP(primary)
	case domain.SiblingEncoding:
		return c.gzip(primary)
	default:
		return nil, zerr.With(domain.ErrUnsupportedFormat, "sibling", sibling.Name)
	}
}

func (c *Codec) encodeWebP(primary []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(primary))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to decode image")
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, zerr.Wrap(err, "failed to encode webp")
	}
	return buf.Bytes(), nil
}

func (c *Codec) gzip(primary []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create gzip writer")
	}
	if _, err := zw.Write(primary); err != nil {
		return nil, zerr.Wrap(err, "failed to compress")
	}
	if err := zw.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to compress")
	}
	return buf.Bytes(), nil
}
