// Package minify adapts tdewolff/minify to the pipeline's Minifier port.
package minify

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Minifier = (*Minifier)(nil)

const (
	mediaCSS  = "text/css"
	mediaHTML = "text/html"
	mediaJS   = "application/javascript"
	mediaSVG  = "image/svg+xml"
)

// Minifier shrinks stylesheets, scripts and pages.
type Minifier struct {
	m *minify.M
}

// New creates a Minifier with every supported media type registered.
func New() *Minifier {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.AddFunc(mediaSVG, svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.Add(mediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Minifier{m: m}
}

// CSS minifies a stylesheet.
func (m *Minifier) CSS(src []byte) ([]byte, error) {
	return m.run(mediaCSS, src)
}

// JS minifies a script.
func (m *Minifier) JS(src []byte) ([]byte, error) {
	return m.run(mediaJS, src)
}

// HTML minifies a rendered page, including inline styles and scripts.
func (m *Minifier) HTML(src []byte) ([]byte, error) {
	return m.run(mediaHTML, src)
}

func (m *Minifier) run(mediaType string, src []byte) ([]byte, error) {
	out, err := m.m.Bytes(mediaType, src)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to minify"), "media_type", mediaType)
	}
	return out, nil
}
