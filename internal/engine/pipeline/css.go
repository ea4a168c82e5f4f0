package pipeline

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

// importDirective matches @import "x.css", @import 'x.css' and @import url(x.css).
// The third group holds the media query, if any.
var importDirective = regexp.MustCompile(`@import\s+(?:url\(\s*["']?([^"')\s]+)["']?\s*\)|["']([^"']+)["'])\s*([^;]*);`)

var blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// Resolution is the ordered set of stylesheets that make up one entry.
type Resolution struct {
	// Entry is the stylesheet the resolution started from.
	Entry string
	// Files lists the entry and every inlined import, imports before their importer.
	Files []string
	// External holds the directives of imports that stay runtime references, in first-seen order.
	External []string
	// Missing lists local imports that could not be read.
	Missing []string

	sources map[string][]byte
	// media holds the media query a file is inlined under.
	media map[string]string
}

// ResolveImports follows the import directives of a stylesheet depth-first.
// Every file appears once. A file that is already being visited is skipped,
// so cyclic imports resolve to a finite list.
func ResolveImports(entry string) (*Resolution, error) {
	entry = filepath.Clean(entry)
	res := &Resolution{Entry: entry, sources: make(map[string][]byte), media: make(map[string]string)}
	if err := res.visit(entry, "", make(map[string]bool), make(map[string]bool)); err != nil {
		return nil, err
	}
	return res, nil
}

// visit inlines file under media. Imports without their own media query inherit it.
func (r *Resolution) visit(file, media string, visited, external map[string]bool) error {
	if visited[file] {
		return nil
	}
	visited[file] = true

	data, err := os.ReadFile(file) //nolint:gosec // Paths come from configured patterns and their imports
	if err != nil {
		if file != r.Entry && errors.Is(err, fs.ErrNotExist) {
			r.Missing = append(r.Missing, file)
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", file)
	}

	data = blockComment.ReplaceAll(data, nil)

	for _, match := range importDirective.FindAllSubmatch(data, -1) {
		ref := string(match[1])
		if ref == "" {
			ref = string(match[2])
		}
		if isExternalRef(ref) {
			directive := string(match[0])
			if !external[directive] {
				external[directive] = true
				r.External = append(r.External, directive)
			}
			continue
		}
		child := filepath.Join(filepath.Dir(file), filepath.FromSlash(ref))
		childMedia := strings.TrimSpace(string(match[3]))
		if childMedia == "" {
			childMedia = media
		}
		if err := r.visit(child, childMedia, visited, external); err != nil {
			return err
		}
	}

	r.sources[file] = data
	if media != "" {
		r.media[file] = media
	}
	r.Files = append(r.Files, file)
	return nil
}

// Imports returns the inlined files other than the entry.
func (r *Resolution) Imports() []string {
	imports := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if f != r.Entry {
			imports = append(imports, f)
		}
	}
	return imports
}

// Concat joins the resolved files in order with their import directives and comments
// removed. External imports are hoisted to the top, where CSS requires them. A file
// imported with a media query is wrapped in an @media block.
func (r *Resolution) Concat() []byte {
	var buf bytes.Buffer
	for _, directive := range r.External {
		buf.WriteString(directive)
		buf.WriteByte('\n')
	}
	for i, f := range r.Files {
		if i > 0 {
			buf.WriteByte('\n')
		}
		body := bytes.TrimSpace(importDirective.ReplaceAll(r.sources[f], nil))
		if query, ok := r.media[f]; ok {
			buf.WriteString("@media " + query + " {\n")
			buf.Write(body)
			buf.WriteString("\n}\n")
			continue
		}
		buf.Write(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func isExternalRef(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http:") ||
		strings.HasPrefix(lower, "https:") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "/") ||
		strings.HasPrefix(lower, "data:")
}
