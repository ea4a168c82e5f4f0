// Package htmlscan extracts asset references from rendered pages.
package htmlscan

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
)

// AssetPrefix selects the references that belong to the asset pipeline.
const AssetPrefix = "/assets/"

// Ref is one asset reference found in a page.
type Ref struct {
	Page string
	URL  string
	Tag  string
}

// Scanner finds asset references in rendered pages.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// AssetRefs returns every reference below AssetPrefix in document order.
// Query strings and fragments are stripped.
func (s *Scanner) AssetRefs(r io.Reader) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to parse HTML")
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, url := range elementURLs(n) {
				if cut := strings.IndexAny(url, "?#"); cut >= 0 {
					url = url[:cut]
				}
				if strings.HasPrefix(url, AssetPrefix) {
					refs = append(refs, Ref{URL: url, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// MissingAssets scans pages, given relative to outputDir, and reports every asset
// reference whose file does not exist below outputDir.
func (s *Scanner) MissingAssets(outputDir string, pages []string) ([]Ref, error) {
	var missing []Ref
	for _, page := range pages {
		refs, err := s.scanFile(filepath.Join(outputDir, filepath.FromSlash(page)))
		if err != nil {
			return nil, zerr.With(err, "page", page)
		}
		for _, ref := range refs {
			target := filepath.Join(outputDir, filepath.FromSlash(domain.OutputRel(ref.URL)))
			if _, err := os.Stat(target); err != nil {
				ref.Page = page
				missing = append(missing, ref)
			}
		}
	}
	return missing, nil
}

func (s *Scanner) scanFile(path string) ([]Ref, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open page")
	}
	defer func() {
		_ = f.Close()
	}()
	return s.AssetRefs(f)
}

// elementURLs returns the URL-valued attributes of an element.
func elementURLs(n *html.Node) []string {
	var urls []string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "href", "src", "poster":
			if attr.Val != "" {
				urls = append(urls, attr.Val)
			}
		case "srcset":
			urls = append(urls, srcsetURLs(attr.Val)...)
		case "content":
			// og:image and similar meta tags.
			if n.Data == "meta" && strings.HasPrefix(attr.Val, AssetPrefix) {
				urls = append(urls, attr.Val)
			}
		}
	}
	return slices.Compact(urls)
}

// srcsetURLs splits "a.png 1x, b.png 2x" into its URLs.
func srcsetURLs(srcset string) []string {
	var urls []string
	for candidate := range strings.SplitSeq(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
