package pipeline

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	"go.trai.ch/zerr"
)

// Plan is the set of outputs a source is expected to produce in the current mode.
// It is known before any transform runs, so the staleness check can use it.
type Plan struct {
	Source      domain.AssetSource
	Fingerprint domain.Fingerprint
	Production  bool
	// Primary is the primary output relative to the output root, in slash form.
	Primary string
	Sibling domain.Sibling
	// HasSibling is set when a secondary output is expected.
	HasSibling bool
}

// Outputs returns the declared outputs of the plan.
func (p Plan) Outputs() domain.Outputs {
	out := domain.Outputs{Primary: p.Primary}
	if p.HasSibling {
		out.Secondary = p.SiblingPath()
	}
	return out
}

// SiblingPath returns the secondary output relative to the output root.
func (p Plan) SiblingPath() string {
	return path.Join(path.Dir(p.Primary), p.Sibling.Name)
}

// PrimaryOnly returns the plan without its secondary output.
func (p Plan) PrimaryOnly() Plan {
	p.HasSibling = false
	p.Sibling = domain.Sibling{}
	return p
}

// Mappings returns the manifest entries of the plan. Public files and
// precompressed siblings are not addressed through the manifest.
func (p Plan) Mappings() map[string]string {
	if p.Source.Class == domain.ClassPublic {
		return nil
	}
	logical := p.Source.LogicalURL()
	mappings := map[string]string{logical: "/" + p.Primary}
	if p.HasSibling && p.Sibling.Addressable() {
		siblingLogical := strings.TrimSuffix(logical, path.Ext(logical)) + p.Sibling.Ext
		mappings[siblingLogical] = "/" + p.SiblingPath()
	}
	return mappings
}

// Variants produces the outputs of a plan.
type Variants struct {
	minifier ports.Minifier
	codec    ports.Codec
	writer   ports.FileWriter
	root     string
}

// NewVariants creates a generator writing below the output root.
func NewVariants(minifier ports.Minifier, codec ports.Codec, writer ports.FileWriter, root string) *Variants {
	return &Variants{minifier: minifier, codec: codec, writer: writer, root: root}
}

// Plan computes the declared outputs for a source with the given fingerprint.
func (v *Variants) Plan(src domain.AssetSource, fp domain.Fingerprint, production bool) Plan {
	rel := domain.OutputRel(src.LogicalURL())
	plan := Plan{Source: src, Fingerprint: fp, Production: production, Primary: rel}
	if src.Class == domain.ClassPublic {
		return plan
	}

	if production {
		ext := path.Ext(rel)
		plan.Primary = strings.TrimSuffix(rel, ext) + "." + fp.Short() + ext
	}

	sibling, ok := v.codec.SiblingFor(path.Base(plan.Primary))
	if ok && (production || sibling.Kind == domain.SiblingFormat) {
		plan.Sibling = sibling
		plan.HasSibling = true
	}
	return plan
}

// Result is the outcome of generating a plan.
type Result struct {
	// Degraded is set when a transform failed and the source bytes were copied instead.
	Degraded bool
	// Err is the transform failure behind a degraded result.
	Err error
	// Written counts the bytes of outputs whose content changed.
	Written int64
	// Pruned counts the outdated hashed files that were removed.
	Pruned int
}

// Generate transforms content and writes the declared outputs. A transform failure
// degrades to a copy of content under the primary name; only a write failure is returned.
func (v *Variants) Generate(plan Plan, content []byte) (Result, error) {
	primary, sibling, err := v.transform(plan, content)
	if err != nil {
		res := Result{Degraded: true, Err: err}
		n, werr := v.write(plan.Primary, content)
		if werr != nil {
			return res, werr
		}
		res.Written = n
		if plan.Production {
			res.Pruned = v.prune(plan)
		}
		return res, nil
	}

	var res Result
	n, err := v.write(plan.Primary, primary)
	if err != nil {
		return res, err
	}
	res.Written += n

	if plan.HasSibling {
		n, err := v.write(plan.SiblingPath(), sibling)
		if err != nil {
			return res, err
		}
		res.Written += n
	}

	if plan.Production {
		res.Pruned = v.prune(plan)
	}
	return res, nil
}

func (v *Variants) transform(plan Plan, content []byte) (primary, sibling []byte, err error) {
	primary = content
	if plan.Production {
		switch plan.Source.Class {
		case domain.ClassStyles:
			primary, err = v.minifier.CSS(content)
		case domain.ClassScripts:
			primary, err = v.minifier.JS(content)
		case domain.ClassImages:
			primary, err = v.codec.Optimize(path.Ext(plan.Source.Rel), content)
			if errors.Is(err, domain.ErrUnsupportedFormat) {
				primary, err = content, nil
			}
		}
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrAssetTransformFailed.Error()), "path", plan.Source.Path)
		}
	}

	if !plan.HasSibling {
		return primary, nil, nil
	}
	sibling, err = v.codec.EncodeSibling(plan.Sibling, primary)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrAssetTransformFailed.Error()), "path", plan.Source.Path)
	}
	return primary, sibling, nil
}

func (v *Variants) write(rel string, data []byte) (int64, error) {
	changed, err := v.writer.WriteFile(filepath.Join(v.root, filepath.FromSlash(rel)), data)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "output", rel)
	}
	if !changed {
		return 0, nil
	}
	return int64(len(data)), nil
}

// prune removes hashed outputs of the same logical name whose fingerprint segment is not the plan's.
func (v *Variants) prune(plan Plan) int {
	dir := filepath.Join(v.root, filepath.FromSlash(path.Dir(plan.Primary)))
	logical := path.Base(plan.Source.Rel)
	ext := path.Ext(logical)
	base := strings.TrimSuffix(logical, ext)

	suffixes := []string{ext}
	if plan.HasSibling {
		if plan.Sibling.Kind == domain.SiblingFormat {
			suffixes = append(suffixes, plan.Sibling.Ext)
		} else {
			suffixes = append(suffixes, ext+plan.Sibling.Ext)
		}
	}
	return pruneHashed(v.writer, dir, base, suffixes, plan.Fingerprint.Short())
}

// pruneHashed deletes files named base.<8 hex>.suffix in dir whose hash is not keep.
func pruneHashed(writer ports.FileWriter, dir, base string, suffixes []string, keep string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	patterns := make([]*regexp.Regexp, 0, len(suffixes))
	for _, suffix := range suffixes {
		patterns = append(patterns, hashedName(base, suffix))
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, re := range patterns {
			m := re.FindStringSubmatch(entry.Name())
			if m == nil || m[1] == keep {
				continue
			}
			if err := writer.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
			break
		}
	}
	return removed
}

func hashedName(base, suffix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `\.([0-9a-f]{8})` + regexp.QuoteMeta(suffix) + `$`)
}
