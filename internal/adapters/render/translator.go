package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

const metaFileName = "meta.json"

// Translations loads per-locale string tables and the shared meta document from the data directory.
// Tables are reloaded when their file's modification time changes.
type Translations struct {
	mu     sync.Mutex
	tables map[string]cachedTable
}

type cachedTable struct {
	modTime time.Time
	data    map[string]any
}

// NewTranslations creates an empty translation cache.
func NewTranslations() *Translations {
	return &Translations{tables: make(map[string]cachedTable)}
}

// Table returns the decoded data/<locale>.json document. A missing file yields an empty table.
func (t *Translations) Table(dataDir, locale string) (map[string]any, error) {
	return t.load(filepath.Join(dataDir, locale+".json"))
}

// Meta returns the decoded data/meta.json document shared by every locale.
// A missing file yields an empty document.
func (t *Translations) Meta(dataDir string) (map[string]any, error) {
	return t.load(filepath.Join(dataDir, metaFileName))
}

func (t *Translations) load(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", path)
	}

	t.mu.Lock()
	cached, ok := t.tables[path]
	t.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.data, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is below the configured data directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", path)
	}
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRenderFailed.Error()), "path", path)
	}

	t.mu.Lock()
	t.tables[path] = cachedTable{modTime: info.ModTime(), data: data}
	t.mu.Unlock()
	return data, nil
}

// Translator resolves dotted keys against a locale table, then the default locale's table,
// then returns the key itself.
type Translator struct {
	primary  map[string]any
	fallback map[string]any
}

// NewTranslator creates a translator over a locale table and its fallback.
func NewTranslator(primary, fallback map[string]any) *Translator {
	return &Translator{primary: primary, fallback: fallback}
}

// Lookup returns the translation of key and whether either table has it.
func (t *Translator) Lookup(key string) (string, bool) {
	if v, ok := lookup(t.primary, key); ok {
		return v, true
	}
	return lookup(t.fallback, key)
}

// T translates key and fills {{name}} placeholders from params. Params are either
// a single map or alternating names and values; placeholders without a value stay as written.
func (t *Translator) T(key string, params ...any) string {
	text, ok := t.Lookup(key)
	if !ok {
		return key
	}
	if len(params) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	for name, value := range placeholders(params) {
		text = strings.ReplaceAll(text, "{{"+name+"}}", fmt.Sprint(value))
	}
	return text
}

func placeholders(params []any) map[string]any {
	if len(params) == 1 {
		if m, ok := params[0].(map[string]any); ok {
			return m
		}
	}
	out := make(map[string]any, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		name, ok := params[i].(string)
		if !ok {
			continue
		}
		out[name] = params[i+1]
	}
	return out
}

func lookup(table map[string]any, key string) (string, bool) {
	var cur any = table
	for part := range strings.SplitSeq(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[part]; !ok {
			return "", false
		}
	}
	switch v := cur.(type) {
	case string:
		return v, true
	case nil, map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
