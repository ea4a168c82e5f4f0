// Package watch turns file system events into the smallest rebuild that keeps
// the output tree consistent with its sources.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
)

// AssetClassifier reports the asset class of a source path.
type AssetClassifier func(path string) (domain.AssetClass, bool)

// Classifier classifies changed paths and drops duplicate notifications for a
// path whose modification time has not moved.
type Classifier struct {
	site   *domain.Site
	assets AssetClassifier

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewClassifier creates a Classifier for site. assets may be nil.
func NewClassifier(site *domain.Site, assets AssetClassifier) *Classifier {
	return &Classifier{
		site:     site,
		assets:   assets,
		lastSeen: make(map[string]time.Time),
	}
}

// Observe stats the event's path and classifies it.
func (c *Classifier) Observe(event ports.WatchEvent) (domain.PendingChange, bool) {
	var modTime time.Time
	if info, err := os.Stat(event.Path); err == nil {
		modTime = info.ModTime()
	}
	return c.Classify(event, modTime)
}

// Classify classifies an event given the path's current modification time, zero
// when the path no longer exists. It reports false for events that need no rebuild.
func (c *Classifier) Classify(event ports.WatchEvent, modTime time.Time) (domain.PendingChange, bool) {
	op := changeOp(event.Operation, modTime)
	change := domain.PendingChange{Path: event.Path, Op: op, ModifiedAt: modTime}

	c.mu.Lock()
	previous, seen := c.lastSeen[event.Path]
	switch op {
	case domain.ChangeRemoved:
		delete(c.lastSeen, event.Path)
	default:
		c.lastSeen[event.Path] = modTime
	}
	c.mu.Unlock()

	if op == domain.ChangeModified && seen && previous.Equal(modTime) {
		return domain.PendingChange{}, false
	}
	change.PreviousModifiedAt = previous

	change.Category, change.Class = c.category(event.Path, op)
	if change.Category == domain.CategoryOther {
		return domain.PendingChange{}, false
	}
	return change, true
}

func changeOp(op ports.WatchOp, modTime time.Time) domain.ChangeOp {
	switch {
	case op == ports.OpRemove, op == ports.OpRename, modTime.IsZero():
		return domain.ChangeRemoved
	case op == ports.OpCreate:
		return domain.ChangeAdded
	default:
		return domain.ChangeModified
	}
}

func (c *Classifier) category(path string, op domain.ChangeOp) (domain.ChangeCategory, domain.AssetClass) {
	site := c.site
	switch {
	case below(site.OutputDir, path), below(site.DevOutputDir, path):
		return domain.CategoryOther, ""
	case path == site.RoutesFile:
		return domain.CategoryData, ""
	case below(site.PagesDir, path):
		// A removed directory may have held templates.
		if filepath.Ext(path) == domain.TemplateExt || op == domain.ChangeRemoved {
			return domain.CategoryTemplate, ""
		}
		return domain.CategoryOther, ""
	case below(site.DataDir, path), below(site.LayoutsDir, path), below(site.PartialsDir, path):
		return domain.CategoryData, ""
	}

	if c.assets != nil {
		if class, ok := c.assets(path); ok {
			return domain.CategoryAsset, class
		}
	}
	return domain.CategoryOther, ""
}

func below(dir, path string) bool {
	if dir == "" {
		return false
	}
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
