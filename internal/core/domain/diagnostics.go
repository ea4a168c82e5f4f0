package domain

import (
	"slices"
	"sync"
	"time"
)

// DiagnosticCategory groups recovered errors so they can be counted separately.
type DiagnosticCategory string

const (
	// DiagConfig covers configuration problems that were not fatal.
	DiagConfig DiagnosticCategory = "config"
	// DiagAsset covers per-asset transform and copy failures.
	DiagAsset DiagnosticCategory = "asset"
	// DiagRender covers per-page render and write failures.
	DiagRender DiagnosticCategory = "render"
	// DiagPersistence covers cache and manifest persistence failures.
	DiagPersistence DiagnosticCategory = "persistence"
	// DiagWatch covers file watcher transport failures.
	DiagWatch DiagnosticCategory = "watch"
)

// Severity is the severity of a diagnostic.
type Severity uint8

const (
	// SeverityWarning means output was produced, possibly degraded.
	SeverityWarning Severity = iota
	// SeverityError means one output was skipped.
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is the structured record of one recovered error.
type Diagnostic struct {
	Category DiagnosticCategory
	Severity Severity
	Path     string
	Err      error
	At       time.Time
}

// Diagnostics collects recovered errors. It is safe for concurrent use.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewDiagnostics creates an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Add records a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	if diag.At.IsZero() {
		diag.At = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, diag)
}

// Warn records a warning.
func (d *Diagnostics) Warn(category DiagnosticCategory, path string, err error) {
	d.Add(Diagnostic{Category: category, Severity: SeverityWarning, Path: path, Err: err})
}

// Fail records an error.
func (d *Diagnostics) Fail(category DiagnosticCategory, path string, err error) {
	d.Add(Diagnostic{Category: category, Severity: SeverityError, Path: path, Err: err})
}

// All returns a copy of every recorded diagnostic.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.items)
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Count returns the number of diagnostics in a category.
func (d *Diagnostics) Count(category DiagnosticCategory) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, item := range d.items {
		if item.Category == category {
			n++
		}
	}
	return n
}

// CountSeverity returns the number of diagnostics with the given severity.
func (d *Diagnostics) CountSeverity(severity Severity) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, item := range d.items {
		if item.Severity == severity {
			n++
		}
	}
	return n
}

// Reset drops all recorded diagnostics.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = nil
}
