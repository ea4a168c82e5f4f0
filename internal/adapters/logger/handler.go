package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

const (
	colorSlate  = "#667085"
	colorRed    = "#D93025"
	colorYellow = "#F59E0B"

	markCross   = "✗"
	markWarning = "!"
	markInfo    = "·"

	// continuation lines up with the text after "  ✗ ".
	continuation = "    "
)

// PrettyHandler is a slog.Handler that produces human-readable, colored output.
type PrettyHandler struct {
	mu    *sync.Mutex
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
// NO_COLOR disables colors.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(level)

	profile := termenv.EnvColorProfile()
	if os.Getenv("NO_COLOR") != "" {
		profile = termenv.Ascii
	}

	return &PrettyHandler{
		mu:    &sync.Mutex{},
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		level: levelVar,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one build log line: a level mark, the message and its attributes.
// Continuation lines of multi-line messages are indented under the message text.
// A leading output path ("/assets/styles/main.css: ...") is rendered bold.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	mark, color := levelStyle(r.Level)

	attrs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		attrs = append(attrs, formatAttr(h.group, attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, formatAttr(h.group, attr))
		return true
	})

	lines := strings.Split(r.Message, "\n")
	var b strings.Builder
	b.WriteString(h.out.String("  " + mark + " ").Foreground(color).String())
	b.WriteString(h.subject(lines[0], color))
	if len(attrs) > 0 {
		b.WriteString(h.out.String("  " + strings.Join(attrs, " ")).Faint().String())
	}
	b.WriteByte('\n')
	for _, line := range lines[1:] {
		if line != "" {
			b.WriteString(h.out.String(continuation + line).Foreground(color).String())
		}
		b.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(b.String())
	return err
}

// subject styles the first line, with an output path prefix in bold.
func (h *PrettyHandler) subject(line string, color termenv.Color) string {
	path, rest, ok := strings.Cut(line, ": ")
	if !ok || !strings.HasPrefix(path, "/") || strings.ContainsRune(path, ' ') {
		return h.out.String(line).Foreground(color).String()
	}
	return h.out.String(path).Foreground(color).Bold().String() +
		h.out.String(": "+rest).Foreground(color).String()
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return markCross, termenv.RGBColor(colorRed)
	case level >= slog.LevelWarn:
		return markWarning, termenv.RGBColor(colorYellow)
	default:
		return markInfo, termenv.RGBColor(colorSlate)
	}
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{mu: h.mu, out: h.out, level: h.level, attrs: newAttrs, group: h.group}
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{mu: h.mu, out: h.out, level: h.level, attrs: h.attrs, group: name}
}

// formatAttr renders key=value, quoting values that contain spaces or are empty.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	value := attr.Value.Resolve().String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	return key + "=" + value
}
