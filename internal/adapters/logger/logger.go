// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/lokal/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// zerr errors implement it; other errors fall back to Error().
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(newHandler(os.Stderr, false)),
		output: os.Stderr,
	}
}

func newHandler(w io.Writer, jsonMode bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return NewPrettyHandler(w, opts)
}

// SetOutput updates the logger's output destination, keeping the current format.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(newHandler(w, l.jsonMode))
}

// SetJSON switches between JSON and pretty logging, keeping the current destination.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	w := l.output
	if w == nil {
		w = os.Stderr
	}
	l.logger = slog.New(newHandler(w, enable))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error. In pretty mode the cause chain is printed below the main message.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// collectErrorEntries walks the error chain. zerr layers contribute their own message;
// the first non-zerr error contributes its full text and ends the walk.
func collectErrorEntries(err error) []string {
	var messages []string
	current := err

	for current != nil {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		messages = append(messages, m.Message())
		current = errors.Unwrap(current)
	}

	return messages
}

// formatErrorEntries renders the main message followed by an indented "Caused by" list.
func formatErrorEntries(messages []string) string {
	var lines []string

	for i, msg := range messages {
		parts := strings.Split(msg, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+parts[0])
			for _, line := range parts[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+parts[0])
		for _, line := range parts[1:] {
			lines = append(lines, "      "+line)
		}
	}

	return strings.Join(lines, "\n")
}
