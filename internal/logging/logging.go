// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the slog handler used for diagnostics. Reports meant
// for the user are printed separately; logs go to stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Format selects a log encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")

	// Levels lists the accepted level names.
	Levels = []string{"error", "warn", "warning", "info", "debug"}
	// Formats lists the accepted format names.
	Formats = []string{string(FormatText), string(FormatJSON), string(FormatLogfmt)}
)

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// ParseFormat validates a format name. Empty means text.
func ParseFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if f == "" {
		return FormatText, nil
	}
	if slices.Contains(Formats, string(f)) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// NewHandler returns a handler writing to w at the given level and format.
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	//nolint:gosec // G115: slog levels fit in int32.
	lvl := int32(level)
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:     charmlog.Level(lvl),
		Formatter: charmlog.TextFormatter,
	})
}

// New parses level and format and returns a logger writing to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return slog.New(NewHandler(w, lvl, f)), nil
}
