// Package logging builds the slog loggers used across dynoteam. Records are
// rendered by charmbracelet/log so console output stays human readable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Formats accepted by Options.Format.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Options configures a logger.
type Options struct {
	Level           string // debug, info, warn, error
	Format          string // text, json, logfmt
	Prefix          string
	ReportTimestamp bool
	Writer          io.Writer
}

// DefaultOptions returns info-level text logging to stderr.
func DefaultOptions() Options {
	return Options{
		Level:  "info",
		Format: FormatText,
		Prefix: "dynoteam",
		Writer: os.Stderr,
	}
}

// New returns a slog.Logger backed by a charm log handler.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a charm log level. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func parseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	case FormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("invalid log format %q (expected text, json or logfmt)", s)
	}
}
