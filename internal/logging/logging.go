// Package logging builds the zerolog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/config"
)

// Options control where and how much is logged
type Options struct {
	Level string
	// File is used when Console is false; an empty File discards output
	File string
	// Console writes human-readable output to Out instead of a file
	Console bool
	Debug   bool
	Out     io.Writer
}

// Logger wraps a zerolog.Logger together with the file it writes to
type Logger struct {
	zerolog.Logger
	file *os.File
}

// FromConfig turns the log section of the configuration into Options
func FromConfig(cfg config.LogConfig, console, debug bool) Options {
	return Options{
		Level:   cfg.Level,
		File:    cfg.File,
		Console: console,
		Debug:   debug,
	}
}

// ParseLevel parses level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// New creates a logger. The TUI owns the terminal, so it logs to a file;
// headless commands log to stderr.
func New(opts Options) (*Logger, error) {
	lvl := ParseLevel(opts.Level)
	if opts.Debug {
		lvl = zerolog.DebugLevel
	}

	var (
		out  io.Writer = io.Discard
		file *os.File
	)

	switch {
	case opts.Console:
		w := opts.Out
		if w == nil {
			w = os.Stderr
		}
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = f
	}

	logger := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger, file: file}, nil
}

// Component returns a child logger tagged with a component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Path returns the log file path, or "" when not logging to a file
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
