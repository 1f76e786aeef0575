package slogutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"mcremap/internal/config"
	"mcremap/internal/paths"
)

// LoggerFactory builds the session logger.
// Level precedence: CLI flags > config > info.
type LoggerFactory struct {
	projectRoot string
	settings    *config.Settings
	cliLevel    *slog.Level
	stderr      io.Writer
	closers     []io.Closer
}

// NewLoggerFactory creates a new logger factory. cliLevel is nil when no
// verbosity flag was given.
func NewLoggerFactory(projectRoot string, settings *config.Settings, cliLevel *slog.Level) *LoggerFactory {
	return &LoggerFactory{
		projectRoot: projectRoot,
		settings:    settings,
		cliLevel:    cliLevel,
		stderr:      os.Stderr,
	}
}

// RemapLogger returns a logger writing to stderr and, when enabled, to
// <project>/.mcremap/logs/remap.log. The file keeps at least info records
// even when the console is quieter. File logging failures degrade to stderr
// only.
func (f *LoggerFactory) RemapLogger() *slog.Logger {
	level, badLevel := f.effectiveLevel()
	logger := f.build(level)
	if badLevel != nil {
		logger.Warn("Ignoring logging.level", "error", badLevel)
	}
	return logger
}

func (f *LoggerFactory) build(level slog.Level) *slog.Logger {
	console := NewConsoleHandler(f.stderr, level)
	if f.settings == nil || !f.settings.LogToFile() || f.projectRoot == "" {
		return slog.New(console)
	}

	file, err := openLogFile(paths.LogPath(f.projectRoot))
	if err != nil {
		logger := slog.New(console)
		logger.Debug("Log file unavailable", "error", err)
		return logger
	}
	f.closers = append(f.closers, file)
	fileLevel := min(level, slog.LevelInfo)
	return slog.New(fanout{console, NewLineHandler(file, &slog.HandlerOptions{Level: fileLevel})})
}

func (f *LoggerFactory) effectiveLevel() (slog.Level, error) {
	if f.cliLevel != nil {
		return *f.cliLevel, nil
	}
	if f.settings != nil && f.settings.LogLevel() != "" {
		return ParseLevel(f.settings.LogLevel())
	}
	return slog.LevelInfo, nil
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}

// openLogFile appends to path, creating .mcremap/logs on first use.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// fanout sends each record to every sink whose level admits it.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle reports the first sink error; later sinks still see the record.
func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, s := range h {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h fanout) WithGroup(name string) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(h))
	for i, s := range h {
		out[i] = fn(s)
	}
	return out
}
