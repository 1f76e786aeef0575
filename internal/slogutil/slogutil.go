package slogutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelQuiet is above every level mcremap logs at.
const LevelQuiet = slog.Level(100)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"quiet":   LevelQuiet,
}

// NewLogger creates a logger writing mcremap's line format to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger is the logger components fall back to when none is given.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewLineHandler(io.Discard, &slog.HandlerOptions{Level: LevelQuiet}))
}

// ParseLevel reads a logging.level value. Case is ignored.
func ParseLevel(s string) (slog.Level, error) {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn, error or quiet)", s)
}

// VerbosityLevel maps the -v count and -q flag to a level, or nil when
// neither was given and the configured level applies. -q wins over -v.
func VerbosityLevel(verbose int, quiet bool) *slog.Level {
	var level slog.Level
	switch {
	case quiet:
		level = LevelQuiet
	case verbose == 0:
		return nil
	case verbose == 1:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	return &level
}
