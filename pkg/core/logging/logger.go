// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     logging
// Description: Named key/value loggers on top of log/slog
// Author:      Mike Stoffels
// Created:     2026-10-06
// License:     MIT
// ============================================================================

package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "fatal":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is a named structured logger. Log methods take a message
// followed by alternating keys and values.
type Logger struct {
	*slog.Logger
	name string
}

// New creates a logger that writes through the handler installed by Setup.
// Loggers created before Setup keep the handler that was current then.
func New(name string) *Logger {
	return &Logger{
		Logger: slog.New(currentHandler()).With("logger", name),
		name:   name,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// WithLevel returns a logger that drops records below level
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{
		Logger: slog.New(&levelHandler{level: level.slog(), Handler: l.Logger.Handler()}),
		name:   l.name,
	}
}

// With returns a logger that adds the given key/value pairs to every record
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(keysAndValues...),
		name:   l.name,
	}
}

// levelHandler raises the minimum level of the wrapped handler
type levelHandler struct {
	slog.Handler
	level slog.Level
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}
