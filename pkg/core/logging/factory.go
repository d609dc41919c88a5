// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     logging
// Description: Handler setup: terminal, log file and systemd journal
// Author:      Mike Stoffels
// Created:     2026-10-06
// License:     MIT
// ============================================================================

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var (
	level = new(slog.LevelVar)

	handlerMu sync.RWMutex
	handler   slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
)

// Config holds configuration for the process-wide log handler
type Config struct {
	// Log level (debug, info, warn, error)
	Level string

	// Terminal output format: "text" or "json" (default: text)
	Format string

	// Optional JSON log file, appended to
	File string

	// Also send records to the systemd journal
	Journal bool

	// Terminal output (default: os.Stderr)
	Output io.Writer
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
}

// Setup builds the handler described by cfg and installs it for all
// loggers created afterwards. The returned function closes the log file.
func Setup(cfg Config) (func() error, error) {
	h, closeFn, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	SetLevel(ParseLevel(cfg.Level))

	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()

	return closeFn, nil
}

// SetLevel changes the level of the installed handler at runtime
func SetLevel(l Level) {
	level.Set(l.slog())
}

// NewHandler creates a fanout handler for the configured outputs. All
// outputs follow the process-wide level that Setup and SetLevel control.
func NewHandler(cfg Config) (slog.Handler, func() error, error) {
	opts := &slog.HandlerOptions{Level: level}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var handlers []slog.Handler

	// terminal
	switch cfg.Format {
	case "", "text":
		handlers = append(handlers, slog.NewTextHandler(out, opts))
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(out, opts))
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	// file
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closeFn = f.Close
	}

	// systemd journal
	if cfg.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = handlers[0].Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	if len(handlers) == 1 {
		return handlers[0], closeFn, nil
	}
	return slogmulti.Fanout(handlers...), closeFn, nil
}

func currentHandler() slog.Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// toJournalKey maps attribute keys to journal field names
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
