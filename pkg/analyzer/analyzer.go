// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     analyzer
// Description: Entry points combining lexing, parsing and error handling
// Author:      Mike Stoffels
// Created:     2026-10-05
// License:     MIT
// ============================================================================

// Package analyzer is the facade shells use to tokenize and parse source
// text. It adds input limits, request ids, timing and logging around the
// lexer and parser.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/core/cache"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/lexer"
	"github.com/msto63/lexan/pkg/parser"
)

// DefaultMaxInputLength bounds the source size accepted by an Analyzer
const DefaultMaxInputLength = 64 * 1024

// ErrInputTooLarge is returned when the source exceeds the configured limit
var ErrInputTooLarge = errors.New("input exceeds maximum length")

// Tokenize splits source into tokens, ending with EOF
func Tokenize(source string) ([]lexer.Token, error) {
	return lexer.Tokenize(source)
}

// Parse tokenizes and parses source into a program
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tokens)
}

// Options configures an Analyzer
type Options struct {
	Logger         *logging.Logger
	MaxInputLength int

	// CacheSize enables an in-memory LRU of successful results keyed by
	// operation and source. Zero disables caching.
	CacheSize int
	CacheTTL  time.Duration
}

// Analyzer runs analyses for shells. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	logger   *logging.Logger
	maxInput int
	cache    *cache.Cache[outcome]
}

// outcome is the cacheable part of a Result
type outcome struct {
	tokens  []lexer.Token
	program *ast.Program
	symbols []string
}

// Result is the outcome of one successful analysis. Results served from
// the cache share Tokens and Program with earlier results; treat them as
// read-only.
type Result struct {
	RequestID string
	Tokens    []lexer.Token
	Program   *ast.Program // nil for Tokenize
	Symbols   []string
	Duration  time.Duration
}

// New creates an Analyzer, applying defaults for zero options
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = logging.New("analyzer")
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	a := &Analyzer{
		logger:   opts.Logger,
		maxInput: opts.MaxInputLength,
	}
	if opts.CacheSize > 0 {
		a.cache = cache.New[outcome](cache.Config{
			MaxItems:        opts.CacheSize,
			TTL:             opts.CacheTTL,
			CleanupInterval: cache.DefaultConfig().CleanupInterval,
		})
	}
	return a
}

// CacheStats reports result cache counters. ok is false when caching is
// disabled.
func (a *Analyzer) CacheStats() (stats cache.Stats, ok bool) {
	if a.cache == nil {
		return cache.Stats{}, false
	}
	return a.cache.Stats(), true
}

// Close stops the cache sweep and drops cached results
func (a *Analyzer) Close() {
	if a.cache != nil {
		a.cache.Close()
		a.cache.Clear()
	}
}

// MaxInputLength returns the configured input limit in bytes
func (a *Analyzer) MaxInputLength() int {
	return a.maxInput
}

// Tokenize lexes source
func (a *Analyzer) Tokenize(ctx context.Context, source string) (*Result, error) {
	return a.run(ctx, "tokenize", source, false)
}

// Parse lexes and parses source
func (a *Analyzer) Parse(ctx context.Context, source string) (*Result, error) {
	return a.run(ctx, "parse", source, true)
}

func (a *Analyzer) run(ctx context.Context, op, source string, parse bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(source) > a.maxInput {
		return nil, fmt.Errorf("%w: %d > %d", ErrInputTooLarge, len(source), a.maxInput)
	}

	res := &Result{RequestID: requestID(ctx)}
	start := time.Now()

	a.logger.Debug("Starting analysis",
		"request_id", res.RequestID,
		"op", op,
		"length", len(source),
	)

	var (
		out    outcome
		err    error
		cached bool
	)
	if a.cache != nil {
		cached = true
		out, err = a.cache.GetOrSet(cache.Key(op, source), func() (outcome, error) {
			cached = false
			return analyze(source, parse)
		})
	} else {
		out, err = analyze(source, parse)
	}
	if err != nil {
		return nil, a.fail(res, op, err)
	}

	res.Tokens = out.tokens
	res.Program = out.program
	if out.symbols != nil {
		res.Symbols = append([]string(nil), out.symbols...)
	}

	res.Duration = time.Since(start)
	a.logger.Debug("Analysis completed",
		"request_id", res.RequestID,
		"op", op,
		"tokens", len(res.Tokens),
		"cached", cached,
		"duration", res.Duration,
	)

	return res, nil
}

// analyze runs the lexer and, when parse is set, a fresh parser
func analyze(source string, parse bool) (outcome, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return outcome{}, err
	}
	out := outcome{tokens: tokens}

	if parse {
		p := parser.New(tokens)
		program, err := p.Parse()
		if err != nil {
			return outcome{}, err
		}
		out.program = program
		out.symbols = p.Symbols()
	}
	return out, nil
}

func (a *Analyzer) fail(res *Result, op string, err error) error {
	a.logger.Debug("Analysis rejected",
		"request_id", res.RequestID,
		"op", op,
		"kind", KindOf(err),
		"error", err.Error(),
	)
	return err
}

type ctxKey struct{}

// WithRequestID attaches a request id that the next analysis will report
// instead of generating one
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
