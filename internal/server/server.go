// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     server
// Description: HTTP and WebSocket front end for the analyzer
// Author:      Mike Stoffels
// Created:     2026-10-09
// License:     MIT
// ============================================================================

package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/core/health"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/core/version"
)

// canary is parsed by the analyzer health check
const canary = "x = 1 + 2 * 3; x ^ 2"

// Server is the lexan HTTP server
type Server struct {
	httpServer *http.Server
	handler    *Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config

	mu       sync.Mutex
	listener net.Listener
}

// Config holds server configuration
type Config struct {
	Host           string
	HTTPPort       int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Version        string
	MaxRequestSize int64
	CORS           CORSConfig
}

// CORSConfig controls cross-origin response headers
type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		HTTPPort:       8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		Version:        version.Server,
		MaxRequestSize: 1 << 20,
	}
}

// New creates a new lexan server around a
func New(cfg Config, a *analyzer.Analyzer) (*Server, error) {
	if a == nil {
		return nil, errors.New("server: analyzer is required")
	}
	logger := logging.New("lexan-server")

	// Create health registry
	healthRegistry := health.NewRegistry("lexan", cfg.Version)
	healthRegistry.Register(health.AlwaysHealthy("http"))
	healthRegistry.RegisterFunc("analyzer", func(ctx context.Context) health.CheckResult {
		// uncached, so health checks do not show up in the cache stats
		program, err := analyzer.Parse(canary)
		if err != nil {
			return health.CheckResult{
				Name:    "analyzer",
				Status:  health.StatusUnhealthy,
				Message: err.Error(),
			}
		}
		result := health.CheckResult{
			Name:    "analyzer",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("parsed %d statements", len(program.Statements)),
		}
		if stats, ok := a.CacheStats(); ok {
			result.Details = map[string]interface{}{
				"cache_size":     stats.Size,
				"cache_hits":     stats.Hits,
				"cache_misses":   stats.Misses,
				"cache_hit_rate": stats.HitRate(),
			}
		}
		return result
	})

	h := NewHandler(a, healthRegistry, cfg)
	wsHandler := NewWebSocketHandler(a)

	mux := http.NewServeMux()

	// WebSocket route
	mux.Handle("/api/v1/ws", wsHandler)

	// API routes
	mux.Handle("/", h)
	mux.Handle("/api/", h)
	mux.Handle("/api/v1/", h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    h,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket upgrades
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// Handler returns the root HTTP handler including middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until the server stops
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("Starting lexan HTTP server", "address", ln.Addr().String())

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.Serve(ln); err != nil {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping lexan HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the listening address, or the configured one before
// the server has started
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
