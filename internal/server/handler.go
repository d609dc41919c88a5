package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/core/health"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/render"
)

// AnalyzeRequest is the body of tokenize and parse requests
type AnalyzeRequest struct {
	Source string `json:"source"`
}

// ErrorResponse represents an error that was not caused by the source text
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// InfoResponse describes the API
type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// Handler serves the REST API
type Handler struct {
	analyzer *analyzer.Analyzer
	health   *health.Registry
	version  string
	maxBody  int64
	cors     CORSConfig
	logger   *logging.Logger
}

// NewHandler creates a new API handler
func NewHandler(a *analyzer.Analyzer, registry *health.Registry, cfg Config) *Handler {
	return &Handler{
		analyzer: a,
		health:   registry,
		version:  cfg.Version,
		maxBody:  cfg.MaxRequestSize,
		cors:     cfg.CORS,
		logger:   logging.New("lexan-api"),
	}
}

// ServeHTTP routes API requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setCORSHeaders(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Route requests
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		h.handleRoot(w, r)
	case "health":
		h.handleHealth(w, r)
	case "tokenize":
		h.handleTokenize(w, r)
	case "parse":
		h.handleParse(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown endpoint", r.URL.Path)
	}
}

func (h *Handler) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if !h.cors.Enabled {
		return
	}
	origin := r.Header.Get("Origin")
	allowed := len(h.cors.AllowedOrigins) == 0
	for _, o := range h.cors.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	h.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "lexan",
		Version: h.version,
		Endpoints: []string{
			"POST /api/v1/tokenize",
			"POST /api/v1/parse",
			"GET /api/v1/ws",
			"GET /health",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	report := h.health.CheckWithTimeout(2 * time.Second)

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx := analyzer.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
	res, err := h.analyzer.Tokenize(ctx, req.Source)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, render.ToMap(res))
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx := analyzer.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
	res, err := h.analyzer.Parse(ctx, req.Source)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	body := render.ToMap(res).(map[string]any)
	body["tuple"] = render.Tuple(res.Program)
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, bool) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return nil, false
	}

	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large", "")
			return nil, false
		}
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return nil, false
	}
	return &req, true
}

// writeAnalysisError maps analysis errors to 422 and everything else to
// the matching transport status
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case analyzer.IsAnalysisError(err):
		h.writeJSON(w, http.StatusUnprocessableEntity, render.ErrorMap(err))
	case errors.Is(err, analyzer.ErrInputTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "input_too_large", "Source exceeds maximum length", err.Error())
	default:
		h.logger.Error("Analysis failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "Analysis failed", "")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	h.writeJSON(w, status, resp)
}
