package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/render"
)

const wsReadTimeout = 120 * time.Second

// WebSocketHandler handles WebSocket connections for interactive analysis.
// Messages on one connection are answered in order.
type WebSocketHandler struct {
	analyzer *analyzer.Analyzer
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(a *analyzer.Analyzer) *WebSocketHandler {
	return &WebSocketHandler{
		analyzer: a,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local development
			},
		},
		logger: logging.New("lexan-websocket"),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	ID      string          `json:"id,omitempty"` // Echoed in the response
	Type    string          `json:"type"`         // "tokenize", "parse", "ping"
	Payload json.RawMessage `json:"payload"`      // Message-specific payload
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`    // "result", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSErrorPayload represents a protocol error payload
type WSErrorPayload struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	// Allow the source limit plus JSON framing
	conn.SetReadLimit(int64(h.analyzer.MaxInputLength())*2 + 4096)

	// Set read deadline for ping/pong
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	// Read messages in a loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.sendResponse(conn, WSResponse{ID: msg.ID, Type: "pong", Payload: nil})

		case "tokenize", "parse":
			var payload AnalyzeRequest
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, msg.ID, "invalid_payload", "Invalid analysis payload")
				continue
			}
			h.handleAnalysis(ctx, conn, msg, payload)

		default:
			h.sendError(conn, msg.ID, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

// handleAnalysis runs one analysis and sends its result or error
func (h *WebSocketHandler) handleAnalysis(ctx context.Context, conn *websocket.Conn, msg WSMessage, payload AnalyzeRequest) {
	var (
		res *analyzer.Result
		err error
	)
	if msg.Type == "tokenize" {
		res, err = h.analyzer.Tokenize(ctx, payload.Source)
	} else {
		res, err = h.analyzer.Parse(ctx, payload.Source)
	}

	if err != nil {
		if analyzer.IsAnalysisError(err) {
			h.sendResponse(conn, WSResponse{ID: msg.ID, Type: "error", Payload: render.ErrorMap(err)})
			return
		}
		h.sendError(conn, msg.ID, "analysis_failed", err.Error())
		return
	}

	body := render.ToMap(res).(map[string]any)
	if res.Program != nil {
		body["tuple"] = render.Tuple(res.Program)
	}
	h.sendResponse(conn, WSResponse{ID: msg.ID, Type: "result", Payload: body})
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

// sendError sends a protocol error response via WebSocket
func (h *WebSocketHandler) sendError(conn *websocket.Conn, id, code, message string) {
	h.sendResponse(conn, WSResponse{
		ID:   id,
		Type: "error",
		Payload: WSErrorPayload{
			Kind:    "protocol",
			Code:    code,
			Message: message,
		},
	})
}
