// Package httpapi exposes the dialogue engine over HTTP.
//
// The API surface is deliberately small:
//
//	POST /v1/turn  — process one user utterance within a session
//	GET  /healthz  — liveness probe
//	GET  /readyz   — readiness probe
//	GET  /metrics  — Prometheus scrape endpoint
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vorder/vorder/internal/dialogue"
	"github.com/vorder/vorder/internal/health"
	"github.com/vorder/vorder/internal/observe"
)

// maxBodyBytes bounds a /v1/turn request body. Utterances are short; anything
// past this is a client error, not a conversation.
const maxBodyBytes = 16 << 10

// TurnRequest is the JSON body for POST /v1/turn.
type TurnRequest struct {
	// SessionID identifies the conversation. When empty the server starts a
	// new session and returns its ID in the response.
	SessionID string `json:"session_id,omitempty"`

	// Text is the user's utterance.
	Text string `json:"text"`
}

// TurnResponse is the JSON body returned from POST /v1/turn.
type TurnResponse struct {
	SessionID string `json:"session_id"`
	dialogue.TurnResult
}

// errorResponse is the JSON body for client and server errors.
type errorResponse struct {
	Error string `json:"error"`
}

// Server routes HTTP requests to the dialogue engine.
type Server struct {
	engine  *dialogue.Engine
	health  *health.Handler
	metrics *observe.Metrics
	logger  *slog.Logger
	newID   func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics used by the request middleware. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a Server around the given engine. The health handler carries
// the readiness checks for the server's dependencies; pass health.New() when
// there are none.
func New(engine *dialogue.Engine, h *health.Handler, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		health: h,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the full route table wrapped in the telemetry middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/turn", s.handleTurn)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)
	return observe.Middleware(s.metrics)(mux)
}

// handleTurn handles POST /v1/turn.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}

	res, err := s.engine.ProcessTurn(r.Context(), sessionID, req.Text)
	if err != nil {
		s.logger.Error("turn failed", "session", sessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, TurnResponse{SessionID: sessionID, TurnResult: res})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}
