// Package api implements the REST API for boards, personas, conversations,
// and the response/summary generation endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Anirach/GenSPK-AI-Board/internal/boardroom"
	"github.com/Anirach/GenSPK-AI-Board/internal/buildinfo"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	address      string
	port         int
	store        *store.Store
	orchestrator *boardroom.Orchestrator
	composer     *boardroom.Composer
	logger       *slog.Logger
	server       *http.Server
}

// NewServer creates a new API server.
func NewServer(address string, port int, st *store.Store, orch *boardroom.Orchestrator, comp *boardroom.Composer, logger *slog.Logger) *Server {
	return &Server{
		address:      address,
		port:         port,
		store:        st,
		orchestrator: orch,
		composer:     comp,
		logger:       logger.With("component", "api"),
	}
}

// Handler builds the route table. Exposed separately from Start so tests
// can drive the mux through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Personas
	mux.HandleFunc("POST /v1/personas", s.handlePersonaCreate)
	mux.HandleFunc("GET /v1/personas", s.handlePersonaList)
	mux.HandleFunc("GET /v1/personas/{id}", s.handlePersonaGet)
	mux.HandleFunc("PUT /v1/personas/{id}", s.handlePersonaUpdate)
	mux.HandleFunc("DELETE /v1/personas/{id}", s.handlePersonaDelete)

	// Boards and rosters
	mux.HandleFunc("POST /v1/boards", s.handleBoardCreate)
	mux.HandleFunc("GET /v1/boards", s.handleBoardList)
	mux.HandleFunc("GET /v1/boards/{id}", s.handleBoardGet)
	mux.HandleFunc("PUT /v1/boards/{id}", s.handleBoardUpdate)
	mux.HandleFunc("DELETE /v1/boards/{id}", s.handleBoardDelete)
	mux.HandleFunc("POST /v1/boards/{id}/personas/{personaId}", s.handleBoardPersonaAdd)
	mux.HandleFunc("DELETE /v1/boards/{id}/personas/{personaId}", s.handleBoardPersonaRemove)

	// Persona response generation
	mux.HandleFunc("POST /v1/boards/{id}/generate", s.handleGenerate)

	// Conversations and messages
	mux.HandleFunc("POST /v1/conversations", s.handleConversationCreate)
	mux.HandleFunc("GET /v1/conversations", s.handleConversationList)
	mux.HandleFunc("GET /v1/conversations/{id}", s.handleConversationGet)
	mux.HandleFunc("PUT /v1/conversations/{id}", s.handleConversationUpdate)
	mux.HandleFunc("DELETE /v1/conversations/{id}", s.handleConversationDelete)
	mux.HandleFunc("GET /v1/conversations/{id}/messages", s.handleMessageList)
	mux.HandleFunc("POST /v1/conversations/{id}/messages", s.handleMessageAdd)
	mux.HandleFunc("DELETE /v1/conversations/{id}/messages/{messageId}", s.handleMessageDelete)

	// Conversation summary
	mux.HandleFunc("POST /v1/conversations/{id}/summary", s.handleSummary)

	// Health endpoints
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation requests can be slow
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting API server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"name":    "boardroomd",
		"version": buildinfo.Version,
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// respond writes a success envelope. Encode errors typically mean the
// client disconnected mid-response; logged at debug, not actionable.
func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.logger.Debug("failed to write JSON response", "error", err)
	}
}

// errorResponse writes a failure envelope with a human-readable message.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message}); err != nil {
		s.logger.Debug("failed to write JSON response", "error", err)
	}
}

// coreError maps boardroom error taxonomy onto HTTP responses.
func (s *Server) coreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, boardroom.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, boardroom.ErrForbidden):
		s.errorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, boardroom.ErrValidation):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, boardroom.ErrExternalService):
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("internal error", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// callerID extracts the authenticated user id. Authentication itself is
// handled upstream; the gateway injects the identity as a header.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// requireCaller writes a 401 and returns "" when no identity header is set.
func (s *Server) requireCaller(w http.ResponseWriter, r *http.Request) string {
	id := callerID(r)
	if id == "" {
		s.errorResponse(w, http.StatusUnauthorized, "missing X-User-ID header")
	}
	return id
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
