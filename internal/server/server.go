// Package server exposes the knowledge base over HTTP. Every response is a
// JSON envelope with either a data or an error member; errors carry a short
// title and a human-readable message.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgracey/lattice/internal/apperr"
	"github.com/sgracey/lattice/internal/store"
)

// Server handles HTTP requests against one Store.
type Server struct {
	store  *store.Store
	logger zerolog.Logger
	mux    *http.ServeMux
}

// New builds a Server with its routes registered.
func New(st *store.Store, logger zerolog.Logger) *Server {
	s := &Server{store: st, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/objects", s.handleListObjects)
	s.mux.HandleFunc("POST /api/objects", s.handleCreateObject)
	s.mux.HandleFunc("GET /api/objects/{id}", s.handleGetObject)
	s.mux.HandleFunc("DELETE /api/objects/{id}", s.handleDeleteObject)
	s.mux.HandleFunc("POST /api/objects/{id}/rename", s.handleRenameObject)
	s.mux.HandleFunc("POST /api/objects/{id}/meta", s.handleUpdateObjectMeta)
	s.mux.HandleFunc("POST /api/objects/{id}/properties/{propId}", s.handleSaveProperty)

	s.mux.HandleFunc("GET /api/properties/{id}/changes", s.handleListChanges)

	s.mux.HandleFunc("GET /api/classes", s.handleListClasses)
	s.mux.HandleFunc("POST /api/classes", s.handleCreateClass)
	s.mux.HandleFunc("POST /api/classes/{id}", s.handleUpdateClass)
	s.mux.HandleFunc("DELETE /api/classes/{id}", s.handleDeleteClass)
	s.mux.HandleFunc("GET /api/classes/{id}/properties", s.handleListClassProps)
	s.mux.HandleFunc("POST /api/classes/{id}/properties", s.handleAddClassProp)
	s.mux.HandleFunc("DELETE /api/classes/{id}/properties/{propId}", s.handleDeleteClassProp)

	s.mux.HandleFunc("GET /api/search", s.handleSearch)

	s.mux.HandleFunc("POST /api/files", s.handleUploadFile)
	s.mux.HandleFunc("GET /api/files/{id}", s.handleDownloadFile)
	s.mux.HandleFunc("DELETE /api/files/{id}", s.handleDeleteFile)

	s.mux.HandleFunc("GET /api/directories", s.handleListDirectories)
	s.mux.HandleFunc("POST /api/directories", s.handleCreateDirectory)
	s.mux.HandleFunc("DELETE /api/directories/{id}", s.handleDeleteDirectory)

	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

// ServeHTTP dispatches through the request logger.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// errorBody is the error member of the response envelope.
type errorBody struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps an error onto the envelope. Application errors keep their
// title and message; anything else is masked as an internal error so storage
// details never leak to the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	body := errorBody{Title: "Internal error", Message: "something went wrong"}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &appErr):
		body = errorBody{Title: appErr.Title, Message: appErr.Message}
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		body = errorBody{Title: "Not found", Message: "no such record"}
		status = http.StatusNotFound
	default:
		s.logger.Error().Err(err).Msg("internal error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Error: &body}); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode error response")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, apperr.New("Malformed request", "request body is not valid JSON: %v", err))
		return false
	}
	return true
}
