// Package api exposes the pipeline over HTTP: base-result rendering,
// variant batch generation with incremental paging, and deep-link
// resolution.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/pipeline"
	"github.com/motifhq/motif/pkg/session"
)

// batchTTL bounds how long an unfinished pager is kept in memory.
const batchTTL = 30 * time.Minute

// Server routes pipeline requests.
type Server struct {
	runner   *pipeline.Runner
	sessions session.Store
	logger   *log.Logger

	mu      sync.Mutex
	batches map[string]*batch
}

type batch struct {
	pager   *pipeline.Pager
	text    string
	expires time.Time
}

// NewServer creates the API server around a pipeline runner.
func NewServer(runner *pipeline.Runner, sessions session.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &Server{
		runner:   runner,
		sessions: sessions,
		logger:   logger,
		batches:  make(map[string]*batch),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/batches", s.handleCreateBatch)
		r.Get("/batches/{id}/next", s.handleNextPage)
		r.Get("/link", s.handleDeepLink)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
	})
	return r
}

// ctxKeyRequestID carries the per-request identifier.
type ctxKeyRequestID struct{}

// requestID tags each request with a uuid, honoring an incoming header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		id, _ := r.Context().Value(ctxKeyRequestID{}).(string)
		s.logger.Debug("request",
			"id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// writeJSON emits a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor, errors.ErrCodeInvalidTilt,
		errors.ErrCodeInvalidTemplate, errors.ErrCodeInvalidFrame, errors.ErrCodeMalformedDocument,
		errors.ErrCodeZoneNotFound:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTemplateNotFound,
		errors.ErrCodeTextureNotFound, errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeFetch, errors.ErrCodeTimeout, errors.ErrCodeMeasurementTimeout:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}

// storeBatch registers a pager under a fresh batch ID, evicting stale ones.
func (s *Server) storeBatch(p *pipeline.Pager, text string) string {
	id := uuid.NewString()
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.batches {
		if now.After(b.expires) {
			delete(s.batches, key)
		}
	}
	s.batches[id] = &batch{pager: p, text: text, expires: now.Add(batchTTL)}
	return id
}

func (s *Server) lookupBatch(id string) (*batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok || time.Now().After(b.expires) {
		return nil, false
	}
	return b, true
}
