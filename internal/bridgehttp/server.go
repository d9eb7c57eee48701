// Package bridgehttp exposes the bridge coordinator over a small HTTP
// surface so a supervising process can drive a long-lived bridge
// without linking against it directly.
package bridgehttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/thebtf/auto-memory-bridge/internal/bridge"
)

// DefaultRequestTimeout bounds sync/import requests, which walk the
// Memory Directory and may hit the Store.
const DefaultRequestTimeout = 30 * time.Second

// Server wires a Bridge onto a chi router.
type Server struct {
	router *chi.Mux
	bridge *bridge.Bridge
	log    zerolog.Logger
}

// New builds a Server for b. Routes are mounted immediately.
func New(b *bridge.Bridge, log zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		bridge: b,
		log:    log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the underlying handler, for use with http.Server or
// httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(securityHeaders)
	s.router.Use(middleware.Timeout(DefaultRequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/sync", s.handleSync)
	s.router.Post("/import", s.handleImport)
	s.router.Post("/curate", s.handleCurate)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bridge.GetStatus())
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.bridge.SyncToAutoMemory(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("sync request failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.bridge.ImportFromAutoMemory(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("import request failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCurate(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.CurateIndex(); err != nil {
		s.log.Error().Err(err).Msg("curate request failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.bridge.GetStatus())
}

// securityHeaders adds the baseline hardening headers every bridge
// response carries, since the server normally listens on localhost
// only but still faces whatever the agent runtime's HTTP client does.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
