package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/frankyzip/moduspractica/internal/engine"
	"github.com/frankyzip/moduspractica/internal/flags"
	"github.com/frankyzip/moduspractica/internal/store"
)

// Server is the moduspractica HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	flags   *flags.Registry
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the given engine.
func New(eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      eng.DB,
		engine:  eng,
		flags:   eng.Flags,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/pieces", s.handleListPieces)
		r.Post("/pieces", s.handleCreatePiece)
		r.Post("/pieces/{pieceID}/sections", s.handleCreateSection)
		r.Post("/pieces/{pieceID}/pause", s.handlePausePiece)
		r.Post("/pieces/{pieceID}/resume", s.handleResumePiece)

		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/due", s.handleDueSessions)
		r.Post("/sessions/{sessionID}/complete", s.handleCompleteSession)

		r.Get("/flags", s.handleGetFlags)
		r.Post("/flags", s.handleConfigureFlags)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
