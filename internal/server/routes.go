package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frankyzip/moduspractica/internal/engine"
	"github.com/frankyzip/moduspractica/internal/flags"
	"github.com/frankyzip/moduspractica/internal/retention"
	"github.com/frankyzip/moduspractica/internal/session"
	"github.com/frankyzip/moduspractica/internal/store"
)

func (s *Server) handleListPieces(w http.ResponseWriter, r *http.Request) {
	pieces, err := s.db.ListPieces()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	out := make([]map[string]any, 0, len(pieces))
	for i := range pieces {
		p := &pieces[i]
		entry := map[string]any{
			"id":        p.ID,
			"title":     p.Title,
			"composer":  p.Composer,
			"is_paused": p.CurrentlyPaused(now),
		}
		if p.PauseUntil != nil {
			entry["pause_until"] = p.PauseUntil.Format("2006-01-02")
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"pieces": out})
}

func (s *Server) handleCreatePiece(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Composer string `json:"composer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}

	p := &store.Piece{Title: req.Title, Composer: req.Composer}
	if err := s.db.CreatePiece(p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

// handleCreateSection creates a bar section and onboards it: the response
// carries the section id and its first scheduled session.
func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	pieceID := chi.URLParam(r, "pieceID")

	var req struct {
		BarRange    string `json:"bar_range"`
		Description string `json:"description"`
		TargetReps  int    `json:"target_reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.BarRange == "" {
		writeError(w, http.StatusBadRequest, "bar_range required")
		return
	}

	if _, err := s.db.GetPiece(pieceID); err != nil {
		writeStoreError(w, err)
		return
	}

	sec := &store.Section{
		PieceID:     pieceID,
		BarRange:    req.BarRange,
		Description: req.Description,
		TargetReps:  req.TargetReps,
	}
	if err := s.db.CreateSection(sec); err != nil {
		writeStoreError(w, err)
		return
	}

	first, err := s.engine.OnboardSection(pieceID, sec.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      sec.ID,
		"session": first,
	})
}

func (s *Server) handlePausePiece(w http.ResponseWriter, r *http.Request) {
	pieceID := chi.URLParam(r, "pieceID")

	var req struct {
		Until string `json:"until"` // YYYY-MM-DD
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	until, err := time.Parse("2006-01-02", req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "until must be YYYY-MM-DD")
		return
	}
	// The pause collaborator contract: the date must lie in the future.
	if !until.After(time.Now()) {
		writeError(w, http.StatusBadRequest, "until must be in the future")
		return
	}

	if err := s.engine.PausePiece(pieceID, until); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) handleResumePiece(w http.ResponseWriter, r *http.Request) {
	pieceID := chi.URLParam(r, "pieceID")
	if err := s.engine.ResumePiece(pieceID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.engine.Sessions.All()
	if pieceID := r.URL.Query().Get("piece"); pieceID != "" {
		sessions = s.engine.Sessions.ForPiece(pieceID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleDueSessions(w http.ResponseWriter, r *http.Request) {
	due := s.engine.DueToday()
	if due == nil {
		due = []session.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": due})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Difficulty retention.Difficulty `json:"difficulty"`
		Quality    retention.Quality    `json:"quality"`
		Notes      string               `json:"notes"`
		Minutes    int                  `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	fb := retention.Feedback{
		Difficulty: req.Difficulty,
		Quality:    req.Quality,
		Notes:      req.Notes,
	}
	next, err := s.engine.RecordOutcome(sessionID, fb, req.Minutes)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound), errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, engine.ErrSessionFinished):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "completed",
		"next":   next,
	})
}

func (s *Server) handleGetFlags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.flags.Snapshot())
}

func (s *Server) handleConfigureFlags(w http.ResponseWriter, r *http.Request) {
	var u flags.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	applied := s.flags.Configure(u)
	writeJSON(w, http.StatusOK, applied)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidTargetReps), errors.Is(err, store.ErrPauseDateRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
