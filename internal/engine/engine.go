// Package engine orchestrates the practice scheduling loop: feedback from a
// finished session flows through the retention model into a recomputed tau
// and a successor session, and pause events on a piece retire its pending
// schedule. The engine owns no state of its own — the library store, the
// session manager, and the flag registry are injected at construction.
package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/frankyzip/moduspractica/internal/dateutil"
	"github.com/frankyzip/moduspractica/internal/flags"
	"github.com/frankyzip/moduspractica/internal/retention"
	"github.com/frankyzip/moduspractica/internal/session"
	"github.com/frankyzip/moduspractica/internal/store"
)

// ErrSessionFinished is returned when an outcome is recorded against a
// session already in a terminal state.
var ErrSessionFinished = errors.New("engine: session already completed or canceled")

// Engine ties the library, session manager, retention model, and flag
// registry together.
type Engine struct {
	DB       *store.DB
	Sessions *session.Manager
	Flags    *flags.Registry

	// Personalization inputs consumed by the optional tau layers. Both are
	// profile-level settings; the layers ignore them unless enabled.
	Age         retention.AgeBracket
	Calibration float64
}

// New creates an Engine.
func New(db *store.DB, sessions *session.Manager, reg *flags.Registry) *Engine {
	return &Engine{DB: db, Sessions: sessions, Flags: reg}
}

// OnboardSection creates the first scheduled session for a section: due
// tomorrow, carrying the initial decay constant for its repetition target.
// Unknown piece or section ids are reported to the caller.
func (e *Engine) OnboardSection(pieceID, sectionID string) (*session.Session, error) {
	piece, err := e.DB.GetPiece(pieceID)
	if err != nil {
		return nil, fmt.Errorf("onboard section: %w", err)
	}
	sec, err := e.DB.GetSection(sectionID)
	if err != nil {
		return nil, fmt.Errorf("onboard section: %w", err)
	}
	if sec.PieceID != piece.ID {
		return nil, fmt.Errorf("onboard section: section %s does not belong to piece %s: %w",
			sectionID, pieceID, store.ErrNotFound)
	}

	tau := retention.InitialTau(sec.TargetReps)
	s := e.Sessions.Schedule(session.ScheduleInput{
		PieceID:           piece.ID,
		SectionID:         sec.ID,
		PieceTitle:        piece.Title,
		BarRange:          sec.BarRange,
		Date:              dateutil.AddDays(time.Now(), 1),
		EstimatedDuration: 10,
		Difficulty:        retention.Moderate,
		Tau:               tau,
	})
	if err := e.Sessions.Save(); err != nil {
		return nil, fmt.Errorf("onboard section: %w", err)
	}
	e.diag("onboarded section %s (%s): tau=%.2f due=%s", sec.ID, sec.BarRange, tau,
		s.ScheduledDate.Format("2006-01-02"))
	return s, nil
}

// RecordOutcome applies user feedback for a practiced session: the session
// is completed with the derived classification as its reason, tau is
// recomputed under the current flag snapshot, and a successor session is
// scheduled at the new retention horizon. All mutations persist as one
// batch at the end.
func (e *Engine) RecordOutcome(sessionID string, fb retention.Feedback, minutes int) (*session.Session, error) {
	s, err := e.Sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	if !s.Status.Is(session.StatusScheduled) {
		return nil, ErrSessionFinished
	}

	sec, err := e.DB.GetSection(s.SectionID)
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}

	out := retention.Evaluate(fb, minutes)
	snap := e.Flags.Snapshot()
	tau := retention.ComputeTau(retention.TauInput{
		PreviousTau:   s.Tau,
		Outcome:       out,
		TargetReps:    sec.TargetReps,
		CompletedReps: sec.CompletedReps,
		Age:           e.Age,
		Calibration:   e.Calibration,
		TauHistory:    e.tauHistory(s.SectionID),
	}, snap.Layers())

	target := retention.TargetRetention(fb.Difficulty)
	due := retention.DueDateFromTau(tau, target, time.Now())

	if _, err := e.Sessions.Complete(s.ID, out.Classification.String()); err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}

	next := e.Sessions.Schedule(session.ScheduleInput{
		PieceID:           s.PieceID,
		SectionID:         s.SectionID,
		PieceTitle:        s.PieceTitle,
		BarRange:          s.BarRange,
		Date:              due,
		EstimatedDuration: minutes,
		Difficulty:        fb.Difficulty,
		Tau:               tau,
	})

	if err := e.DB.AddCompletedReps(sec.ID, out.EstimatedReps); err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	if err := e.Sessions.Save(); err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}

	e.diag("outcome %s: %s/%s -> %s, reps+%d, tau %.2f -> %.2f, due %s",
		s.ID, fb.Difficulty, fb.Quality, out.Classification, out.EstimatedReps,
		s.Tau, tau, due.Format("2006-01-02"))
	return next, nil
}

// PausePiece marks a piece paused until the given date and cancels every
// pending session for it. The cancellations and the schedule write happen as
// one batch; completed history is untouched. Date validation (strictly in
// the future) is the caller's responsibility.
func (e *Engine) PausePiece(pieceID string, until time.Time) error {
	if err := e.DB.PausePiece(pieceID, until); err != nil {
		return fmt.Errorf("pause piece: %w", err)
	}
	n := e.Sessions.CancelForPiece(pieceID)
	if err := e.Sessions.Save(); err != nil {
		return fmt.Errorf("pause piece: %w", err)
	}
	e.diag("paused piece %s until %s, canceled %d sessions", pieceID,
		dateutil.Normalize(until).Format("2006-01-02"), n)
	return nil
}

// ResumePiece clears a piece's pause state. Sections resume scheduling on
// their next onboarding or recorded outcome; canceled sessions stay
// canceled.
func (e *Engine) ResumePiece(pieceID string) error {
	if err := e.DB.ResumePiece(pieceID); err != nil {
		return fmt.Errorf("resume piece: %w", err)
	}
	return nil
}

// DueToday returns the sessions scheduled for the current day.
func (e *Engine) DueToday() []session.Session {
	return e.Sessions.DueToday()
}

// tauHistory collects the tau values of a section's completed sessions,
// oldest first. The adaptive and trend layers read this as the section's
// recent memory trajectory.
func (e *Engine) tauHistory(sectionID string) []float64 {
	var hist []float64
	for _, s := range e.Sessions.ForSection(sectionID) {
		if s.Status.Is(session.StatusCompleted) {
			hist = append(hist, s.Tau)
		}
	}
	return hist
}

// diag emits a diagnostic line if the flag registry admits it. The quota
// bounds log volume only; scheduling never depends on it.
func (e *Engine) diag(format string, args ...any) {
	if e.Flags != nil && e.Flags.ShouldLogDiagnostic() {
		log.Printf(format, args...)
	}
}
