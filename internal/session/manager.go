// Package session owns the authoritative set of scheduled practice sessions
// for a profile: creation, status transitions, queries, and persistence to a
// profile-scoped JSON document. Mutations never persist implicitly — callers
// batch their changes and invoke Save once, so multi-session operations land
// atomically.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/frankyzip/moduspractica/internal/dateutil"
	"github.com/frankyzip/moduspractica/internal/retention"
)

// ErrNotFound is returned when a session id has no entry in the set.
var ErrNotFound = fmt.Errorf("session: not found")

// Manager holds the in-memory session set for one profile. It is owned by a
// single caller context; it does no internal locking.
type Manager struct {
	path     string
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates a manager persisting to the given document path.
func NewManager(path string) *Manager {
	return &Manager{
		path:     path,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Path returns the document path this manager persists to.
func (m *Manager) Path() string {
	return m.path
}

// DefaultPath returns the session document path for a profile under dataDir:
// <dataDir>/profiles/<profile>/sessions.json.
func DefaultPath(dataDir, profile string) string {
	return filepath.Join(dataDir, "profiles", profile, "sessions.json")
}

// document is the on-disk shape. Unknown fields in older or hand-edited
// documents are ignored on load.
type document struct {
	Sessions []Session `json:"sessions"`
}

// Load reads the session document, replacing the in-memory set. A missing or
// unreadable document initializes an empty set — first run is not an error.
// Returns the number of sessions loaded.
func (m *Manager) Load() int {
	m.sessions = make(map[string]*Session)

	data, err := os.ReadFile(m.path)
	if err != nil {
		return 0
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0
	}
	for i := range doc.Sessions {
		s := doc.Sessions[i]
		if s.ID == "" {
			continue
		}
		s.ScheduledDate = dateutil.Normalize(s.ScheduledDate)
		if s.Status == "" {
			s.Status = StatusScheduled
		}
		m.sessions[s.ID] = &s
	}
	return len(m.sessions)
}

// Save writes the session document. Write failures propagate: silent loss of
// scheduling state is unacceptable. The write goes through a temp file and
// rename so a crash never leaves a torn document.
func (m *Manager) Save() error {
	doc := document{Sessions: m.All()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace sessions: %w", err)
	}
	return nil
}

// ScheduleInput carries the fields for a new Scheduled session.
type ScheduleInput struct {
	PieceID           string
	SectionID         string
	PieceTitle        string
	BarRange          string
	Date              time.Time
	EstimatedDuration int
	Difficulty        retention.Difficulty
	Tau               float64
}

// Schedule creates a new Scheduled session from the input and adds it to the
// set. The scheduled date is day-normalized on write.
func (m *Manager) Schedule(in ScheduleInput) *Session {
	s := &Session{
		ID:                uuid.NewString(),
		PieceID:           in.PieceID,
		SectionID:         in.SectionID,
		PieceTitle:        in.PieceTitle,
		BarRange:          in.BarRange,
		ScheduledDate:     dateutil.Normalize(in.Date),
		EstimatedDuration: in.EstimatedDuration,
		Difficulty:        in.Difficulty,
		Tau:               in.Tau,
		Status:            StatusScheduled,
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with the given id, or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// All returns every session, ordered by scheduled date then id.
func (m *Manager) All() []Session {
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DueToday returns the Scheduled sessions whose date equals today. Past-due
// Scheduled sessions stay reachable through All but are not re-surfaced as
// due; due means strict same-day equality.
func (m *Manager) DueToday() []Session {
	today := dateutil.Normalize(m.now())
	var out []Session
	for _, s := range m.All() {
		if s.Status.Is(StatusScheduled) && dateutil.SameDay(s.ScheduledDate, today) {
			out = append(out, s)
		}
	}
	return out
}

// IsDueToday reports whether the session is Scheduled for today.
func (m *Manager) IsDueToday(s Session) bool {
	return s.Status.Is(StatusScheduled) && dateutil.SameDay(s.ScheduledDate, m.now())
}

// ForPiece returns all sessions referencing the given piece.
func (m *Manager) ForPiece(pieceID string) []Session {
	var out []Session
	for _, s := range m.All() {
		if s.PieceID == pieceID {
			out = append(out, s)
		}
	}
	return out
}

// ForSection returns all sessions referencing the given bar section.
func (m *Manager) ForSection(sectionID string) []Session {
	var out []Session
	for _, s := range m.All() {
		if s.SectionID == sectionID {
			out = append(out, s)
		}
	}
	return out
}

// Complete transitions a Scheduled session to Completed, stamping today as
// the completion date. Completing a session already in a terminal state is a
// no-op: Completed history is immutable and Canceled is terminal.
func (m *Manager) Complete(id, reason string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Status.terminal() {
		return s, nil
	}
	done := dateutil.Normalize(m.now())
	s.Status = StatusCompleted
	s.CompletionDate = &done
	s.CompletionReason = reason
	return s, nil
}

// Cancel transitions a session to Canceled. Completed sessions are immutable
// history and are never canceled; canceling an already-Canceled session is a
// no-op.
func (m *Manager) Cancel(id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status.terminal() {
		return nil
	}
	s.Status = StatusCanceled
	return nil
}

// CancelForPiece cancels every non-Completed session for a piece, as one
// in-memory unit. The caller persists afterward with a single Save. Returns
// the number of sessions canceled.
func (m *Manager) CancelForPiece(pieceID string) int {
	n := 0
	for _, s := range m.sessions {
		if s.PieceID != pieceID {
			continue
		}
		if s.Status.terminal() {
			continue
		}
		s.Status = StatusCanceled
		n++
	}
	return n
}
