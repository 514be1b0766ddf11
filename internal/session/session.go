package session

import (
	"strings"
	"time"

	"github.com/frankyzip/moduspractica/internal/retention"
)

// Status is the lifecycle state of a scheduled session. Stored as text so
// the persisted document stays hand-readable; comparisons are
// case-insensitive because historical documents carried mixed casing.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCanceled  Status = "Canceled"
)

// Is reports whether s equals other, ignoring case.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// terminal reports whether no transition may leave this status.
func (s Status) terminal() bool {
	return s.Is(StatusCompleted) || s.Is(StatusCanceled)
}

// Completion reasons drawn from the closed set used by the feedback flow.
const (
	ReasonTargetReached  = "TargetReached"
	ReasonFrustration    = "Frustration"
	ReasonTimeConstraint = "TimeConstraint"
)

// Session is one scheduled practice unit for a bar section. PieceTitle and
// BarRange are denormalized display copies; PieceID and SectionID are the
// authoritative references. ScheduledDate is always day-normalized on write.
type Session struct {
	ID                string               `json:"id"`
	PieceID           string               `json:"piece_id"`
	SectionID         string               `json:"section_id"`
	PieceTitle        string               `json:"piece_title"`
	BarRange          string               `json:"bar_range"`
	ScheduledDate     time.Time            `json:"scheduled_date"`
	EstimatedDuration int                  `json:"estimated_duration"` // minutes
	Difficulty        retention.Difficulty `json:"difficulty"`
	Tau               float64              `json:"tau"` // decay constant in days at scheduling time
	Status            Status               `json:"status"`
	CompletionDate    *time.Time           `json:"completion_date,omitempty"`
	CompletionReason  string               `json:"completion_reason,omitempty"`
}
