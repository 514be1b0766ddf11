package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Section is a bar range within a piece, tracked independently for
// scheduling. Target repetitions are bounded to [1, 12] at the boundary;
// the decay math never re-validates them.
type Section struct {
	ID            string
	PieceID       string
	BarRange      string
	Description   string
	TargetReps    int
	CompletedReps int
}

// CreateSection inserts a new section. A missing ID is generated.
// Target repetitions outside [1, 12] are rejected before touching the
// database.
func (db *DB) CreateSection(s *Section) error {
	if s.TargetReps < 1 || s.TargetReps > 12 {
		return ErrInvalidTargetReps
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CompletedReps < 0 {
		s.CompletedReps = 0
	}

	_, err := db.Exec(`
		INSERT INTO sections (id, piece_id, bar_range, description, target_reps, completed_reps)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.PieceID, s.BarRange, s.Description, s.TargetReps, s.CompletedReps)
	if err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// GetSection returns a section by id, or ErrNotFound.
func (db *DB) GetSection(id string) (*Section, error) {
	var s Section
	err := db.QueryRow(`
		SELECT id, piece_id, bar_range, description, target_reps, completed_reps
		FROM sections WHERE id = ?
	`, id).Scan(&s.ID, &s.PieceID, &s.BarRange, &s.Description, &s.TargetReps, &s.CompletedReps)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}
	return &s, nil
}

// ListSections returns a piece's sections in bar-range order.
func (db *DB) ListSections(pieceID string) ([]Section, error) {
	rows, err := db.Query(`
		SELECT id, piece_id, bar_range, description, target_reps, completed_reps
		FROM sections WHERE piece_id = ? ORDER BY bar_range
	`, pieceID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.PieceID, &s.BarRange, &s.Description, &s.TargetReps, &s.CompletedReps); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// AddCompletedReps adds n to a section's completed repetition count,
// clamping the result at zero.
func (db *DB) AddCompletedReps(id string, n int) error {
	result, err := db.Exec(`
		UPDATE sections SET completed_reps = MAX(0, completed_reps + ?) WHERE id = ?
	`, n, id)
	if err != nil {
		return fmt.Errorf("add completed reps: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
