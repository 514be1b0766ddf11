package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/frankyzip/moduspractica/internal/dateutil"
)

// Piece is a music piece in the library. It owns its sections; scheduled
// sessions hold only a back-reference to its id.
type Piece struct {
	ID         string
	Title      string
	Composer   string
	CreatedAt  int64 // unix millis
	IsPaused   bool
	PauseUntil *time.Time
}

// CurrentlyPaused reports whether the piece is paused as of now: the pause
// flag is set and the pause-until day has not yet passed (inclusive).
func (p *Piece) CurrentlyPaused(now time.Time) bool {
	if !p.IsPaused || p.PauseUntil == nil {
		return false
	}
	return !dateutil.Normalize(*p.PauseUntil).Before(dateutil.Normalize(now))
}

// CreatePiece inserts a new piece. A missing ID is generated.
func (db *DB) CreatePiece(p *Piece) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}

	_, err := db.Exec(`
		INSERT INTO pieces (id, title, composer, created_at, is_paused, pause_until)
		VALUES (?, ?, ?, ?, 0, NULL)
	`, p.ID, p.Title, p.Composer, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert piece: %w", err)
	}
	return nil
}

// GetPiece returns a piece by id, or ErrNotFound.
func (db *DB) GetPiece(id string) (*Piece, error) {
	row := db.QueryRow(`
		SELECT id, title, composer, created_at, is_paused, pause_until
		FROM pieces WHERE id = ?
	`, id)
	return scanPiece(row)
}

// ListPieces returns all pieces, newest first.
func (db *DB) ListPieces() ([]Piece, error) {
	rows, err := db.Query(`
		SELECT id, title, composer, created_at, is_paused, pause_until
		FROM pieces ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	defer rows.Close()

	var pieces []Piece
	for rows.Next() {
		var p Piece
		var paused int
		var until sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Title, &p.Composer, &p.CreatedAt, &paused, &until); err != nil {
			return nil, fmt.Errorf("scan piece: %w", err)
		}
		p.IsPaused = paused != 0
		if until.Valid {
			t := dateutil.Normalize(time.UnixMilli(until.Int64))
			p.PauseUntil = &t
		}
		pieces = append(pieces, p)
	}
	return pieces, rows.Err()
}

// PausePiece sets the pause state. The zero time is rejected: a paused piece
// always carries a pause-until date. Validating that the date lies in the
// future is the caller's responsibility.
func (db *DB) PausePiece(id string, until time.Time) error {
	if until.IsZero() {
		return ErrPauseDateRequired
	}
	day := dateutil.Normalize(until)
	result, err := db.Exec(`
		UPDATE pieces SET is_paused = 1, pause_until = ? WHERE id = ?
	`, day.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("pause piece: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ResumePiece clears the pause state.
func (db *DB) ResumePiece(id string) error {
	result, err := db.Exec(`
		UPDATE pieces SET is_paused = 0, pause_until = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("resume piece: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPiece(row *sql.Row) (*Piece, error) {
	var p Piece
	var paused int
	var until sql.NullInt64
	err := row.Scan(&p.ID, &p.Title, &p.Composer, &p.CreatedAt, &paused, &until)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get piece: %w", err)
	}
	p.IsPaused = paused != 0
	if until.Valid {
		t := dateutil.Normalize(time.UnixMilli(until.Int64))
		p.PauseUntil = &t
	}
	return &p, nil
}
