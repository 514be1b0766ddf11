package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "pieces: music piece library with pause state",
		SQL: `
CREATE TABLE pieces (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    composer    TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL,

    -- Pause state; pause_until is required whenever is_paused is set
    is_paused   INTEGER NOT NULL DEFAULT 0,
    pause_until INTEGER,

    CHECK (is_paused = 0 OR pause_until IS NOT NULL)
);

CREATE INDEX idx_pieces_created ON pieces(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "sections: practice units within a piece",
		SQL: `
CREATE TABLE sections (
    id             TEXT PRIMARY KEY,
    piece_id       TEXT NOT NULL,
    bar_range      TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    target_reps    INTEGER NOT NULL CHECK (target_reps BETWEEN 1 AND 12),
    completed_reps INTEGER NOT NULL DEFAULT 0 CHECK (completed_reps >= 0),

    FOREIGN KEY (piece_id) REFERENCES pieces(id) ON DELETE CASCADE
);

CREATE INDEX idx_sections_piece ON sections(piece_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
