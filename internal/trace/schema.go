package trace

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
-- One row per simulated user run
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    persona_id TEXT NOT NULL,
    persona_name TEXT NOT NULL,
    scenario TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    interaction INTEGER NOT NULL,
    element_id TEXT NOT NULL,
    element_type TEXT NOT NULL,
    action_key TEXT NOT NULL,
    total_score REAL NOT NULL,
    components TEXT NOT NULL,     -- JSON component scores
    intensities TEXT NOT NULL,    -- JSON emotion intensities
    emotion TEXT NOT NULL,
    candidates INTEGER NOT NULL,
    energy_level REAL NOT NULL,
    goal_id TEXT NOT NULL DEFAULT '',
    reasoning TEXT NOT NULL DEFAULT '',
    decided_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    interaction INTEGER NOT NULL,
    element_id TEXT NOT NULL,
    action_key TEXT NOT NULL,
    success INTEGER NOT NULL,
    valence REAL NOT NULL,
    preference REAL NOT NULL,
    emotion TEXT NOT NULL,
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, interaction);
CREATE INDEX IF NOT EXISTS idx_outcomes_session ON outcomes(session_id, interaction);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the tables on a fresh database and refuses databases
// written by a newer version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		return createSchema(ctx, db)
	}
	if version > SchemaVersion {
		return fmt.Errorf("trace database has schema version %d, newest supported is %d", version, SchemaVersion)
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
