// Package sqlite provides SQLite-based persistent storage for Inertia.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// One row per (user, calendar date). History is append-only by
		// date key; a real submission merge-overwrites a gap_fill row.
		`CREATE TABLE IF NOT EXISTS daily_records (
			user_id             TEXT NOT NULL,
			date                TEXT NOT NULL,
			checkin_type        TEXT NOT NULL DEFAULT 'real' CHECK (checkin_type IN ('real', 'gap_fill')),
			missed              BOOLEAN NOT NULL DEFAULT 0,
			account_age_days    INTEGER NOT NULL DEFAULT 0,
			total_real_checkins INTEGER NOT NULL DEFAULT 0,
			behavior_ratings    TEXT NOT NULL DEFAULT '{}',
			behavior_grades     TEXT NOT NULL DEFAULT '[]',
			daily_score         INTEGER NOT NULL DEFAULT 0,
			raw_momentum        INTEGER NOT NULL DEFAULT 0,
			momentum            INTEGER NOT NULL DEFAULT 0 CHECK (momentum BETWEEN 0 AND 100),
			trend               TEXT NOT NULL DEFAULT 'stable' CHECK (trend IN ('up', 'down', 'stable')),
			delta               INTEGER NOT NULL DEFAULT 0,
			current_streak      INTEGER NOT NULL DEFAULT 0,
			lifetime_streak     INTEGER NOT NULL DEFAULT 0,
			streak_savers       INTEGER NOT NULL DEFAULT 3,
			exercise_completed  BOOLEAN NOT NULL DEFAULT 0,
			exercise_target_min INTEGER NOT NULL DEFAULT 0,
			focus_habit         TEXT NOT NULL DEFAULT '',
			goal                TEXT NOT NULL DEFAULT '',
			note                TEXT NOT NULL DEFAULT '',
			reconciled          BOOLEAN NOT NULL DEFAULT 0,
			created_at          INTEGER NOT NULL,
			version             INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_user_date ON daily_records(user_id, date DESC)`,

		// One-time achievement flags. Monotonic: flips on, never off.
		`CREATE TABLE IF NOT EXISTS milestone_state (
			user_id              TEXT PRIMARY KEY,
			hit_80               BOOLEAN NOT NULL DEFAULT 0,
			hit_90               BOOLEAN NOT NULL DEFAULT 0,
			hit_100              BOOLEAN NOT NULL DEFAULT 0,
			max_consecutive_days INTEGER NOT NULL DEFAULT 0,
			updated_at           INTEGER NOT NULL
		)`,

		// Streak saver tokens, consumed outside this core. Capped at 3.
		`CREATE TABLE IF NOT EXISTS streak_savers (
			user_id   TEXT PRIMARY KEY,
			remaining INTEGER NOT NULL DEFAULT 3 CHECK (remaining BETWEEN 0 AND 3)
		)`,

		// Logged workouts, independent of check-ins. A qualifying session
		// completes the exercise gate even without a declaration.
		`CREATE TABLE IF NOT EXISTS exercise_sessions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			date       TEXT NOT NULL,
			minutes    INTEGER NOT NULL,
			source     TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON exercise_sessions(user_id, date)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
