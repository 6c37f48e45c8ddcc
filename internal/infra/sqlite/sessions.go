package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inertia-app/inertia/internal/domain"
)

// ─── Exercise Sessions ──────────────────────────────────────────────────────

// InsertExerciseSession logs a workout. The caller may supply an ID for
// replay-safe inserts; otherwise one is generated.
func (d *DB) InsertExerciseSession(s *domain.ExerciseSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO exercise_sessions (id, user_id, date, minutes, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Date, s.Minutes, s.Source, s.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert exercise session: %w", err)
	}
	return nil
}

// SessionsOn returns all logged sessions for one (user, date).
func (d *DB) SessionsOn(userID, date string) ([]domain.ExerciseSession, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, date, minutes, source, created_at
		 FROM exercise_sessions WHERE user_id = ? AND date = ?
		 ORDER BY created_at ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("sessions on %s: %w", date, err)
	}
	defer rows.Close()

	var sessions []domain.ExerciseSession
	for rows.Next() {
		var s domain.ExerciseSession
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Minutes, &s.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// HasQualifyingSession reports whether any session on the date meets
// the qualifying minutes threshold.
func (d *DB) HasQualifyingSession(userID, date string, minMinutes int) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM exercise_sessions
		 WHERE user_id = ? AND date = ? AND minutes >= ?`,
		userID, date, minMinutes,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("qualifying session: %w", err)
	}
	return count > 0, nil
}
