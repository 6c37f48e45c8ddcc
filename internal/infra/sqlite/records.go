package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/inertia-app/inertia/internal/domain"
)

const recordColumns = `user_id, date, checkin_type, missed, account_age_days,
	total_real_checkins, behavior_ratings, behavior_grades, daily_score,
	raw_momentum, momentum, trend, delta, current_streak, lifetime_streak,
	streak_savers, exercise_completed, exercise_target_min, focus_habit,
	goal, note, reconciled, created_at, version`

// GetRecord retrieves the record for one (user, date). Returns nil when
// no record exists.
func (d *DB) GetRecord(userID, date string) (*domain.DailyRecord, error) {
	row := d.db.QueryRow(
		`SELECT `+recordColumns+` FROM daily_records WHERE user_id = ? AND date = ?`,
		userID, date,
	)
	return scanRecord(row)
}

// PutRecord persists a record with optimistic concurrency. A record with
// Version 0 is inserted fresh; any other version must match the stored
// row or the write fails with domain.ErrVersionConflict. On success the
// record's Version is advanced.
func (d *DB) PutRecord(rec *domain.DailyRecord) error {
	ratings, err := json.Marshal(ratingsOrEmpty(rec.BehaviorRatings))
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}
	grades, err := json.Marshal(gradesOrEmpty(rec.BehaviorGrades))
	if err != nil {
		return fmt.Errorf("marshal grades: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if rec.Version == 0 {
		_, err := d.db.Exec(
			`INSERT INTO daily_records (`+recordColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			rec.UserID, rec.Date, string(rec.CheckinType), rec.Missed,
			rec.AccountAgeDays, rec.TotalRealCheckIns, string(ratings),
			string(grades), rec.DailyScore, rec.RawMomentumScore,
			rec.MomentumScore, string(rec.MomentumTrend), rec.MomentumDelta,
			rec.CurrentStreak, rec.LifetimeStreak, rec.StreakSavers,
			rec.ExerciseCompleted, rec.ExerciseTargetMinutes, rec.FocusHabit,
			rec.Goal, rec.Note, rec.Reconciled, rec.CreatedAt.Unix(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert record: %w", err)
		}
		rec.Version = 1
		return nil
	}

	result, err := d.db.Exec(
		`UPDATE daily_records SET
			checkin_type = ?, missed = ?, account_age_days = ?,
			total_real_checkins = ?, behavior_ratings = ?, behavior_grades = ?,
			daily_score = ?, raw_momentum = ?, momentum = ?, trend = ?,
			delta = ?, current_streak = ?, lifetime_streak = ?,
			streak_savers = ?, exercise_completed = ?, exercise_target_min = ?,
			focus_habit = ?, goal = ?, note = ?, reconciled = ?,
			created_at = ?, version = version + 1
		 WHERE user_id = ? AND date = ? AND version = ?`,
		string(rec.CheckinType), rec.Missed, rec.AccountAgeDays,
		rec.TotalRealCheckIns, string(ratings), string(grades),
		rec.DailyScore, rec.RawMomentumScore, rec.MomentumScore,
		string(rec.MomentumTrend), rec.MomentumDelta, rec.CurrentStreak,
		rec.LifetimeStreak, rec.StreakSavers, rec.ExerciseCompleted,
		rec.ExerciseTargetMinutes, rec.FocusHabit, rec.Goal, rec.Note,
		rec.Reconciled, rec.CreatedAt.Unix(),
		rec.UserID, rec.Date, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrVersionConflict
	}
	rec.Version++
	return nil
}

// InsertGapFill writes a gap_fill placeholder only if no record exists
// for the date yet. Returns true when a row was inserted. Never
// overwrites an existing record, real or gap_fill — re-running a
// backfill is safe.
func (d *DB) InsertGapFill(rec *domain.DailyRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO daily_records
			(user_id, date, checkin_type, missed, total_real_checkins,
			 lifetime_streak, streak_savers, created_at, version)
		 VALUES (?, ?, 'gap_fill', 1, ?, ?, ?, ?, 1)`,
		rec.UserID, rec.Date, rec.TotalRealCheckIns, rec.LifetimeStreak,
		rec.StreakSavers, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert gap fill: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// LastRealRecordBefore walks backward from (but excluding) date and
// returns the most recent real record within maxDays calendar days.
// Returns nil when none exists in the window.
func (d *DB) LastRealRecordBefore(userID, date string, maxDays int) (*domain.DailyRecord, error) {
	day, err := time.Parse(domain.DateKey, date)
	if err != nil {
		return nil, domain.ErrBadDate
	}
	floor := day.AddDate(0, 0, -maxDays).Format(domain.DateKey)

	row := d.db.QueryRow(
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE user_id = ? AND date < ? AND date >= ? AND checkin_type = 'real'
		 ORDER BY date DESC LIMIT 1`,
		userID, date, floor,
	)
	return scanRecord(row)
}

// LastRealScoresBefore returns up to limit daily scores of real records
// strictly before date, in chronological order. Gap rows are excluded —
// the aggregator pads missing history itself.
func (d *DB) LastRealScoresBefore(userID, date string, limit int) ([]int, error) {
	rows, err := d.db.Query(
		`SELECT daily_score FROM daily_records
		 WHERE user_id = ? AND date < ? AND checkin_type = 'real'
		 ORDER BY date DESC LIMIT ?`,
		userID, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("last real scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returned newest-first; callers want oldest-first.
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	return scores, nil
}

// ListRecords returns the most recent records for a user, newest first.
func (d *DB) ListRecords(userID string, limit int) ([]domain.DailyRecord, error) {
	rows, err := d.db.Query(
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE user_id = ? ORDER BY date DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []domain.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// RecordsBetween returns records in [from, to], oldest first.
func (d *DB) RecordsBetween(userID, from, to string) ([]domain.DailyRecord, error) {
	rows, err := d.db.Query(
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("records between: %w", err)
	}
	defer rows.Close()

	var records []domain.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(s scanner) (*domain.DailyRecord, error) {
	var (
		rec       domain.DailyRecord
		ctype     string
		trend     string
		ratings   string
		grades    string
		createdAt int64
	)
	err := s.Scan(&rec.UserID, &rec.Date, &ctype, &rec.Missed,
		&rec.AccountAgeDays, &rec.TotalRealCheckIns, &ratings, &grades,
		&rec.DailyScore, &rec.RawMomentumScore, &rec.MomentumScore, &trend,
		&rec.MomentumDelta, &rec.CurrentStreak, &rec.LifetimeStreak,
		&rec.StreakSavers, &rec.ExerciseCompleted, &rec.ExerciseTargetMinutes,
		&rec.FocusHabit, &rec.Goal, &rec.Note, &rec.Reconciled,
		&createdAt, &rec.Version)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec.CheckinType = domain.CheckinType(ctype)
	rec.MomentumTrend = domain.Trend(trend)
	rec.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal([]byte(ratings), &rec.BehaviorRatings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings: %w", err)
	}
	if err := json.Unmarshal([]byte(grades), &rec.BehaviorGrades); err != nil {
		return nil, fmt.Errorf("unmarshal grades: %w", err)
	}
	return &rec, nil
}

func ratingsOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func gradesOrEmpty(g []domain.BehaviorGrade) []domain.BehaviorGrade {
	if g == nil {
		return []domain.BehaviorGrade{}
	}
	return g
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the message.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
