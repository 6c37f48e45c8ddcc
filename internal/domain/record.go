// Package domain holds the pure types of the Inertia momentum engine.
// No I/O, no clock access — services inject both.
package domain

import "time"

// DateKey is the canonical YYYY-MM-DD layout for record keys.
const DateKey = "2006-01-02"

// CheckinType distinguishes real submissions from synthesized gap rows.
type CheckinType string

const (
	CheckinReal    CheckinType = "real"
	CheckinGapFill CheckinType = "gap_fill"
)

// Trend describes the direction of the momentum delta.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Behavior grades. Each rating category maps to a fixed numeric grade;
// anything unrecognized grades as 0.
const (
	GradeElite    = 100
	GradeSolid    = 80
	GradeNotGreat = 50
	GradeOff      = 0
)

// MaxStreakSavers caps the per-user streak saver balance.
const MaxStreakSavers = 3

// BehaviorGrade is one rated behavior in a daily check-in.
type BehaviorGrade struct {
	Name  string `json:"name"`
	Grade int    `json:"grade"`
}

// DailyRecord is the persisted outcome of one calendar day for one user.
// Exactly one exists per (user, date); a real submission supersedes a
// gap_fill placeholder for the same date.
type DailyRecord struct {
	UserID         string      `json:"user_id"`
	Date           string      `json:"date"`
	CheckinType    CheckinType `json:"checkin_type"`
	Missed         bool        `json:"missed"`
	AccountAgeDays int         `json:"account_age_days"`

	// Monotonic count of real (non-placeholder) check-ins.
	TotalRealCheckIns int `json:"total_real_check_ins"`

	BehaviorRatings map[string]string `json:"behavior_ratings,omitempty"`
	BehaviorGrades  []BehaviorGrade   `json:"behavior_grades,omitempty"`

	DailyScore       int   `json:"daily_score"`
	RawMomentumScore int   `json:"raw_momentum_score"`
	MomentumScore    int   `json:"momentum_score"`
	MomentumTrend    Trend `json:"momentum_trend"`
	MomentumDelta    int   `json:"momentum_delta"`

	CurrentStreak  int `json:"current_streak"`
	LifetimeStreak int `json:"lifetime_streak"`
	StreakSavers   int `json:"streak_savers"`

	ExerciseCompleted     bool `json:"exercise_completed"`
	ExerciseTargetMinutes int  `json:"exercise_target_minutes"`

	FocusHabit string `json:"focus_habit,omitempty"`
	Goal       string `json:"goal,omitempty"`
	Note       string `json:"note,omitempty"`

	// Reconciled marks a gap_fill whose exercise question was answered
	// retroactively. Bookkeeping only — never scored into momentum.
	Reconciled bool `json:"reconciled,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Version drives optimistic concurrency on writes. Zero means the
	// record has never been persisted.
	Version int `json:"-"`
}

// IsReal reports whether this record came from a real submission.
func (r *DailyRecord) IsReal() bool {
	return r.CheckinType == CheckinReal
}

// CheckinInput is the raw material for one daily check-in.
type CheckinInput struct {
	Date            string            `json:"date"`
	BehaviorGrades  []BehaviorGrade   `json:"behavior_grades"`
	BehaviorRatings map[string]string `json:"behavior_ratings,omitempty"`
	FocusHabit      string            `json:"focus_habit,omitempty"`
	Goal            string            `json:"goal,omitempty"`
	AccountAgeDays  int               `json:"account_age_days"`
	Note            string            `json:"note,omitempty"`

	// ExerciseDeclared is the user's own yes/no. Nil means not answered;
	// a logged qualifying session can still complete the day.
	ExerciseDeclared *bool `json:"exercise_declared,omitempty"`
}

// ExerciseSession is a logged workout, independent of the daily check-in.
// Any session at or above the qualifying minutes makes its date
// exercise-complete.
type ExerciseSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Minutes   int       `json:"minutes"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GapReport is the outcome of a session-start gap scan.
type GapReport struct {
	LastRealDate string `json:"last_real_date,omitempty"`
	DaysMissed   int    `json:"days_missed"`
	Backfilled   int    `json:"backfilled"`

	// ResetWorthy is set when the gap is long enough (>=7 missed days)
	// that the caller should offer a fresh-start framing.
	ResetWorthy bool `json:"reset_worthy"`

	// ReconcileDate is the most recent missed date, offered to the user
	// for a retroactive exercise answer. Empty when there is no gap.
	ReconcileDate string `json:"reconcile_date,omitempty"`
}
