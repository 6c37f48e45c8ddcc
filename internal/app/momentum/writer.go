package momentum

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/inertia-app/inertia/internal/domain"
	"github.com/inertia-app/inertia/internal/infra/metrics"
	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// historyWindow is how many prior real daily scores feed the velocity.
const historyWindow = 4

// solidWeekDays is the span a solid week covers: today plus the prior
// six real days.
const solidWeekDays = 7

// WriterOptions tunes the exercise resolution.
type WriterOptions struct {
	// QualifyingMinutes is the session length that completes the
	// exercise gate without a declaration.
	QualifyingMinutes int

	// DefaultTargetMinutes is stamped on records whose focus config
	// carries no explicit target.
	DefaultTargetMinutes int
}

// DefaultWriterOptions mirrors the product defaults.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		QualifyingMinutes:    20,
		DefaultTargetMinutes: 30,
	}
}

// Writer orchestrates one idempotent daily record write per
// (user, date): merge-preserve durable fields, recompute derived
// fields, validate, persist, resolve the reward.
type Writer struct {
	db   *sqlite.DB
	opts WriterOptions
}

// NewWriter creates a record writer over the store.
func NewWriter(db *sqlite.DB, opts WriterOptions) *Writer {
	return &Writer{db: db, opts: opts}
}

// Write runs the full check-in pipeline and returns the persisted
// record plus the single resolved reward event. Same input, same date,
// same derived output: re-running is safe, and a concurrent writer
// losing the version race gets domain.ErrVersionConflict (retry the
// whole call).
func (w *Writer) Write(userID string, in domain.CheckinInput) (*domain.DailyRecord, *domain.RewardResult, error) {
	started := time.Now()

	if err := validateInput(userID, in); err != nil {
		metrics.WriteFailures.WithLabelValues("validate").Inc()
		return nil, nil, err
	}

	day, _ := time.Parse(domain.DateKey, in.Date) // validated above
	yesterdayKey := day.AddDate(0, 0, -1).Format(domain.DateKey)

	existing, err := w.db.GetRecord(userID, in.Date)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read existing record: %w", err)
	}
	yesterday, err := w.db.GetRecord(userID, yesterdayKey)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read yesterday: %w", err)
	}
	lastReal, err := w.db.LastRealRecordBefore(userID, in.Date, MaxLookbackDays)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read last real record: %w", err)
	}
	savers, err := w.db.StreakSavers(userID)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read streak savers: %w", err)
	}

	// Streak and durable counters. A prior real write for this date is
	// authoritative — the derived fields get recomputed, the carried
	// ones are preserved.
	streak := TrackStreak(yesterday, lastReal)
	totalReal := 1
	if lastReal != nil {
		totalReal = lastReal.TotalRealCheckIns + 1
	}
	if existing != nil && existing.IsReal() {
		streak = StreakState{Current: existing.CurrentStreak, Lifetime: existing.LifetimeStreak}
		totalReal = existing.TotalRealCheckIns
		savers = existing.StreakSavers
	}

	dailyScore := DailyScore(in.BehaviorGrades)

	last4, err := w.db.LastRealScoresBefore(userID, in.Date, historyWindow)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read score history: %w", err)
	}
	trailing, err := w.trailingScores(userID, day)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("read trailing scores: %w", err)
	}

	exercised, err := w.resolveExercise(userID, in.Date, in.ExerciseDeclared)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("read").Inc()
		return nil, nil, fmt.Errorf("resolve exercise: %w", err)
	}

	agg := Aggregate(AggregateInput{
		TodayScore:           dailyScore,
		Last4Days:            last4,
		TrailingScores:       trailing,
		CurrentStreak:        streak.Current,
		PreviousMomentum:     momentumOf(yesterday),
		PreviousRealMomentum: momentumOf(lastReal),
		TotalRealCheckIns:    totalReal,
		ExerciseCompleted:    exercised,
	})

	rec := &domain.DailyRecord{
		UserID:                userID,
		Date:                  in.Date,
		CheckinType:           domain.CheckinReal,
		Missed:                false,
		AccountAgeDays:        in.AccountAgeDays,
		TotalRealCheckIns:     totalReal,
		BehaviorRatings:       in.BehaviorRatings,
		BehaviorGrades:        in.BehaviorGrades,
		DailyScore:            dailyScore,
		RawMomentumScore:      agg.RawScore,
		MomentumScore:         agg.ProposedScore,
		MomentumTrend:         agg.Trend,
		MomentumDelta:         agg.Delta,
		CurrentStreak:         streak.Current,
		LifetimeStreak:        streak.Lifetime,
		StreakSavers:          savers,
		ExerciseCompleted:     exercised,
		ExerciseTargetMinutes: w.opts.DefaultTargetMinutes,
		FocusHabit:            in.FocusHabit,
		Goal:                  in.Goal,
		Note:                  in.Note,
	}
	if existing != nil {
		rec.Version = existing.Version
		rec.CreatedAt = existing.CreatedAt
	}

	if err := validateRecord(rec); err != nil {
		// Structural-integrity failure: abort before persistence, never
		// partially written.
		metrics.WriteFailures.WithLabelValues("integrity").Inc()
		log.WithFields(log.Fields{"user": userID, "date": in.Date}).
			WithError(err).Error("derived record failed validation")
		return nil, nil, err
	}

	if err := w.db.PutRecord(rec); err != nil {
		if err == domain.ErrVersionConflict {
			metrics.WriteConflicts.Inc()
		} else {
			metrics.WriteFailures.WithLabelValues("persist").Inc()
		}
		return nil, nil, err
	}

	reward, err := w.resolveAndPersistReward(userID, rec, in.BehaviorGrades, exercised)
	if err != nil {
		return nil, nil, err
	}

	metrics.CheckIns.WithLabelValues(string(domain.CheckinReal)).Inc()
	metrics.WriteLatency.Observe(time.Since(started).Seconds())
	log.WithFields(log.Fields{
		"user":     userID,
		"date":     in.Date,
		"score":    rec.DailyScore,
		"momentum": rec.MomentumScore,
		"streak":   rec.CurrentStreak,
		"event":    reward.Event,
	}).Info("check-in written")

	return rec, reward, nil
}

// resolveExercise applies the completion rule: an explicit yes, or any
// qualifying logged session for the date.
func (w *Writer) resolveExercise(userID, date string, declared *bool) (bool, error) {
	if declared != nil && *declared {
		return true, nil
	}
	return w.db.HasQualifyingSession(userID, date, w.opts.QualifyingMinutes)
}

// trailingScores collects the daily scores of the four calendar days
// before day, gap rows included, oldest first. Days with no record at
// all are skipped, which disables soft-reset detection for accounts
// younger than the window.
func (w *Writer) trailingScores(userID string, day time.Time) ([]int, error) {
	from := day.AddDate(0, 0, -historyWindow).Format(domain.DateKey)
	to := day.AddDate(0, 0, -1).Format(domain.DateKey)
	records, err := w.db.RecordsBetween(userID, from, to)
	if err != nil {
		return nil, err
	}
	scores := make([]int, 0, len(records))
	for _, r := range records {
		scores = append(scores, r.DailyScore)
	}
	return scores, nil
}

func (w *Writer) resolveAndPersistReward(userID string, rec *domain.DailyRecord, grades []domain.BehaviorGrade, exercised bool) (*domain.RewardResult, error) {
	state, err := w.db.GetMilestoneState(userID)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("milestone").Inc()
		return nil, fmt.Errorf("read milestone state: %w", err)
	}

	solidWeek, err := w.isSolidWeek(userID, rec, grades, exercised)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("milestone").Inc()
		return nil, fmt.Errorf("resolve solid week: %w", err)
	}

	reward := ResolveReward(domain.RewardContext{
		TotalRealCheckIns: rec.TotalRealCheckIns,
		Momentum:          rec.MomentumScore,
		HasEverHit80:      state.HasEverHit80Momentum,
		HasEverHit90:      state.HasEverHit90Momentum,
		HasEverHit100:     state.HasEverHit100Momentum,
		IsPerfectDay:      isPerfectDay(grades, exercised),
		IsSolidWeek:       solidWeek,
	})

	state.Apply(reward.StateUpdates)
	state.MaxConsecutiveDaysEver = maxInt(state.MaxConsecutiveDaysEver, rec.CurrentStreak)
	if err := w.db.MergeMilestoneState(state); err != nil {
		metrics.WriteFailures.WithLabelValues("milestone").Inc()
		return nil, fmt.Errorf("persist milestone state: %w", err)
	}

	metrics.Rewards.WithLabelValues(string(reward.Event)).Inc()
	return &reward, nil
}

// isPerfectDay: every behavior at the top category and exercise done.
func isPerfectDay(grades []domain.BehaviorGrade, exercised bool) bool {
	if len(grades) == 0 || !exercised {
		return false
	}
	for _, g := range grades {
		if g.Grade < domain.GradeElite {
			return false
		}
	}
	return true
}

// isSolidWeek: today plus the prior six calendar days are all real
// records at or above the second-highest category on every behavior,
// with exercise done every day. Any gap inside the week disqualifies it.
func (w *Writer) isSolidWeek(userID string, rec *domain.DailyRecord, grades []domain.BehaviorGrade, exercised bool) (bool, error) {
	if !solidDay(grades, exercised) {
		return false, nil
	}

	day, err := time.Parse(domain.DateKey, rec.Date)
	if err != nil {
		return false, domain.ErrBadDate
	}
	from := day.AddDate(0, 0, -(solidWeekDays - 1)).Format(domain.DateKey)
	to := day.AddDate(0, 0, -1).Format(domain.DateKey)

	records, err := w.db.RecordsBetween(userID, from, to)
	if err != nil {
		return false, err
	}
	if len(records) != solidWeekDays-1 {
		return false, nil
	}
	for _, r := range records {
		if !r.IsReal() || !solidDay(r.BehaviorGrades, r.ExerciseCompleted) {
			return false, nil
		}
	}
	return true, nil
}

func solidDay(grades []domain.BehaviorGrade, exercised bool) bool {
	if len(grades) == 0 || !exercised {
		return false
	}
	for _, g := range grades {
		if g.Grade < domain.GradeSolid {
			return false
		}
	}
	return true
}

func momentumOf(rec *domain.DailyRecord) *int {
	if rec == nil {
		return nil
	}
	m := rec.MomentumScore
	return &m
}

// validateInput rejects malformed submissions before any read or write.
func validateInput(userID string, in domain.CheckinInput) error {
	if userID == "" {
		return domain.ErrMissingUser
	}
	if in.Date == "" {
		return domain.ErrMissingDate
	}
	if _, err := time.Parse(domain.DateKey, in.Date); err != nil {
		return domain.ErrBadDate
	}
	if len(in.BehaviorGrades) == 0 {
		return domain.ErrNoGrades
	}
	for _, g := range in.BehaviorGrades {
		switch g.Grade {
		case domain.GradeOff, domain.GradeNotGreat, domain.GradeSolid, domain.GradeElite:
		default:
			return domain.ErrGradeOutOfRange
		}
	}
	return nil
}

// validateRecord is the pre-persist structural completeness check.
func validateRecord(rec *domain.DailyRecord) error {
	switch {
	case rec.UserID == "",
		rec.Date == "",
		rec.CheckinType == "",
		rec.MomentumTrend == "",
		len(rec.BehaviorGrades) == 0,
		rec.MomentumScore < 0 || rec.MomentumScore > 100,
		rec.LifetimeStreak < rec.CurrentStreak:
		return domain.ErrIncompleteRecord
	}
	return nil
}
