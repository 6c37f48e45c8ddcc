package momentum

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/inertia-app/inertia/internal/domain"
	"github.com/inertia-app/inertia/internal/infra/metrics"
	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// MaxLookbackDays bounds the backward scan for the last real check-in.
// Anything older is treated as no history.
const MaxLookbackDays = 30

// ResetWorthyDays is the gap length at which the caller should offer a
// fresh-start framing instead of a "you missed N days" one.
const ResetWorthyDays = 7

// GapDetector finds missed days on session start and backfills them
// with zero-contribution placeholder records.
type GapDetector struct {
	db *sqlite.DB
}

// NewGapDetector creates a gap detector over the record store.
func NewGapDetector(db *sqlite.DB) *GapDetector {
	return &GapDetector{db: db}
}

// Detect runs the session-start gap scan for a user: walk backward from
// today to the last real check-in, and synthesize gap_fill rows for
// every missed day in between. Idempotent: existing records, real or
// gap_fill, are never overwritten, so concurrent or repeated runs are
// safe (at-least-once, not exactly-once).
func (g *GapDetector) Detect(userID, today string) (domain.GapReport, error) {
	var report domain.GapReport

	day, err := time.Parse(domain.DateKey, today)
	if err != nil {
		return report, domain.ErrBadDate
	}

	lastReal, err := g.db.LastRealRecordBefore(userID, today, MaxLookbackDays)
	if err != nil {
		return report, fmt.Errorf("find last check-in: %w", err)
	}
	if lastReal == nil {
		// No gap, new user (or history beyond the scan bound).
		return report, nil
	}
	report.LastRealDate = lastReal.Date

	lastDay, err := time.Parse(domain.DateKey, lastReal.Date)
	if err != nil {
		return report, fmt.Errorf("parse last check-in date %q: %w", lastReal.Date, err)
	}

	daysBetween := int(day.Sub(lastDay).Hours() / 24)
	if daysBetween <= 1 {
		return report, nil
	}

	report.DaysMissed = daysBetween - 1
	report.ResetWorthy = report.DaysMissed >= ResetWorthyDays

	// Placeholders contribute nothing: zero score, zero momentum, streak
	// reset at the row. Lifetime best and the real check-in counter are
	// carried so later reads can resolve them through the gap.
	for d := lastDay.AddDate(0, 0, 1); d.Before(day); d = d.AddDate(0, 0, 1) {
		missed := d.Format(domain.DateKey)
		inserted, err := g.db.InsertGapFill(&domain.DailyRecord{
			UserID:            userID,
			Date:              missed,
			CheckinType:       domain.CheckinGapFill,
			Missed:            true,
			TotalRealCheckIns: lastReal.TotalRealCheckIns,
			LifetimeStreak:    lastReal.LifetimeStreak,
			StreakSavers:      lastReal.StreakSavers,
		})
		if err != nil {
			return report, fmt.Errorf("backfill %s: %w", missed, err)
		}
		if inserted {
			report.Backfilled++
			metrics.GapFills.Inc()
		}
		report.ReconcileDate = missed
	}

	if report.Backfilled > 0 {
		log.WithFields(log.Fields{
			"user":         userID,
			"days_missed":  report.DaysMissed,
			"backfilled":   report.Backfilled,
			"reset_worthy": report.ResetWorthy,
		}).Info("gap backfilled")
	}
	return report, nil
}

// Reconcile records a retroactive exercise answer for the most recent
// missed day. Bookkeeping only: the answer is never scored into
// momentum, it just settles the record so streak accounting restarts
// cleanly at today.
func (g *GapDetector) Reconcile(userID, today string, exercised bool) (*domain.DailyRecord, error) {
	day, err := time.Parse(domain.DateKey, today)
	if err != nil {
		return nil, domain.ErrBadDate
	}

	// The most recent missed date is the youngest unreconciled gap row
	// inside the scan window.
	var target *domain.DailyRecord
	for i := 1; i <= MaxLookbackDays; i++ {
		date := day.AddDate(0, 0, -i).Format(domain.DateKey)
		rec, err := g.db.GetRecord(userID, date)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", date, err)
		}
		if rec == nil {
			continue
		}
		if rec.IsReal() {
			break
		}
		if !rec.Reconciled {
			target = rec
		}
		break
	}
	if target == nil {
		return nil, domain.ErrNothingToReconcile
	}

	target.ExerciseCompleted = exercised
	target.Reconciled = true
	if err := g.db.PutRecord(target); err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", target.Date, err)
	}
	return target, nil
}
