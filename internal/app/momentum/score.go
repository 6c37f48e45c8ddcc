// Package momentum implements the Inertia momentum engine: the pipeline
// that turns a day's raw behavior ratings into a persisted daily record,
// maintains streak state, backfills missed days, and resolves which
// celebratory event fires.
//
// The leaves (score, streak, aggregate, reward) are pure and total;
// only the Writer and GapDetector touch storage.
package momentum

import (
	"math"

	"github.com/inertia-app/inertia/internal/domain"
)

// Rating categories accepted from clients. Anything else grades as 0.
const (
	RatingElite    = "elite"
	RatingSolid    = "solid"
	RatingNotGreat = "not_great"
	RatingOff      = "off"
)

// GradeForRating maps a categorical rating to its fixed numeric grade.
// Total: unknown categories default to 0.
func GradeForRating(rating string) int {
	switch rating {
	case RatingElite:
		return domain.GradeElite
	case RatingSolid:
		return domain.GradeSolid
	case RatingNotGreat:
		return domain.GradeNotGreat
	default:
		return domain.GradeOff
	}
}

// DailyScore computes the 0-100 daily score: the arithmetic mean of the
// behavior grades, rounded to nearest integer. Empty input scores 0.
func DailyScore(grades []domain.BehaviorGrade) int {
	if len(grades) == 0 {
		return 0
	}
	sum := 0
	for _, g := range grades {
		sum += clampGrade(g.Grade)
	}
	return int(math.Round(float64(sum) / float64(len(grades))))
}

// clampGrade keeps the calculator total over malformed numeric input.
func clampGrade(g int) int {
	if g < 0 {
		return 0
	}
	if g > 100 {
		return 100
	}
	return g
}
