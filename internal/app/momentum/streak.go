package momentum

import "github.com/inertia-app/inertia/internal/domain"

// StreakState is the streak arithmetic for one day.
type StreakState struct {
	Current  int
	Lifetime int
}

// TrackStreak derives today's streak counters from yesterday's record.
//
//   - Yesterday real: extend, lifetime high-water-marked.
//   - No record at all yesterday: fresh start at 1/1 — further history
//     is not consulted.
//   - Yesterday is a gap_fill: the chain is broken, current resets to 1,
//     but the lifetime best survives by resolving through the gap to the
//     last real record.
//
// Read-only and total; storage reads happen in the caller.
func TrackStreak(yesterday, lastReal *domain.DailyRecord) StreakState {
	if yesterday != nil && yesterday.IsReal() {
		current := yesterday.CurrentStreak + 1
		return StreakState{
			Current:  current,
			Lifetime: maxInt(current, yesterday.LifetimeStreak),
		}
	}

	if yesterday == nil {
		return StreakState{Current: 1, Lifetime: 1}
	}

	lifetime := 1
	if lastReal != nil {
		lifetime = maxInt(lifetime, lastReal.LifetimeStreak)
	}
	return StreakState{Current: 1, Lifetime: lifetime}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
