package momentum

import (
	"math"

	"github.com/inertia-app/inertia/internal/domain"
)

// Velocity weights, oldest to newest. Yesterday and today dominate.
var velocityWeights = [5]float64{0.133, 0.133, 0.133, 0.30, 0.30}

// A day scoring below this counts as a bad day for pattern detection.
const badDayThreshold = 50

// dampeningTiers maps streak length to the base fraction of a momentum
// drop that gets absorbed. Ordered longest-streak-first and evaluated
// in sequence, so the ordering contract stays auditable.
var dampeningTiers = []struct {
	MinStreak int
	Dampening float64
}{
	{30, 0.90},
	{21, 0.85},
	{14, 0.70},
	{7, 0.50},
	{0, 0.0},
}

// rampTiers caps momentum for young accounts as a fraction of the
// computed score. Ordered smallest-count-first, first match wins.
var rampTiers = []struct {
	MaxCheckIns int
	Cap         float64
}{
	{1, 0.0},
	{2, 0.20},
	{3, 0.30},
	{6, 0.60},
	{10, 0.80},
}

// rampCapWindow is how many real check-ins an account needs before the
// onboarding ramp stops applying.
const rampCapWindow = 10

// softResetCheckIns is the effective check-in count a soft-reset account
// is treated as having, for ramp purposes only.
const softResetCheckIns = 3

// AggregateInput feeds one momentum computation. All history has been
// resolved by the caller; the aggregator itself is pure.
type AggregateInput struct {
	TodayScore int

	// Last4Days holds up to four prior real daily scores, oldest first.
	// Gap days are excluded.
	Last4Days []int

	// TrailingScores holds the scores of the four calendar days before
	// today, gap rows included, oldest first. Used only for soft-reset
	// detection; fewer than four days means no reset.
	TrailingScores []int

	CurrentStreak int

	// PreviousMomentum is yesterday's persisted momentum score. Nil for
	// a first-ever check-in.
	PreviousMomentum *int

	// PreviousRealMomentum is the last real (non-gap) momentum score,
	// resolved by walking backward past gap_fill rows. Nil when no real
	// record exists.
	PreviousRealMomentum *int

	TotalRealCheckIns int
	ExerciseCompleted bool
}

// AggregateResult is the aggregator's verdict for one day.
type AggregateResult struct {
	// ProposedScore is the final momentum, clamped to [0,100].
	ProposedScore int

	// RawScore is the weighted velocity before dampening and caps.
	RawScore int

	// DampeningApplied is the effective dampening fraction used, zero
	// when the day was not a drop.
	DampeningApplied float64

	Trend   domain.Trend
	Delta   int
	Message string
}

// Aggregate runs the velocity + inertia model:
//
//  1. weighted rolling average of today plus the last four real days
//  2. streak-based dampening of drops, overridden by bad-day patterns
//  3. onboarding ramp cap for young (or soft-reset) accounts
//  4. exercise gate: momentum cannot rise on a day without exercise
//  5. trend/delta against the last real momentum
//
// Total over well-formed numeric input; malformed input is a caller
// validation error, not handled here.
func Aggregate(in AggregateInput) AggregateResult {
	raw := velocity(in.TodayScore, in.Last4Days)

	prev := 0
	if in.PreviousMomentum != nil {
		prev = *in.PreviousMomentum
	}

	final := raw
	dampening := 0.0
	if raw < prev {
		dampening = effectiveDampening(in.CurrentStreak, badDays(in.TodayScore, in.Last4Days))
		drop := float64(prev - raw)
		final = int(math.Round(float64(prev) - drop*(1-dampening)))
	}

	final = applyRampCap(final, effectiveCheckIns(in))

	// Exercise gate: without exercise, momentum can fall but not rise
	// past yesterday's persisted score.
	if !in.ExerciseCompleted && in.PreviousMomentum != nil && final > *in.PreviousMomentum {
		final = *in.PreviousMomentum
	}

	final = clampMomentum(final)

	prevReal := 0
	if in.PreviousRealMomentum != nil {
		prevReal = *in.PreviousRealMomentum
	}
	delta := final - prevReal

	trend := domain.TrendStable
	switch {
	case delta > 2:
		trend = domain.TrendUp
	case delta < -2:
		trend = domain.TrendDown
	}

	return AggregateResult{
		ProposedScore:    final,
		RawScore:         raw,
		DampeningApplied: dampening,
		Trend:            trend,
		Delta:            delta,
		Message:          trendMessage(trend, dampening),
	}
}

// velocity computes the weighted rolling average. When history is short
// (new user), it pads on the left with today's score so the weights
// always see five values.
func velocity(today int, last4 []int) int {
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	window := make([]int, 0, 5)
	for len(window)+len(last4) < 4 {
		window = append(window, today)
	}
	window = append(window, last4...)
	window = append(window, today)

	sum := 0.0
	for i, s := range window {
		sum += float64(s) * velocityWeights[i]
	}
	return int(math.Round(sum))
}

// badDays counts days scoring below the bad-day threshold among the
// last four real days plus today.
func badDays(today int, last4 []int) int {
	n := 0
	if today < badDayThreshold {
		n++
	}
	for _, s := range last4 {
		if s < badDayThreshold {
			n++
		}
	}
	return n
}

// effectiveDampening resolves the base streak tier, then applies the
// pattern override: three or more bad days is real signal and gets no
// protection, exactly two gets half.
func effectiveDampening(streak, badDays int) float64 {
	base := 0.0
	for _, tier := range dampeningTiers {
		if streak >= tier.MinStreak {
			base = tier.Dampening
			break
		}
	}

	multiplier := 1.0
	switch {
	case badDays >= 3:
		multiplier = 0.0
	case badDays == 2:
		multiplier = 0.5
	}
	return base * multiplier
}

// effectiveCheckIns is the check-in count the ramp cap sees. A soft
// reset (four trailing zero-score days) treats the account as three
// check-ins old again, without touching the persisted counter.
func effectiveCheckIns(in AggregateInput) int {
	if len(in.TrailingScores) >= 4 {
		allZero := true
		for _, s := range in.TrailingScores[len(in.TrailingScores)-4:] {
			if s != 0 {
				allZero = false
				break
			}
		}
		if allZero && in.TotalRealCheckIns > softResetCheckIns {
			return softResetCheckIns
		}
	}
	return in.TotalRealCheckIns
}

// applyRampCap multiplies the score down for young accounts. A
// multiplicative cap, not additive: tier 2 means 20% of the value.
func applyRampCap(score, checkIns int) int {
	if checkIns > rampCapWindow {
		return score
	}
	for _, tier := range rampTiers {
		if checkIns <= tier.MaxCheckIns {
			return int(math.Round(float64(score) * tier.Cap))
		}
	}
	return score
}

func clampMomentum(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func trendMessage(trend domain.Trend, dampening float64) string {
	switch {
	case trend == domain.TrendUp:
		return "Momentum building."
	case trend == domain.TrendDown && dampening > 0:
		return "A dip, but your streak softened the fall."
	case trend == domain.TrendDown:
		return "Momentum slipping."
	default:
		return "Holding steady."
	}
}
