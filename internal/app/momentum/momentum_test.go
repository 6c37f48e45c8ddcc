package momentum_test

import (
	"testing"

	"github.com/inertia-app/inertia/internal/app/momentum"
	"github.com/inertia-app/inertia/internal/domain"
)

func grades(values ...int) []domain.BehaviorGrade {
	out := make([]domain.BehaviorGrade, len(values))
	for i, v := range values {
		out[i] = domain.BehaviorGrade{Name: "behavior", Grade: v}
	}
	return out
}

func intPtr(v int) *int { return &v }

// ═══════════════════════════════════════════════════════════════════════════
// Daily Score Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDailyScore_Mean(t *testing.T) {
	// (100+80+50+0)/4 = 57.5, rounds to 58.
	if got := momentum.DailyScore(grades(100, 80, 50, 0)); got != 58 {
		t.Errorf("expected 58, got %d", got)
	}
}

func TestDailyScore_Empty(t *testing.T) {
	if got := momentum.DailyScore(nil); got != 0 {
		t.Errorf("expected 0 for empty grades, got %d", got)
	}
}

func TestDailyScore_ClampsMalformedGrades(t *testing.T) {
	// 150 clamps to 100, -10 clamps to 0: (100+0)/2 = 50.
	if got := momentum.DailyScore(grades(150, -10)); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestGradeForRating(t *testing.T) {
	cases := map[string]int{
		momentum.RatingElite:    100,
		momentum.RatingSolid:    80,
		momentum.RatingNotGreat: 50,
		momentum.RatingOff:      0,
		"bogus":                 0,
	}
	for rating, want := range cases {
		if got := momentum.GradeForRating(rating); got != want {
			t.Errorf("rating %q: expected %d, got %d", rating, want, got)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestTrackStreak_FirstEver(t *testing.T) {
	s := momentum.TrackStreak(nil, nil)
	if s.Current != 1 || s.Lifetime != 1 {
		t.Errorf("expected 1/1, got %d/%d", s.Current, s.Lifetime)
	}
}

func TestTrackStreak_ExtendsRealYesterday(t *testing.T) {
	yesterday := &domain.DailyRecord{
		CheckinType:    domain.CheckinReal,
		CurrentStreak:  6,
		LifetimeStreak: 10,
	}
	s := momentum.TrackStreak(yesterday, yesterday)
	if s.Current != 7 {
		t.Errorf("expected current 7, got %d", s.Current)
	}
	if s.Lifetime != 10 {
		t.Errorf("expected lifetime 10, got %d", s.Lifetime)
	}
}

func TestTrackStreak_NewLifetimeBest(t *testing.T) {
	yesterday := &domain.DailyRecord{
		CheckinType:    domain.CheckinReal,
		CurrentStreak:  10,
		LifetimeStreak: 10,
	}
	s := momentum.TrackStreak(yesterday, yesterday)
	if s.Current != 11 || s.Lifetime != 11 {
		t.Errorf("expected 11/11, got %d/%d", s.Current, s.Lifetime)
	}
}

func TestTrackStreak_GapBreaksChainKeepsLifetime(t *testing.T) {
	yesterday := &domain.DailyRecord{CheckinType: domain.CheckinGapFill}
	lastReal := &domain.DailyRecord{
		CheckinType:    domain.CheckinReal,
		CurrentStreak:  9,
		LifetimeStreak: 12,
	}
	s := momentum.TrackStreak(yesterday, lastReal)
	if s.Current != 1 {
		t.Errorf("expected current 1 after gap, got %d", s.Current)
	}
	if s.Lifetime != 12 {
		t.Errorf("expected lifetime 12 carried through gap, got %d", s.Lifetime)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Aggregator Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAggregate_SteadyState(t *testing.T) {
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:           60,
		Last4Days:            []int{60, 60, 60, 60},
		CurrentStreak:        5,
		PreviousMomentum:     intPtr(60),
		PreviousRealMomentum: intPtr(60),
		TotalRealCheckIns:    20,
		ExerciseCompleted:    true,
	})
	if res.ProposedScore != 60 {
		t.Errorf("expected 60, got %d", res.ProposedScore)
	}
	if res.Trend != domain.TrendStable {
		t.Errorf("expected stable trend, got %s", res.Trend)
	}
}

func TestAggregate_VelocityPadsShortHistory(t *testing.T) {
	// One prior day: window is [100,100,100,50,100].
	// 0.133*300 + 0.30*50 + 0.30*100 = 84.9 -> 85.
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:        100,
		Last4Days:         []int{50},
		TotalRealCheckIns: 20,
		ExerciseCompleted: true,
	})
	if res.RawScore != 85 {
		t.Errorf("expected raw 85, got %d", res.RawScore)
	}
}

func TestAggregate_DampeningBoundary(t *testing.T) {
	// prev=80, raw=50: a 30-point drop. Streak 6 gets no protection;
	// streak 7 absorbs half.
	base := momentum.AggregateInput{
		TodayScore:           50,
		Last4Days:            []int{50, 50, 50, 50},
		PreviousMomentum:     intPtr(80),
		PreviousRealMomentum: intPtr(80),
		TotalRealCheckIns:    20,
		ExerciseCompleted:    true,
	}

	base.CurrentStreak = 6
	if got := momentum.Aggregate(base).ProposedScore; got != 50 {
		t.Errorf("streak 6: expected 50, got %d", got)
	}

	base.CurrentStreak = 7
	res := momentum.Aggregate(base)
	if res.ProposedScore != 65 {
		t.Errorf("streak 7: expected 65, got %d", res.ProposedScore)
	}
	if res.DampeningApplied != 0.50 {
		t.Errorf("streak 7: expected dampening 0.50, got %v", res.DampeningApplied)
	}
}

func TestAggregate_BadDayPatternRemovesProtection(t *testing.T) {
	// Streak 30 would absorb 90% of a drop, but three sub-50 days in the
	// window is real signal: no protection at all.
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:           30,
		Last4Days:            []int{30, 30, 80, 80},
		CurrentStreak:        30,
		PreviousMomentum:     intPtr(80),
		PreviousRealMomentum: intPtr(80),
		TotalRealCheckIns:    40,
		ExerciseCompleted:    true,
	})
	if res.DampeningApplied != 0 {
		t.Errorf("expected no dampening with 3 bad days, got %v", res.DampeningApplied)
	}
	if res.ProposedScore != res.RawScore {
		t.Errorf("expected full drop to raw %d, got %d", res.RawScore, res.ProposedScore)
	}
}

func TestAggregate_TwoBadDaysHalveProtection(t *testing.T) {
	// Streak 30 base 0.90, two bad days halve it to 0.45.
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:           30,
		Last4Days:            []int{80, 80, 80, 30},
		CurrentStreak:        30,
		PreviousMomentum:     intPtr(80),
		PreviousRealMomentum: intPtr(80),
		TotalRealCheckIns:    40,
		ExerciseCompleted:    true,
	})
	if res.DampeningApplied != 0.45 {
		t.Errorf("expected dampening 0.45, got %v", res.DampeningApplied)
	}
}

func TestAggregate_RampCapsYoungAccounts(t *testing.T) {
	cases := []struct {
		checkIns int
		want     int
	}{
		{1, 0},    // first day: no momentum yet
		{2, 20},   // 20% cap
		{3, 30},   // 30% cap
		{5, 60},   // 60% cap
		{8, 80},   // 80% cap
		{11, 100}, // past the window: uncapped
	}
	for _, tc := range cases {
		res := momentum.Aggregate(momentum.AggregateInput{
			TodayScore:        100,
			TotalRealCheckIns: tc.checkIns,
			ExerciseCompleted: true,
		})
		if res.ProposedScore != tc.want {
			t.Errorf("checkIns %d: expected %d, got %d", tc.checkIns, tc.want, res.ProposedScore)
		}
	}
}

func TestAggregate_SoftResetReappliesRamp(t *testing.T) {
	// Four trailing zero-score days treat a 20-check-in account as three
	// check-ins old: 30% cap.
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:        100,
		TrailingScores:    []int{0, 0, 0, 0},
		TotalRealCheckIns: 20,
		ExerciseCompleted: true,
	})
	if res.ProposedScore != 30 {
		t.Errorf("expected 30 after soft reset, got %d", res.ProposedScore)
	}
}

func TestAggregate_NoSoftResetWithNonZeroDay(t *testing.T) {
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:        100,
		TrailingScores:    []int{0, 0, 50, 0},
		TotalRealCheckIns: 20,
		ExerciseCompleted: true,
	})
	if res.ProposedScore != 100 {
		t.Errorf("expected 100 without soft reset, got %d", res.ProposedScore)
	}
}

func TestAggregate_ExerciseGateBlocksRise(t *testing.T) {
	// Raw climbs to 65, but without exercise momentum cannot pass
	// yesterday's 50.
	in := momentum.AggregateInput{
		TodayScore:           100,
		Last4Days:            []int{50, 50, 50, 50},
		CurrentStreak:        5,
		PreviousMomentum:     intPtr(50),
		PreviousRealMomentum: intPtr(50),
		TotalRealCheckIns:    20,
	}
	res := momentum.Aggregate(in)
	if res.ProposedScore != 50 {
		t.Errorf("expected gate at 50, got %d", res.ProposedScore)
	}

	in.ExerciseCompleted = true
	if got := momentum.Aggregate(in).ProposedScore; got != 65 {
		t.Errorf("expected 65 with exercise, got %d", got)
	}
}

func TestAggregate_ExerciseGateStillAllowsFall(t *testing.T) {
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:           0,
		Last4Days:            []int{80, 80, 80, 80},
		CurrentStreak:        1,
		PreviousMomentum:     intPtr(80),
		PreviousRealMomentum: intPtr(80),
		TotalRealCheckIns:    20,
	})
	if res.ProposedScore >= 80 {
		t.Errorf("expected a fall below 80, got %d", res.ProposedScore)
	}
}

func TestAggregate_TrendThreshold(t *testing.T) {
	// Delta must exceed 2 in magnitude to leave stable.
	in := momentum.AggregateInput{
		TodayScore:           62,
		Last4Days:            []int{60, 60, 60, 60},
		PreviousMomentum:     intPtr(60),
		PreviousRealMomentum: intPtr(60),
		TotalRealCheckIns:    20,
		ExerciseCompleted:    true,
	}
	res := momentum.Aggregate(in)
	if res.Delta > 2 || res.Delta < -2 {
		t.Fatalf("test setup: delta %d outside stable band", res.Delta)
	}
	if res.Trend != domain.TrendStable {
		t.Errorf("expected stable for delta %d, got %s", res.Delta, res.Trend)
	}

	in.TodayScore = 100
	res = momentum.Aggregate(in)
	if res.Delta <= 2 {
		t.Fatalf("test setup: delta %d not above threshold", res.Delta)
	}
	if res.Trend != domain.TrendUp {
		t.Errorf("expected up trend, got %s", res.Trend)
	}
}

func TestAggregate_ClampsToRange(t *testing.T) {
	res := momentum.Aggregate(momentum.AggregateInput{
		TodayScore:        100,
		Last4Days:         []int{100, 100, 100, 100},
		TotalRealCheckIns: 50,
		ExerciseCompleted: true,
	})
	if res.ProposedScore < 0 || res.ProposedScore > 100 {
		t.Errorf("momentum %d outside [0,100]", res.ProposedScore)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reward Resolution Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMilestoneTier(t *testing.T) {
	cases := map[int]domain.EventName{
		1:   domain.EventMilestoneBurst,
		4:   "",
		5:   domain.EventMilestoneConfetti,
		25:  domain.EventMilestoneFireworks,
		50:  domain.EventMilestoneFireworks,
		60:  "",
		75:  domain.EventMilestoneConfetti,
		100: domain.EventMilestoneFireworks,
	}
	for checkIns, want := range cases {
		if got := momentum.MilestoneTier(checkIns); got != want {
			t.Errorf("checkIns %d: expected %q, got %q", checkIns, want, got)
		}
	}
}

func TestResolveReward_Fallback(t *testing.T) {
	res := momentum.ResolveReward(domain.RewardContext{TotalRealCheckIns: 4, Momentum: 40})
	if res.Event != domain.EventCheckinLogged {
		t.Errorf("expected fallback, got %s", res.Event)
	}
	if res.StateUpdates.Any() {
		t.Errorf("fallback must not flip milestone flags")
	}
}

func TestResolveReward_MilestoneMasksFirstCrossing(t *testing.T) {
	// Check-in 25 is a fireworks milestone AND a perfect day AND the
	// first time past 90. The milestone wins, and the first_90 flag
	// stays unflipped so the crossing fires on a later day.
	ctx := domain.RewardContext{TotalRealCheckIns: 25, Momentum: 95, IsPerfectDay: true}

	res := momentum.ResolveReward(ctx)
	if res.Event != domain.EventMilestoneFireworks {
		t.Fatalf("expected milestone_fireworks, got %s", res.Event)
	}
	if res.StateUpdates.Any() {
		t.Errorf("masked crossing must not flip flags: %+v", res.StateUpdates)
	}

	// Next day: no milestone, the deferred crossing fires.
	ctx.TotalRealCheckIns = 26
	res = momentum.ResolveReward(ctx)
	if res.Event != domain.EventFirst90Momentum {
		t.Fatalf("expected first_90_momentum, got %s", res.Event)
	}
	if !res.StateUpdates.Hit90 {
		t.Errorf("expected Hit90 update")
	}
	if res.StateUpdates.Hit80 {
		t.Errorf("first_90 must not also flip Hit80")
	}
}

func TestResolveReward_FirstCrossingsFireOnce(t *testing.T) {
	ctx := domain.RewardContext{TotalRealCheckIns: 26, Momentum: 85}
	res := momentum.ResolveReward(ctx)
	if res.Event != domain.EventFirst80Momentum || !res.StateUpdates.Hit80 {
		t.Fatalf("expected first_80_momentum with Hit80, got %s %+v", res.Event, res.StateUpdates)
	}

	ctx.HasEverHit80 = true
	res = momentum.ResolveReward(ctx)
	if res.Event == domain.EventFirst80Momentum {
		t.Errorf("first_80 must not re-fire once flagged")
	}
}

func TestResolveReward_SolidWeekOutranksEverything(t *testing.T) {
	res := momentum.ResolveReward(domain.RewardContext{
		TotalRealCheckIns: 50, // fireworks milestone
		Momentum:          100,
		IsPerfectDay:      true,
		IsSolidWeek:       true,
	})
	if res.Event != domain.EventSolidWeek {
		t.Errorf("expected solid_week, got %s", res.Event)
	}
}

func TestResolveReward_PerfectDayAboveFallback(t *testing.T) {
	res := momentum.ResolveReward(domain.RewardContext{
		TotalRealCheckIns: 4,
		Momentum:          40,
		IsPerfectDay:      true,
	})
	if res.Event != domain.EventPerfectDay {
		t.Errorf("expected perfect_day, got %s", res.Event)
	}
}
