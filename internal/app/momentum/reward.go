package momentum

import (
	"fmt"

	"github.com/inertia-app/inertia/internal/domain"
)

// eventDef pairs an eligibility predicate with its static payload. The
// table below is evaluated in order; the first eligible event wins, so
// exactly one fires per check-in.
type eventDef struct {
	Name     domain.EventName
	Class    domain.EventClass
	Payload  domain.RewardPayload
	Eligible func(domain.RewardContext) bool
}

// milestoneTiers is the fixed lookup table for check-ins 1-50. Beyond
// 50 the pattern repeats every 25, with every multiple of 50 forced to
// the top tier.
var milestoneTiers = map[int]domain.EventName{
	1:  domain.EventMilestoneBurst,
	2:  domain.EventMilestoneBurst,
	3:  domain.EventMilestoneBurst,
	5:  domain.EventMilestoneConfetti,
	7:  domain.EventMilestoneBurst,
	10: domain.EventMilestoneConfetti,
	14: domain.EventMilestoneConfetti,
	21: domain.EventMilestoneConfetti,
	25: domain.EventMilestoneFireworks,
	30: domain.EventMilestoneConfetti,
	40: domain.EventMilestoneConfetti,
	50: domain.EventMilestoneFireworks,
}

// MilestoneTier returns the milestone event a check-in count earns, or
// "" when the count is not a milestone.
func MilestoneTier(checkIns int) domain.EventName {
	if checkIns <= 0 {
		return ""
	}
	if checkIns <= 50 {
		return milestoneTiers[checkIns]
	}
	if checkIns%50 == 0 {
		return domain.EventMilestoneFireworks
	}
	if checkIns%25 == 0 {
		return domain.EventMilestoneConfetti
	}
	return ""
}

// eventTable is the fixed total order: celebratory tiers first in
// descending intensity, ending in the always-eligible fallback.
var eventTable = []eventDef{
	{
		Name:  domain.EventSolidWeek,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimFireworks,
			Intensity: domain.IntensityHigh,
			Text:      "A solid week. Seven days, no excuses.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool { return ctx.IsSolidWeek },
	},
	{
		Name:  domain.EventMilestoneFireworks,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimFireworks,
			Intensity: domain.IntensityHigh,
			Text:      "Major milestone. This is who you are now.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return MilestoneTier(ctx.TotalRealCheckIns) == domain.EventMilestoneFireworks
		},
	},
	{
		Name:  domain.EventMilestoneConfetti,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimConfetti,
			Intensity: domain.IntensityMedium,
			Text:      "Another milestone down.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return MilestoneTier(ctx.TotalRealCheckIns) == domain.EventMilestoneConfetti
		},
	},
	{
		Name:  domain.EventMilestoneBurst,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimBurst,
			Intensity: domain.IntensityMedium,
			Text:      "Milestone reached. Keep stacking days.",
			Shareable: false,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return MilestoneTier(ctx.TotalRealCheckIns) == domain.EventMilestoneBurst
		},
	},
	{
		Name:  domain.EventFirst100Momentum,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimFireworks,
			Intensity: domain.IntensityHigh,
			Text:      "Full momentum. 100. First time ever.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return ctx.Momentum >= 100 && !ctx.HasEverHit100
		},
	},
	{
		Name:  domain.EventFirst90Momentum,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimConfetti,
			Intensity: domain.IntensityHigh,
			Text:      "First time past 90. Rarefied air.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return ctx.Momentum >= 90 && !ctx.HasEverHit90
		},
	},
	{
		Name:  domain.EventFirst80Momentum,
		Class: domain.ClassCelebration,
		Payload: domain.RewardPayload{
			Animation: domain.AnimConfetti,
			Intensity: domain.IntensityMedium,
			Text:      "First time past 80. Momentum is real now.",
			Shareable: true,
		},
		Eligible: func(ctx domain.RewardContext) bool {
			return ctx.Momentum >= 80 && !ctx.HasEverHit80
		},
	},
	{
		Name:  domain.EventPerfectDay,
		Class: domain.ClassPositive,
		Payload: domain.RewardPayload{
			Animation: domain.AnimGlow,
			Intensity: domain.IntensityMedium,
			Text:      "Perfect day. Every behavior, plus exercise.",
			Shareable: false,
		},
		Eligible: func(ctx domain.RewardContext) bool { return ctx.IsPerfectDay },
	},
	{
		Name:  domain.EventCheckinLogged,
		Class: domain.ClassCompletion,
		Payload: domain.RewardPayload{
			Animation: domain.AnimCheckmark,
			Intensity: domain.IntensityLow,
			Text:      "Checked in.",
			Shareable: false,
		},
		Eligible: func(domain.RewardContext) bool { return true },
	},
}

// legalIntensities constrains how loudly each event class may celebrate.
var legalIntensities = map[domain.EventClass][]domain.Intensity{
	domain.ClassCelebration: {domain.IntensityHigh, domain.IntensityMedium},
	domain.ClassPositive:    {domain.IntensityMedium, domain.IntensityLow},
	domain.ClassCompletion:  {domain.IntensityLow},
}

func init() {
	// A misconfigured reward table is a programmer error: fail at load
	// time, not per call.
	if err := validateEventTable(eventTable); err != nil {
		panic(err)
	}
}

func validateEventTable(table []eventDef) error {
	if len(table) == 0 {
		return fmt.Errorf("reward table is empty")
	}
	last := table[len(table)-1]
	if last.Name != domain.EventCheckinLogged {
		return fmt.Errorf("reward table must end in the %s fallback", domain.EventCheckinLogged)
	}
	for _, def := range table {
		if def.Eligible == nil {
			return fmt.Errorf("event %s has no eligibility predicate", def.Name)
		}
		legal, ok := legalIntensities[def.Class]
		if !ok {
			return fmt.Errorf("event %s has unknown class %q", def.Name, def.Class)
		}
		allowed := false
		for _, i := range legal {
			if def.Payload.Intensity == i {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("event %s: intensity %q not permitted for class %q",
				def.Name, def.Payload.Intensity, def.Class)
		}
	}
	return nil
}

// ResolveReward picks the single reward event for a check-in: the first
// eligible entry in the fixed order. StateUpdates carries the one-time
// momentum flags that flipped — only when the winning event is a
// first_X_momentum event, so a crossing masked by a louder celebration
// still fires on a later day.
func ResolveReward(ctx domain.RewardContext) domain.RewardResult {
	for _, def := range eventTable {
		if !def.Eligible(ctx) {
			continue
		}
		result := domain.RewardResult{Event: def.Name, Payload: def.Payload}
		switch def.Name {
		case domain.EventFirst80Momentum:
			result.StateUpdates.Hit80 = true
		case domain.EventFirst90Momentum:
			result.StateUpdates.Hit90 = true
		case domain.EventFirst100Momentum:
			result.StateUpdates.Hit100 = true
		}
		return result
	}
	// Unreachable: the fallback is always eligible and the table is
	// validated non-empty at init.
	return domain.RewardResult{Event: domain.EventCheckinLogged}
}
