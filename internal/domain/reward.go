// Domain types for the milestone/reward resolver.
package domain

// EventName identifies a reward event. The resolver returns exactly one
// per check-in, chosen by a fixed priority order.
type EventName string

const (
	EventSolidWeek          EventName = "solid_week"
	EventMilestoneFireworks EventName = "milestone_fireworks"
	EventMilestoneConfetti  EventName = "milestone_confetti"
	EventMilestoneBurst     EventName = "milestone_burst"
	EventFirst100Momentum   EventName = "first_100_momentum"
	EventFirst90Momentum    EventName = "first_90_momentum"
	EventFirst80Momentum    EventName = "first_80_momentum"
	EventPerfectDay         EventName = "perfect_day"
	EventCheckinLogged      EventName = "check_in_logged"
)

// EventClass groups events by how loudly they are allowed to celebrate.
type EventClass string

const (
	ClassCelebration EventClass = "celebration"
	ClassPositive    EventClass = "positive"
	ClassCompletion  EventClass = "completion"
)

// Animation names the client-side animation an event triggers.
type Animation string

const (
	AnimFireworks Animation = "fireworks"
	AnimConfetti  Animation = "confetti"
	AnimBurst     Animation = "burst"
	AnimGlow      Animation = "glow"
	AnimCheckmark Animation = "checkmark"
)

// Intensity scales an animation. Legal values depend on the event class;
// the reward table is asserted against this at load time.
type Intensity string

const (
	IntensityHigh   Intensity = "high"
	IntensityMedium Intensity = "medium"
	IntensityLow    Intensity = "low"
)

// RewardContext is the snapshot the resolver evaluates. Transient —
// computed per write, never persisted.
type RewardContext struct {
	TotalRealCheckIns int
	Momentum          int
	HasEverHit80      bool
	HasEverHit90      bool
	HasEverHit100     bool

	// IsPerfectDay: every behavior at the top category and exercise done.
	IsPerfectDay bool

	// IsSolidWeek: today plus the prior six real days all at or above the
	// second-highest category, with exercise done every day.
	IsSolidWeek bool
}

// RewardPayload is what the caller renders for the resolved event.
type RewardPayload struct {
	Animation Animation `json:"animation"`
	Intensity Intensity `json:"intensity"`
	Text      string    `json:"text"`
	Shareable bool      `json:"shareable"`
}

// StateUpdates carries one-time flag flips the caller must persist into
// MilestoneState. Only first_X_momentum events set these.
type StateUpdates struct {
	Hit80  bool `json:"hit_80,omitempty"`
	Hit90  bool `json:"hit_90,omitempty"`
	Hit100 bool `json:"hit_100,omitempty"`
}

// Any reports whether there is anything to persist.
func (u StateUpdates) Any() bool {
	return u.Hit80 || u.Hit90 || u.Hit100
}

// RewardResult is the resolver's output: exactly one event.
type RewardResult struct {
	Event        EventName     `json:"event"`
	Payload      RewardPayload `json:"payload"`
	StateUpdates StateUpdates  `json:"state_updates"`
}

// MilestoneState holds the per-user one-time achievement flags. Flags
// are monotonic: once true they never revert.
type MilestoneState struct {
	UserID                 string `json:"user_id"`
	HasEverHit80Momentum   bool   `json:"has_ever_hit_80_momentum"`
	HasEverHit90Momentum   bool   `json:"has_ever_hit_90_momentum"`
	HasEverHit100Momentum  bool   `json:"has_ever_hit_100_momentum"`
	MaxConsecutiveDaysEver int    `json:"max_consecutive_days_ever"`
}

// Apply merges updates into the state, only ever flipping flags on.
func (m *MilestoneState) Apply(u StateUpdates) {
	if u.Hit80 {
		m.HasEverHit80Momentum = true
	}
	if u.Hit90 {
		m.HasEverHit90Momentum = true
	}
	if u.Hit100 {
		m.HasEverHit100Momentum = true
	}
}
