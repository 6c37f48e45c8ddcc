package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/inertia-app/inertia/internal/domain"
)

// ─── Milestone State ────────────────────────────────────────────────────────

// GetMilestoneState returns the per-user one-time achievement flags.
// A user with no row gets the zero state.
func (d *DB) GetMilestoneState(userID string) (domain.MilestoneState, error) {
	state := domain.MilestoneState{UserID: userID}
	row := d.db.QueryRow(
		`SELECT hit_80, hit_90, hit_100, max_consecutive_days
		 FROM milestone_state WHERE user_id = ?`, userID,
	)
	err := row.Scan(&state.HasEverHit80Momentum, &state.HasEverHit90Momentum,
		&state.HasEverHit100Momentum, &state.MaxConsecutiveDaysEver)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get milestone state: %w", err)
	}
	return state, nil
}

// MergeMilestoneState persists flag flips and the consecutive-day high
// water mark. Monotonic: MAX() keeps flags from ever reverting, so
// replays are idempotent.
func (d *DB) MergeMilestoneState(state domain.MilestoneState) error {
	_, err := d.db.Exec(
		`INSERT INTO milestone_state (user_id, hit_80, hit_90, hit_100, max_consecutive_days, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			hit_80               = MAX(hit_80, excluded.hit_80),
			hit_90               = MAX(hit_90, excluded.hit_90),
			hit_100              = MAX(hit_100, excluded.hit_100),
			max_consecutive_days = MAX(max_consecutive_days, excluded.max_consecutive_days),
			updated_at           = excluded.updated_at`,
		state.UserID, state.HasEverHit80Momentum, state.HasEverHit90Momentum,
		state.HasEverHit100Momentum, state.MaxConsecutiveDaysEver,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("merge milestone state: %w", err)
	}
	return nil
}

// ─── Streak Savers ──────────────────────────────────────────────────────────

// StreakSavers returns the user's remaining saver tokens, initializing
// the row at the default balance on first read.
func (d *DB) StreakSavers(userID string) (int, error) {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO streak_savers (user_id, remaining) VALUES (?, ?)`,
		userID, domain.MaxStreakSavers,
	)
	if err != nil {
		return 0, fmt.Errorf("init streak savers: %w", err)
	}

	var remaining int
	err = d.db.QueryRow(
		`SELECT remaining FROM streak_savers WHERE user_id = ?`, userID,
	).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("get streak savers: %w", err)
	}
	return remaining, nil
}

// SetStreakSavers overwrites the saver balance, clamped to [0, cap].
// Consumption lives outside this core; the setter exists for it.
func (d *DB) SetStreakSavers(userID string, remaining int) error {
	if remaining < 0 {
		remaining = 0
	}
	if remaining > domain.MaxStreakSavers {
		remaining = domain.MaxStreakSavers
	}
	_, err := d.db.Exec(
		`INSERT INTO streak_savers (user_id, remaining) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET remaining = excluded.remaining`,
		userID, remaining,
	)
	if err != nil {
		return fmt.Errorf("set streak savers: %w", err)
	}
	return nil
}
