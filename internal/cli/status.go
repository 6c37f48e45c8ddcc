package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inertia-app/inertia/internal/daemon"
	"github.com/inertia-app/inertia/internal/domain"
)

func init() {
	statusCmd.Flags().StringVar(&statusUser, "user", "default", "User to report on")
	rootCmd.AddCommand(statusCmd)
}

var statusUser string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current momentum, streak, and milestones",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	// Look back from tomorrow so a record written today is included.
	horizon := time.Now().AddDate(0, 0, 1).Format(domain.DateKey)
	last, err := d.DB.LastRealRecordBefore(statusUser, horizon, 30)
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Println("No check-ins yet. Run `inertia checkin` to start.")
		return nil
	}

	savers, err := d.DB.StreakSavers(statusUser)
	if err != nil {
		return err
	}
	state, err := d.DB.GetMilestoneState(statusUser)
	if err != nil {
		return err
	}

	fmt.Printf("Last check-in:   %s\n", last.Date)
	fmt.Printf("Momentum:        %d (%s)\n", last.MomentumScore, last.MomentumTrend)
	fmt.Printf("Daily score:     %d\n", last.DailyScore)
	fmt.Printf("Streak:          %d day(s), lifetime best %d\n", last.CurrentStreak, last.LifetimeStreak)
	fmt.Printf("Streak savers:   %d remaining\n", savers)
	fmt.Printf("Total check-ins: %d\n", last.TotalRealCheckIns)

	milestones := []struct {
		hit  bool
		name string
	}{
		{state.HasEverHit80Momentum, "reached 80 momentum"},
		{state.HasEverHit90Momentum, "reached 90 momentum"},
		{state.HasEverHit100Momentum, "reached 100 momentum"},
	}
	for _, m := range milestones {
		if m.hit {
			fmt.Printf("  ★ %s\n", m.name)
		}
	}
	return nil
}
