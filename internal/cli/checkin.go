package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inertia-app/inertia/internal/app/momentum"
	"github.com/inertia-app/inertia/internal/daemon"
	"github.com/inertia-app/inertia/internal/domain"
)

func init() {
	checkinCmd.Flags().StringVar(&checkinUser, "user", "default", "User to check in as")
	checkinCmd.Flags().StringVar(&checkinDate, "date", "", "Date to check in for (YYYY-MM-DD, default today)")
	checkinCmd.Flags().StringSliceVar(&checkinGrades, "grade", nil, "Behavior grade as name=rating (elite|solid|not_great|off), repeatable")
	checkinCmd.Flags().BoolVar(&checkinExercise, "exercise", false, "Mark exercise as completed for the day")
	checkinCmd.Flags().StringVar(&checkinNote, "note", "", "Free-form note for the day")
	rootCmd.AddCommand(checkinCmd)
}

var (
	checkinUser     string
	checkinDate     string
	checkinGrades   []string
	checkinExercise bool
	checkinNote     string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Log today's behavior check-in",
	Long: `Log a daily check-in and compute momentum.

Each --grade takes a behavior name and a rating:

  inertia checkin --grade diet=elite --grade sleep=solid --exercise`,
	RunE: runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	grades, ratings, err := parseGrades(checkinGrades)
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	date := checkinDate
	if date == "" {
		date = time.Now().Format(domain.DateKey)
	}

	// Backfill any missed days before writing today's record.
	if _, err := d.Gaps.Detect(checkinUser, date); err != nil {
		return err
	}

	exercised := checkinExercise
	rec, reward, err := d.Writer.Write(checkinUser, domain.CheckinInput{
		Date:             date,
		BehaviorGrades:   grades,
		BehaviorRatings:  ratings,
		Note:             checkinNote,
		ExerciseDeclared: &exercised,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checked in for %s\n", rec.Date)
	fmt.Printf("  Daily score:  %d\n", rec.DailyScore)
	fmt.Printf("  Momentum:     %d (%s %+d)\n", rec.MomentumScore, rec.MomentumTrend, rec.MomentumDelta)
	fmt.Printf("  Streak:       %d day(s), lifetime best %d\n", rec.CurrentStreak, rec.LifetimeStreak)
	if reward != nil {
		fmt.Printf("  Reward:       %s — %s\n", reward.Event, reward.Payload.Text)
	}
	return nil
}

// parseGrades turns name=rating pairs into grades plus the raw rating map.
func parseGrades(pairs []string) ([]domain.BehaviorGrade, map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil, fmt.Errorf("at least one --grade is required")
	}

	grades := make([]domain.BehaviorGrade, 0, len(pairs))
	ratings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, rating, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid grade %q: expected name=rating", pair)
		}
		// Accept a raw numeric grade too, for scripting.
		if n, err := strconv.Atoi(rating); err == nil {
			grades = append(grades, domain.BehaviorGrade{Name: name, Grade: n})
			continue
		}
		ratings[name] = rating
		grades = append(grades, domain.BehaviorGrade{Name: name, Grade: momentum.GradeForRating(rating)})
	}
	return grades, ratings, nil
}
