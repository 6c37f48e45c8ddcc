package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inertia-app/inertia/internal/daemon"
)

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "default", "User to report on")
	historyCmd.Flags().IntVar(&historyDays, "days", 14, "Number of recent days to show")
	rootCmd.AddCommand(historyCmd)
}

var (
	historyUser string
	historyDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent daily records",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if historyDays < 1 {
		historyDays = 1
	}
	records, err := d.DB.ListRecords(historyUser, historyDays)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No records yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tSCORE\tMOMENTUM\tTREND\tSTREAK\tEXERCISE")
	for _, rec := range records {
		exercise := "-"
		if rec.ExerciseCompleted {
			exercise = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			rec.Date, rec.CheckinType, rec.DailyScore, rec.MomentumScore,
			rec.MomentumTrend, rec.CurrentStreak, exercise)
	}
	return w.Flush()
}
