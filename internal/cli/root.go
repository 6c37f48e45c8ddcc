// Package cli implements the Inertia command-line interface using Cobra.
// Each subcommand maps to an engine capability (serve, checkin, status, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inertia",
	Short: "Inertia — The momentum engine for daily habits",
	Long: `Inertia turns daily behavior check-ins into a momentum score.
Log your day, keep your streak alive, and watch momentum build — or see it
decay when you disappear. All state lives on your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
