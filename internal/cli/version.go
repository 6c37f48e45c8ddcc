package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Inertia version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("inertia", rootCmd.Version)
	},
}
