package main

import (
	"os"

	"github.com/spf13/cobra"

	"birfacts/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "birfacts",
	Short: "Polonius-style borrow fact collector",
	Long:  `birfacts walks a function's control flow and emits the relational facts a Datalog borrow checker consumes.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
