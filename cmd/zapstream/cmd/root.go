package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zapstream",
	Short: "zap.stream overlay tools",
	Long: `Command-line tools for the zap.stream overlay pipeline.

Available commands:
  topics    Inspect the message bus topics the pipeline publishes on
  tail      Replay a file of nostr events through the pipeline
  voices    List the installed text-to-speech voices

Use "zapstream [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
