package cmd

import (
	"github.com/spf13/cobra"

	// Importing the pipeline packages registers their topics with the
	// default topic manager.
	_ "github.com/rolznz/zap.stream/internal/feed"
	_ "github.com/rolznz/zap.stream/internal/websocket"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Inspect message bus topics",
	Long: `The topics command lists and inspects the topics the overlay pipeline
publishes on. Topics carry events between the feed service and the
overlay modules.

Examples:
  # List all topics
  zapstream topics list

  # List the topics of one module
  zapstream topics list --module feed

  # Show one topic in detail
  zapstream topics get feed.event.ingested`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
