package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rolznz/zap.stream/internal/topicmgr"
)

// topicsGetCmd represents the topics get command
var topicsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show details about a specific topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, ok := topicmgr.Default().Get(args[0])
		if !ok {
			return fmt.Errorf("topic not found: %s", args[0])
		}

		fmt.Printf("Name:        %s\n", topic.Name())
		if topic.Module() != "" {
			fmt.Printf("Module:      %s\n", topic.Module())
		}
		fmt.Printf("Scope:       %s\n", topic.Scope())
		fmt.Printf("Description: %s\n", topic.Description())
		for k, v := range topic.Metadata() {
			fmt.Printf("Metadata:    %s=%v\n", k, v)
		}
		return nil
	},
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)
}
