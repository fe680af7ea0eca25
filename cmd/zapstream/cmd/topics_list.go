package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rolznz/zap.stream/internal/topicmgr"
)

var (
	listOutputFormat string
	listModuleFilter string
)

// topicsListCmd represents the topics list command
var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List every topic registered with the topic manager, optionally
filtered to a single module.

Output formats:
  table - Human-readable table format (default)
  json  - Machine-readable JSON format with metadata`,
	RunE: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) error {
	manager := topicmgr.Default()

	var topicList []topicmgr.Topic
	if listModuleFilter != "" {
		topicList = manager.ListModule(listModuleFilter)
	} else {
		topicList = manager.List()
	}

	if len(topicList) == 0 {
		if listModuleFilter != "" {
			fmt.Printf("No topics found for module %q\n", listModuleFilter)
		} else {
			fmt.Println("No topics found")
		}
		return nil
	}

	switch listOutputFormat {
	case "json":
		return printTopicsJSON(topicList)
	case "table":
		printTopicsTable(topicList)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, use 'table' or 'json'", listOutputFormat)
	}
}

func printTopicsTable(topicList []topicmgr.Topic) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODULE\tSCOPE\tDESCRIPTION")
	for _, topic := range topicList {
		module := topic.Module()
		if module == "" {
			module = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", topic.Name(), module, topic.Scope(), topic.Description())
	}
	w.Flush()
}

func printTopicsJSON(topicList []topicmgr.Topic) error {
	type topicJSON struct {
		Name        string                 `json:"name"`
		Module      string                 `json:"module,omitempty"`
		Scope       topicmgr.TopicScope    `json:"scope"`
		Description string                 `json:"description"`
		Metadata    map[string]interface{} `json:"metadata,omitempty"`
	}

	out := make([]topicJSON, 0, len(topicList))
	for _, topic := range topicList {
		out = append(out, topicJSON{
			Name:        topic.Name(),
			Module:      topic.Module(),
			Scope:       topic.Scope(),
			Description: topic.Description(),
			Metadata:    topic.Metadata(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&listModuleFilter, "module", "m", "", "Filter topics by module name")
}
