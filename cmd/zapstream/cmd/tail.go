package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/cobra"

	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/modules/chat"
	"github.com/rolznz/zap.stream/internal/pubsub"
)

var (
	tailStream string
	tailViewer string
)

// tailCmd represents the tail command
var tailCmd = &cobra.Command{
	Use:   "tail <events.jsonl>",
	Short: "Replay a file of nostr events through the pipeline",
	Long: `Replay a file of JSON-encoded nostr events (one per line) through the
ingestion pipeline and print the resulting timeline view. Useful for
debugging moderation, ranking and rich text handling against captured
relay traffic without a live stream.`,
	Args: cobra.ExactArgs(1),
	RunE: tailHandler,
}

func tailHandler(cmd *cobra.Command, args []string) error {
	if tailStream == "" {
		tailStream = os.Getenv("STREAM_LINK")
	}
	if tailStream == "" {
		return fmt.Errorf("no stream link: pass --stream or set STREAM_LINK")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	store := feed.NewStore(tailViewer)
	service, err := feed.NewService(feed.Dependencies{
		Store:      store,
		Publisher:  bus,
		StreamLink: tailStream,
		Viewer:     tailViewer,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev nostr.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: skipping malformed event: %v\n", line, err)
			continue
		}
		service.Ingest(ctx, &ev)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(chat.BuildView(store))
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringVar(&tailStream, "stream", "", "Stream naddr (defaults to STREAM_LINK)")
	tailCmd.Flags().StringVar(&tailViewer, "viewer", "", "Viewer hex pubkey whose mute list applies")
}
