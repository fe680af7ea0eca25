package feed

import "github.com/rolznz/zap.stream/internal/pubsub"

// EventIngested is the payload published on feed.event.ingested.
type EventIngested struct {
	Stream  string `json:"stream"`
	EventID string `json:"event_id"`
	Kind    int    `json:"kind"`
	Pubkey  string `json:"pubkey"`
}

// StreamUpdated is the payload published on feed.stream.updated.
type StreamUpdated struct {
	Stream string `json:"stream"`
	Status string `json:"status"`
	Title  string `json:"title"`
}

// Typed bus events owned by the feed layer. Defining them registers their
// topics with the default topic manager.
var (
	// EventIngestedEvent fires when a new relay event changed the store.
	EventIngestedEvent = pubsub.NewEvent[EventIngested](
		"feed.event.ingested",
		"A relay event was ingested and changed the stream state",
	)

	// StreamUpdatedEvent fires when the live event itself is created or
	// replaced, which carries title and status updates.
	StreamUpdatedEvent = pubsub.NewEvent[StreamUpdated](
		"feed.stream.updated",
		"The live stream event was created or replaced",
	)
)
