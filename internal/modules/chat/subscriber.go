package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/websocket"
)

// TimelineSubscriber listens for feed changes on the pub/sub bus, rebuilds
// the timeline view, and broadcasts it to all connected clients via the
// websocket bridge.
type TimelineSubscriber struct {
	subscriber pubsub.Subscriber
	bridge     *websocket.Bridge
	store      *feed.Store
}

// NewTimelineSubscriber creates a new subscriber service for the chat module.
func NewTimelineSubscriber(sub pubsub.Subscriber, bridge *websocket.Bridge, store *feed.Store) *TimelineSubscriber {
	return &TimelineSubscriber{
		subscriber: sub,
		bridge:     bridge,
		store:      store,
	}
}

// Start begins listening for feed changes. The subscriptions run until the
// provided context is canceled.
func (ts *TimelineSubscriber) Start(ctx context.Context) {
	slog.Info("Starting chat timeline subscriber")

	for _, topic := range []string{feed.EventIngestedEvent.Name(), feed.StreamUpdatedEvent.Name()} {
		if err := ts.subscriber.Subscribe(ctx, topic, ts.handleFeedChange); err != nil && err != context.Canceled {
			slog.Error("Timeline subscriber failed to subscribe", "topic", topic, "error", err)
		}
	}
	if err := ts.subscriber.Subscribe(ctx, websocket.ControlTopic, ts.HandleCommand); err != nil && err != context.Canceled {
		slog.Error("Timeline subscriber failed to subscribe", "topic", websocket.ControlTopic, "error", err)
	}
}

// HandleCommand reacts to dashboard commands. Only reload concerns the
// timeline; everything else belongs to other modules.
func (ts *TimelineSubscriber) HandleCommand(ctx context.Context, msg pubsub.Message) error {
	var cmd websocket.Command
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		slog.Warn("Dropping malformed control command", "error", err)
		return nil
	}
	if cmd.Name != websocket.CmdReload {
		return nil
	}
	return ts.handleFeedChange(ctx, msg)
}

// handleFeedChange rebuilds and pushes the timeline. Every relevant change
// triggers a full rebuild; aggregation is pure, so the output stays
// deterministic no matter how events interleave.
func (ts *TimelineSubscriber) handleFeedChange(ctx context.Context, msg pubsub.Message) error {
	view := BuildView(ts.store)

	payload, err := json.Marshal(websocket.NewTimelineMessage(view))
	if err != nil {
		return err
	}

	ts.bridge.Broadcast(payload, websocket.ConnectionTypeOverlay, websocket.ConnectionTypeControl)
	return nil
}
