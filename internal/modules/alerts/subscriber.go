package alerts

import (
	"context"
	"encoding/json"
	"log/slog"

	alertqueue "github.com/rolznz/zap.stream/internal/alerts"
	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/mutes"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/timeline"
	"github.com/rolznz/zap.stream/internal/websocket"
	"github.com/rolznz/zap.stream/internal/zaps"
)

// QueueSubscriber keeps the alert scheduler fed: every zap receipt that
// changes the store re-submits the zap sequence, and dashboard commands
// drive mute, skip and reset.
type QueueSubscriber struct {
	subscriber pubsub.Subscriber
	store      *feed.Store
	scheduler  *alertqueue.Scheduler
}

// NewQueueSubscriber creates a new subscriber service for the alerts module.
func NewQueueSubscriber(sub pubsub.Subscriber, store *feed.Store, scheduler *alertqueue.Scheduler) *QueueSubscriber {
	return &QueueSubscriber{
		subscriber: sub,
		store:      store,
		scheduler:  scheduler,
	}
}

// Start begins listening for feed changes and control commands. The
// subscriptions run until the provided context is canceled.
func (qs *QueueSubscriber) Start(ctx context.Context) {
	slog.Info("Starting alert queue subscriber")

	if err := qs.subscriber.Subscribe(ctx, feed.EventIngestedEvent.Name(), qs.HandleFeedChange); err != nil && err != context.Canceled {
		slog.Error("Alert queue subscriber failed to subscribe", "topic", feed.EventIngestedEvent.Name(), "error", err)
	}
	if err := qs.subscriber.Subscribe(ctx, websocket.ControlTopic, qs.HandleCommand); err != nil && err != context.Canceled {
		slog.Error("Alert queue subscriber failed to subscribe", "topic", websocket.ControlTopic, "error", err)
	}
}

// HandleFeedChange re-submits the zap queue when a zap receipt or a mute
// list changed the store. Other kinds never move the queue.
func (qs *QueueSubscriber) HandleFeedChange(ctx context.Context, msg pubsub.Message) error {
	payload, err := pubsub.Decode(feed.EventIngestedEvent, msg)
	if err != nil {
		return err
	}

	switch payload.Kind {
	case event.KindZapReceipt, event.KindMuteList, event.KindLiveEvent:
	default:
		return nil
	}

	snap := qs.store.Snapshot()
	view := timeline.Aggregate(snap)

	qs.scheduler.SetMutes(mutes.Union(snap.ViewerMutes, snap.HostMutes))
	qs.scheduler.Submit(zapSequence(view))
	return nil
}

// HandleCommand applies a dashboard command to the scheduler.
func (qs *QueueSubscriber) HandleCommand(ctx context.Context, msg pubsub.Message) error {
	var cmd websocket.Command
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		slog.Warn("Dropping malformed control command", "error", err)
		return nil
	}

	switch cmd.Name {
	case websocket.CmdMuteAlerts:
		qs.scheduler.SetSpeechEnabled(false)
	case websocket.CmdUnmuteAlerts:
		qs.scheduler.SetSpeechEnabled(true)
	case websocket.CmdSkipAlert:
		qs.scheduler.Skip()
	case websocket.CmdResetAlerts:
		qs.scheduler.Reset()
	default:
		slog.Debug("Ignoring unknown control command", "name", cmd.Name)
	}
	return nil
}

// zapSequence extracts the timeline's zap items, newest first, as the
// scheduler input.
func zapSequence(view timeline.View) []zaps.ParsedZap {
	var out []zaps.ParsedZap
	for _, item := range view.Items {
		if item.Kind == timeline.ItemZapReceipt && item.Zap != nil {
			out = append(out, *item.Zap)
		}
	}
	return out
}
