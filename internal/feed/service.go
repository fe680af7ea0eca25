package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/links"
	"github.com/rolznz/zap.stream/internal/pubsub"
)

// Service drives a stream's relay subscriptions, feeds the store and
// announces changes on the bus.
type Service struct {
	client    *Client
	store     *Store
	publisher pubsub.Publisher
	link      links.Link
	viewer    string

	// userDataCancel tears down the per-user subscription when the host
	// changes.
	userDataCancel context.CancelFunc
	userDataHost   string
}

// Dependencies holds everything the feed service needs to operate.
type Dependencies struct {
	Client    *Client
	Store     *Store
	Publisher pubsub.Publisher
	// StreamLink is the stream's naddr, with or without a nostr: prefix.
	StreamLink string
	// Viewer is the logged-in pubkey, empty for an anonymous overlay.
	Viewer string
}

// NewService creates a feed service for one stream.
func NewService(deps Dependencies) (*Service, error) {
	link, err := links.Parse(links.StripURI(deps.StreamLink))
	if err != nil {
		return nil, fmt.Errorf("feed: parse stream link: %w", err)
	}
	if link.Type != links.TypeAddress {
		return nil, fmt.Errorf("feed: stream link %q is not an address", deps.StreamLink)
	}

	return &Service{
		client:    deps.Client,
		store:     deps.Store,
		publisher: deps.Publisher,
		link:      link,
		viewer:    deps.Viewer,
	}, nil
}

// Link returns the parsed stream link.
func (s *Service) Link() links.Link {
	return s.link
}

// Run subscribes to the stream and processes events until the context is
// canceled. It blocks.
func (s *Service) Run(ctx context.Context) error {
	slog.Info("Feed service starting", "stream", s.link.Address())

	if s.viewer != "" {
		s.resubscribeUserData(ctx, s.viewer)
	}

	events := s.client.SubscribeStream(ctx, s.link)
	for {
		select {
		case <-ctx.Done():
			s.stopUserData()
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				s.stopUserData()
				return nil
			}
			s.process(ctx, ev)
		}
	}
}

// Ingest pushes an event through the same path the relay subscription uses.
// The tail command and tests feed events in directly.
func (s *Service) Ingest(ctx context.Context, ev *nostr.Event) {
	s.process(ctx, ev)
}

func (s *Service) process(ctx context.Context, ev *nostr.Event) {
	if ev == nil || !s.store.Ingest(ev) {
		return
	}

	address := s.link.Address()

	if ev.Kind == event.KindLiveEvent {
		// A new host means new moderation and emoji subscriptions.
		if host := s.store.Host(); host != s.userDataHost {
			s.resubscribeUserData(ctx, s.viewer, host)
			s.userDataHost = host
		}

		info := event.InfoFromEvent(ev)
		err := pubsub.PublishFor(ctx, s.publisher, StreamUpdatedEvent, address, ev.PubKey, StreamUpdated{
			Stream: address,
			Status: string(info.Status),
			Title:  info.Title,
		})
		if err != nil {
			slog.Error("Failed to publish stream update", "stream", address, "error", err)
		}
	}

	if ev.Kind == event.KindBadgeAward && s.client != nil {
		go s.fetchAwardDefinition(ctx, ev)
	}

	err := pubsub.PublishFor(ctx, s.publisher, EventIngestedEvent, address, ev.PubKey, EventIngested{
		Stream:  address,
		EventID: ev.ID,
		Kind:    ev.Kind,
		Pubkey:  ev.PubKey,
	})
	if err != nil {
		slog.Error("Failed to publish ingested event", "stream", address, "event_id", ev.ID, "error", err)
	}
}

// fetchAwardDefinition resolves the badge definition referenced by an award
// so the timeline can render name and image.
func (s *Service) fetchAwardDefinition(ctx context.Context, award *nostr.Event) {
	addr, ok := event.TagValue(award, "a")
	if !ok {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	for ev := range s.client.FetchBadgeDefinitions(fetchCtx, []string{addr}) {
		if s.store.Ingest(ev) {
			slog.Debug("Badge definition resolved", "address", addr)
		}
	}
}

func (s *Service) resubscribeUserData(ctx context.Context, pubkeys ...string) {
	if s.client == nil {
		return
	}
	s.stopUserData()

	subCtx, cancel := context.WithCancel(ctx)
	s.userDataCancel = cancel

	events := s.client.SubscribeUserData(subCtx, pubkeys...)
	go func() {
		for ev := range events {
			s.process(ctx, ev)
		}
	}()
}

func (s *Service) stopUserData() {
	if s.userDataCancel != nil {
		s.userDataCancel()
		s.userDataCancel = nil
	}
}
