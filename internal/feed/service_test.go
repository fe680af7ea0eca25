package feed_test

import (
	"context"
	"sync"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/testutils"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) byTopic(topic string) []pubsub.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pubsub.Message
	for _, m := range p.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func newService(t *testing.T, host testutils.Identity, identifier string) (*feed.Service, *feed.Store, *recordingPublisher) {
	t.Helper()

	naddr, err := nip19.EncodeEntity(host.PubKey, event.KindLiveEvent, identifier, nil)
	require.NoError(t, err)

	store := feed.NewStore("")
	pub := &recordingPublisher{}
	svc, err := feed.NewService(feed.Dependencies{
		Store:      store,
		Publisher:  pub,
		StreamLink: "nostr:" + naddr,
	})
	require.NoError(t, err)
	return svc, store, pub
}

func TestServiceRejectsNonAddressLink(t *testing.T) {
	id := testutils.NewIdentity(t)
	npub, err := nip19.EncodePublicKey(id.PubKey)
	require.NoError(t, err)

	_, err = feed.NewService(feed.Dependencies{
		Store:      feed.NewStore(""),
		Publisher:  &recordingPublisher{},
		StreamLink: npub,
	})
	assert.Error(t, err)
}

func TestServicePublishesIngestedEvents(t *testing.T) {
	host := testutils.NewIdentity(t)
	author := testutils.NewIdentity(t)
	svc, _, pub := newService(t, host, "morning-show")

	stream := svc.Link().Address()
	ctx := context.Background()

	msg := testutils.ChatMessage(t, author, stream, "gm", nostr.Now())
	svc.Ingest(ctx, msg)

	published := pub.byTopic(feed.EventIngestedEvent.Name())
	require.Len(t, published, 1)

	payload, err := pubsub.Decode(feed.EventIngestedEvent, published[0])
	require.NoError(t, err)
	assert.Equal(t, msg.ID, payload.EventID)
	assert.Equal(t, event.KindLiveChatMessage, payload.Kind)
	assert.Equal(t, author.PubKey, payload.Pubkey)
	assert.Equal(t, stream, payload.Stream)
	assert.Equal(t, stream, published[0].Stream)
}

func TestServicePublishesStreamUpdates(t *testing.T) {
	host := testutils.NewIdentity(t)
	svc, store, pub := newService(t, host, "morning-show")

	ctx := context.Background()
	live := testutils.LiveEvent(t, host, "morning-show", event.StatusLive, nostr.Tag{"title", "Morning Show"})
	svc.Ingest(ctx, live)

	published := pub.byTopic(feed.StreamUpdatedEvent.Name())
	require.Len(t, published, 1)

	payload, err := pubsub.Decode(feed.StreamUpdatedEvent, published[0])
	require.NoError(t, err)
	assert.Equal(t, string(event.StatusLive), payload.Status)
	assert.Equal(t, "Morning Show", payload.Title)
	assert.Equal(t, host.PubKey, store.Host())
}

func TestServiceIgnoresDuplicates(t *testing.T) {
	host := testutils.NewIdentity(t)
	author := testutils.NewIdentity(t)
	svc, _, pub := newService(t, host, "show")

	ctx := context.Background()
	msg := testutils.ChatMessage(t, author, svc.Link().Address(), "gm", nostr.Now())
	svc.Ingest(ctx, msg)
	svc.Ingest(ctx, msg)

	assert.Len(t, pub.byTopic(feed.EventIngestedEvent.Name()), 1)
}
