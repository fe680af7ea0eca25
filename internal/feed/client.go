package feed

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/badge"
	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/links"
)

// Client wraps a go-nostr SimplePool and knows which filters a live stream
// overlay needs.
type Client struct {
	pool   *nostr.SimplePool
	relays []string
}

// NewClient creates a relay client over the given relay URLs.
func NewClient(ctx context.Context, relays []string) *Client {
	return &Client{
		pool:   nostr.NewSimplePool(ctx),
		relays: relays,
	}
}

// SubscribeStream opens the subscriptions covering a stream: the live event
// itself plus chat messages, zap receipts and badge awards addressed to it.
// Events from all filters are merged onto the returned channel, which closes
// when the context is canceled.
func (c *Client) SubscribeStream(ctx context.Context, link links.Link) <-chan *nostr.Event {
	address := link.Address()

	liveFilter := nostr.Filter{
		Kinds:   []int{event.KindLiveEvent},
		Authors: []string{link.Author},
		Tags:    nostr.TagMap{"d": []string{link.Identifier}},
	}
	activityFilter := nostr.Filter{
		Kinds: []int{event.KindLiveChatMessage, event.KindZapReceipt, event.KindBadgeAward},
		Tags:  nostr.TagMap{"a": []string{address}},
	}

	return c.merge(ctx, liveFilter, activityFilter)
}

// SubscribeUserData opens the subscription covering per-user state: mute
// lists and emoji packs for the given pubkeys. Empty pubkeys are skipped.
func (c *Client) SubscribeUserData(ctx context.Context, pubkeys ...string) <-chan *nostr.Event {
	authors := make([]string, 0, len(pubkeys))
	for _, pk := range pubkeys {
		if pk != "" {
			authors = append(authors, pk)
		}
	}
	if len(authors) == 0 {
		out := make(chan *nostr.Event)
		close(out)
		return out
	}

	filter := nostr.Filter{
		Kinds:   []int{event.KindMuteList, event.KindEmojiSet},
		Authors: authors,
	}
	return c.merge(ctx, filter)
}

// FetchBadgeDefinitions requests the badge definitions for the given
// addresses. Results arrive on the returned channel; the caller should
// bound the context.
func (c *Client) FetchBadgeDefinitions(ctx context.Context, addrs []string) <-chan *nostr.Event {
	authors := make([]string, 0, len(addrs))
	identifiers := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if addr, ok := badge.ParseAddress(a); ok && addr.Kind == event.KindBadgeDefinition {
			authors = append(authors, addr.Author)
			identifiers = append(identifiers, addr.Identifier)
		}
	}
	if len(authors) == 0 {
		out := make(chan *nostr.Event)
		close(out)
		return out
	}

	filter := nostr.Filter{
		Kinds:   []int{event.KindBadgeDefinition},
		Authors: authors,
		Tags:    nostr.TagMap{"d": identifiers},
	}
	return c.merge(ctx, filter)
}

// merge fans the pool subscriptions for each filter into one channel.
func (c *Client) merge(ctx context.Context, filters ...nostr.Filter) <-chan *nostr.Event {
	out := make(chan *nostr.Event)

	var wg sync.WaitGroup
	for _, filter := range filters {
		wg.Add(1)
		go func(f nostr.Filter) {
			defer wg.Done()
			for re := range c.pool.SubscribeMany(ctx, c.relays, f) {
				select {
				case out <- re.Event:
				case <-ctx.Done():
					return
				}
			}
		}(filter)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
