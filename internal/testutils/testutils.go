// Package testutils builds signed nostr event fixtures for tests. Every
// helper signs with a real key so signature-checking code paths behave as
// they do in production.
package testutils

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/require"

	"github.com/rolznz/zap.stream/internal/event"
)

// Identity is a signing keypair for fixtures.
type Identity struct {
	SecretKey string
	PubKey    string
}

// NewIdentity generates a fresh keypair.
func NewIdentity(t *testing.T) Identity {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	return Identity{SecretKey: sk, PubKey: pk}
}

// Sign signs and returns the event, filling ID and Sig.
func Sign(t *testing.T, id Identity, ev nostr.Event) *nostr.Event {
	t.Helper()
	ev.PubKey = id.PubKey
	require.NoError(t, ev.Sign(id.SecretKey))
	return &ev
}

// LiveEvent builds a kind-30311 live event with the given identifier and
// status. Extra tags are appended as-is.
func LiveEvent(t *testing.T, host Identity, identifier string, status event.StreamStatus, extra ...nostr.Tag) *nostr.Event {
	t.Helper()
	tags := nostr.Tags{
		{"d", identifier},
		{"status", string(status)},
	}
	tags = append(tags, extra...)
	return Sign(t, host, nostr.Event{
		Kind:      event.KindLiveEvent,
		CreatedAt: nostr.Now(),
		Tags:      tags,
	})
}

// ChatMessage builds a kind-1311 live chat message addressed to a stream.
func ChatMessage(t *testing.T, author Identity, stream, content string, createdAt nostr.Timestamp) *nostr.Event {
	t.Helper()
	return Sign(t, author, nostr.Event{
		Kind:      event.KindLiveChatMessage,
		CreatedAt: createdAt,
		Content:   content,
		Tags:      nostr.Tags{{"a", stream}},
	})
}

// ZapReceipt builds a kind-9735 zap receipt whose embedded zap request is
// signed by the sender and carries the amount in millisats.
func ZapReceipt(t *testing.T, sender Identity, receiver, stream string, sats int64, comment string, createdAt nostr.Timestamp) *nostr.Event {
	t.Helper()

	msats := strconv.FormatInt(sats*1000, 10)
	request := nostr.Event{
		Kind:      9734,
		CreatedAt: createdAt,
		Content:   comment,
		Tags: nostr.Tags{
			{"p", receiver},
			{"a", stream},
			{"amount", msats},
		},
	}
	request.PubKey = sender.PubKey
	require.NoError(t, request.Sign(sender.SecretKey))

	description, err := json.Marshal(request)
	require.NoError(t, err)

	service := NewIdentity(t)
	return Sign(t, service, nostr.Event{
		Kind:      event.KindZapReceipt,
		CreatedAt: createdAt,
		Tags: nostr.Tags{
			{"p", receiver},
			{"a", stream},
			{"description", string(description)},
		},
	})
}

// MuteList builds a kind-10000 mute list muting the given pubkeys.
func MuteList(t *testing.T, owner Identity, muted ...string) *nostr.Event {
	t.Helper()
	tags := make(nostr.Tags, 0, len(muted))
	for _, pk := range muted {
		tags = append(tags, nostr.Tag{"p", pk})
	}
	return Sign(t, owner, nostr.Event{
		Kind:      event.KindMuteList,
		CreatedAt: nostr.Now(),
		Tags:      tags,
	})
}

// EmojiSet builds a kind-30030 emoji pack with name/url emoji pairs.
func EmojiSet(t *testing.T, author Identity, identifier string, emoji map[string]string) *nostr.Event {
	t.Helper()
	tags := nostr.Tags{{"d", identifier}}
	for name, url := range emoji {
		tags = append(tags, nostr.Tag{"emoji", name, url})
	}
	return Sign(t, author, nostr.Event{
		Kind:      event.KindEmojiSet,
		CreatedAt: nostr.Now(),
		Tags:      tags,
	})
}

// BadgeAward builds a kind-8 badge award for the given definition address
// and recipients.
func BadgeAward(t *testing.T, awarder Identity, definitionAddr string, createdAt nostr.Timestamp, recipients ...string) *nostr.Event {
	t.Helper()
	tags := nostr.Tags{{"a", definitionAddr}}
	for _, pk := range recipients {
		tags = append(tags, nostr.Tag{"p", pk})
	}
	return Sign(t, awarder, nostr.Event{
		Kind:      event.KindBadgeAward,
		CreatedAt: createdAt,
		Tags:      tags,
	})
}

// BadgeDefinition builds a kind-30009 badge definition.
func BadgeDefinition(t *testing.T, author Identity, identifier, name, image string) *nostr.Event {
	t.Helper()
	return Sign(t, author, nostr.Event{
		Kind:      event.KindBadgeDefinition,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"d", identifier},
			{"name", name},
			{"image", image},
		},
	})
}
