package event

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
)

func TestFirstValue(t *testing.T) {
	tags := nostr.Tags{
		{"p", "alice"},
		{"p", "bob"},
		{"title", "My Stream"},
		{"broken"},
	}

	v, ok := FirstValue(tags, "p")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	v, ok = FirstValue(tags, "title")
	assert.True(t, ok)
	assert.Equal(t, "My Stream", v)

	_, ok = FirstValue(tags, "missing")
	assert.False(t, ok)

	// A tag with no value slot is skipped, not matched.
	_, ok = FirstValue(tags, "broken")
	assert.False(t, ok)
}

func TestValues(t *testing.T) {
	tags := nostr.Tags{
		{"p", "alice"},
		{"e", "event1"},
		{"p", "bob"},
		{"p", "carol"},
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, Values(tags, "p"))
	assert.Equal(t, []string{"event1"}, Values(tags, "e"))
	assert.Nil(t, Values(tags, "a"))
}

func TestFindWithValue(t *testing.T) {
	tags := nostr.Tags{
		{"emoji", "wave", "https://example.com/wave.png"},
		{"emoji", "pog", "https://example.com/pog.png"},
	}

	tag, ok := FindWithValue(tags, "emoji", "pog")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/pog.png", tag[2])

	_, ok = FindWithValue(tags, "emoji", "nope")
	assert.False(t, ok)
}

func TestHost(t *testing.T) {
	t.Run("falls back to author", func(t *testing.T) {
		ev := &nostr.Event{PubKey: "author", Tags: nostr.Tags{{"p", "guest", "", "participant"}}}
		assert.Equal(t, "author", Host(ev))
	})

	t.Run("prefers host role", func(t *testing.T) {
		ev := &nostr.Event{
			PubKey: "author",
			Tags: nostr.Tags{
				{"p", "guest", "", "participant"},
				{"p", "streamer", "", "host"},
			},
		}
		assert.Equal(t, "streamer", Host(ev))
	})

	t.Run("nil event", func(t *testing.T) {
		assert.Equal(t, "", Host(nil))
	})
}

func TestInfoFromEvent(t *testing.T) {
	ev := &nostr.Event{
		Kind: KindLiveEvent,
		Tags: nostr.Tags{
			{"d", "stream-1"},
			{"title", "Coding live"},
			{"summary", "writing go"},
			{"status", "live"},
			{"starts", "1700000000"},
			{"current_participants", "42"},
		},
	}

	info := InfoFromEvent(ev)
	assert.Equal(t, "stream-1", info.Identifier)
	assert.Equal(t, "Coding live", info.Title)
	assert.Equal(t, StatusLive, info.Status)
	assert.Equal(t, int64(1700000000), info.Starts)
	assert.Equal(t, 42, info.Participants)

	// Malformed numbers degrade to zero rather than erroring.
	bad := &nostr.Event{Tags: nostr.Tags{{"starts", "soon"}, {"current_participants", "many"}}}
	info = InfoFromEvent(bad)
	assert.Zero(t, info.Starts)
	assert.Zero(t, info.Participants)
}
