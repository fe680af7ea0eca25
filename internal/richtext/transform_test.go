package richtext

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pubkeyHex = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"
const eventIDHex = "b9f5441e45ca39179320e0031cfb18e34078673dcf3d9be9eddf9a34b1d04b01"

func encodeNpub(t *testing.T) string {
	t.Helper()
	s, err := nip19.EncodePublicKey(pubkeyHex)
	require.NoError(t, err)
	return s
}

func encodeNprofile(t *testing.T) string {
	t.Helper()
	s, err := nip19.EncodeProfile(pubkeyHex, nil)
	require.NoError(t, err)
	return s
}

func encodeNevent(t *testing.T) string {
	t.Helper()
	s, err := nip19.EncodeEvent(eventIDHex, nil, pubkeyHex)
	require.NoError(t, err)
	return s
}

func encodeNaddr(t *testing.T) string {
	t.Helper()
	s, err := nip19.EncodeEntity(pubkeyHex, 30311, "stream-1", nil)
	require.NoError(t, err)
	return s
}

func TestTransformPlainText(t *testing.T) {
	frags := TransformText("just a plain message", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, KindText, frags[0].Kind)
	assert.Equal(t, "just a plain message", frags[0].Text)
}

func TestTransformEmptyString(t *testing.T) {
	frags := TransformText("", nil)
	assert.Empty(t, Flatten(frags))
}

func TestEmojiResolved(t *testing.T) {
	tags := nostr.Tags{{"emoji", "wave", "https://cdn.example.com/wave.png"}}

	frags := TransformText("hello :wave: there", tags)
	require.Len(t, frags, 3)
	assert.Equal(t, "hello ", frags[0].Text)
	assert.Equal(t, KindEmoji, frags[1].Kind)
	assert.Equal(t, "wave", frags[1].Name)
	assert.Equal(t, "https://cdn.example.com/wave.png", frags[1].URL)
	assert.Equal(t, ":wave:", frags[1].Text)
	assert.Equal(t, " there", frags[2].Text)
}

func TestEmojiUnresolvedKeepsColons(t *testing.T) {
	frags := TransformText("hello :wave: there", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, "hello :wave: there", frags[0].Text)
}

func TestEmojiAdjacent(t *testing.T) {
	tags := nostr.Tags{
		{"emoji", "a", "https://e/a.png"},
		{"emoji", "b", "https://e/b.png"},
	}

	frags := TransformText(":a::b:", tags)
	require.Len(t, frags, 2)
	assert.Equal(t, KindEmoji, frags[0].Kind)
	assert.Equal(t, "a", frags[0].Name)
	assert.Equal(t, KindEmoji, frags[1].Kind)
	assert.Equal(t, "b", frags[1].Name)
}

func TestEmojiMissThenHit(t *testing.T) {
	tags := nostr.Tags{{"emoji", "b", "https://e/b.png"}}

	frags := TransformText(":a::b:", tags)
	require.Len(t, frags, 2)
	assert.Equal(t, ":a:", frags[0].Text)
	assert.Equal(t, "b", frags[1].Name)
}

func TestMentionExtraction(t *testing.T) {
	for _, enc := range []string{encodeNprofile(t), encodeNpub(t)} {
		content := "gm nostr:" + enc + " !"
		frags := TransformText(content, nil)
		require.Len(t, frags, 3, content)
		assert.Equal(t, "gm ", frags[0].Text)
		assert.Equal(t, KindMention, frags[1].Kind)
		assert.Equal(t, pubkeyHex, frags[1].Pubkey)
		assert.Equal(t, " !", frags[2].Text)
	}
}

func TestEventReferenceExtraction(t *testing.T) {
	content := "look at nostr:" + encodeNevent(t)
	frags := TransformText(content, nil)
	require.Len(t, frags, 2)
	assert.Equal(t, KindEventRef, frags[1].Kind)
	require.NotNil(t, frags[1].Link)
	assert.Equal(t, eventIDHex, frags[1].Link.ID)
}

func TestAddressReferenceExtraction(t *testing.T) {
	content := "watch nostr:" + encodeNaddr(t) + " live"
	frags := TransformText(content, nil)
	require.Len(t, frags, 3)
	assert.Equal(t, KindAddressRef, frags[1].Kind)
	require.NotNil(t, frags[1].Link)
	assert.Equal(t, 30311, frags[1].Link.Kind)
	assert.Equal(t, "stream-1", frags[1].Link.Identifier)
}

func TestDecodeFailureKeepsTextVerbatim(t *testing.T) {
	// A well-prefixed token with a corrupt payload must survive unchanged.
	for _, bad := range []string{
		"nostr:nprofile1qqqqqqqq",
		"nostr:nevent1xxxx0000",
		"nostr:naddr1notvalid",
		"nostr:npub1zzzzzzzz",
		"nostr:note1qqqqqq",
	} {
		content := "before " + bad + " after"
		frags := TransformText(content, nil)
		assert.Equal(t, content, Flatten(frags), bad)
		for _, f := range frags {
			assert.Equal(t, KindText, f.Kind, bad)
		}
	}
}

func TestHyperlinks(t *testing.T) {
	frags := TransformText("see https://zap.stream and HTTP://EXAMPLE.COM ok", nil)
	require.Len(t, frags, 5)
	assert.Equal(t, "see ", frags[0].Text)
	assert.Equal(t, KindLink, frags[1].Kind)
	assert.Equal(t, "https://zap.stream", frags[1].URL)
	assert.Equal(t, " and ", frags[2].Text)
	assert.Equal(t, KindLink, frags[3].Kind)
	assert.Equal(t, "HTTP://EXAMPLE.COM", frags[3].URL)
	assert.Equal(t, " ok", frags[4].Text)
}

func TestMagnetLink(t *testing.T) {
	frags := TransformText("magnet:?xt=urn:btih:deadbeef", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, KindLink, frags[0].Kind)
}

func TestWebNostrSchemeValidated(t *testing.T) {
	// The npub pass claims the embedded nostr: token first, so the web+
	// prefix survives as text next to the mention.
	valid := "web+nostr:" + encodeNpub(t)
	frags := TransformText(valid, nil)
	require.Len(t, frags, 2)
	assert.Equal(t, "web+", frags[0].Text)
	assert.Equal(t, KindMention, frags[1].Kind)

	// Scheme-matched but structurally malformed: plain text, not a link.
	frags = TransformText("web+nostr:garbage", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, KindText, frags[0].Kind)

	frags = TransformText("nostr:nonsense", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, KindText, frags[0].Kind)
}

func TestOpaqueFragmentsPassThrough(t *testing.T) {
	tags := nostr.Tags{{"emoji", "wave", "https://e/wave.png"}}
	in := []Fragment{
		Opaque("already rendered"),
		TextFragment(":wave:"),
		Opaque(42),
	}

	out := Transform(in, tags)
	require.Len(t, out, 3)
	assert.Equal(t, KindOpaque, out[0].Kind)
	assert.Equal(t, KindEmoji, out[1].Kind)
	assert.Equal(t, KindOpaque, out[2].Kind)
}

func TestTokensDoNotReassembleAcrossBoundaries(t *testing.T) {
	npub := encodeNpub(t)
	// The token is split across two pre-existing fragments; neither half
	// may be recognized.
	half := len(npub) / 2
	in := []Fragment{
		TextFragment("nostr:" + npub[:half]),
		TextFragment(npub[half:]),
	}

	out := Transform(in, nil)
	for _, f := range out {
		assert.Equal(t, KindText, f.Kind)
	}
	assert.Equal(t, "nostr:"+npub, Flatten(out))
}

func TestLosslessConcatenation(t *testing.T) {
	tags := nostr.Tags{{"emoji", "gg", "https://e/gg.png"}}
	content := "gg :gg: nostr:" + encodeNevent(t) + "\nhttps://zap.stream :miss: end"

	frags := TransformText(content, tags)
	assert.Equal(t, content, Flatten(frags))
	assert.True(t, strings.Contains(Flatten(frags), ":miss:"))
}
