package links

import (
	"testing"

	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pubkeyHex = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"
const eventIDHex = "b9f5441e45ca39179320e0031cfb18e34078673dcf3d9be9eddf9a34b1d04b01"

func TestParseProfile(t *testing.T) {
	npub, err := nip19.EncodePublicKey(pubkeyHex)
	require.NoError(t, err)

	for _, token := range []string{npub, "nostr:" + npub, "web+nostr:" + npub} {
		link, err := Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, TypeProfile, link.Type)
		assert.Equal(t, pubkeyHex, link.ID)
	}

	nprofile, err := nip19.EncodeProfile(pubkeyHex, []string{"wss://relay.example.com"})
	require.NoError(t, err)

	link, err := Parse("nostr:" + nprofile)
	require.NoError(t, err)
	assert.Equal(t, TypeProfile, link.Type)
	assert.Equal(t, pubkeyHex, link.ID)
	assert.Equal(t, []string{"wss://relay.example.com"}, link.Relays)
}

func TestParseEvent(t *testing.T) {
	note, err := nip19.EncodeNote(eventIDHex)
	require.NoError(t, err)

	link, err := Parse(note)
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, link.Type)
	assert.Equal(t, eventIDHex, link.ID)

	nevent, err := nip19.EncodeEvent(eventIDHex, nil, pubkeyHex)
	require.NoError(t, err)

	link, err = Parse("nostr:" + nevent)
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, link.Type)
	assert.Equal(t, eventIDHex, link.ID)
	assert.Equal(t, pubkeyHex, link.Author)
}

func TestParseAddress(t *testing.T) {
	naddr, err := nip19.EncodeEntity(pubkeyHex, 30311, "stream-1", nil)
	require.NoError(t, err)

	link, err := Parse(naddr)
	require.NoError(t, err)
	assert.Equal(t, TypeAddress, link.Type)
	assert.Equal(t, pubkeyHex, link.Author)
	assert.Equal(t, 30311, link.Kind)
	assert.Equal(t, "stream-1", link.Identifier)
	assert.Equal(t, "30311:"+pubkeyHex+":stream-1", link.Address())
}

func TestParseFailure(t *testing.T) {
	for _, token := range []string{
		"",
		"not-an-entity",
		"nostr:npub1zzzzzzzzz",          // bad checksum
		"nostr:nprofile1qqsw3dy8cpuXXX", // invalid charset
	} {
		_, err := Parse(token)
		assert.Error(t, err, token)
	}
	assert.False(t, Valid("nostr:npub1zzzzzzzzz"))
}

func TestStripURI(t *testing.T) {
	assert.Equal(t, "npub1abc", StripURI("nostr:npub1abc"))
	assert.Equal(t, "npub1abc", StripURI("web+nostr:npub1abc"))
	assert.Equal(t, "npub1abc", StripURI("npub1abc"))
	// Scheme match is case-insensitive but the payload is untouched.
	assert.Equal(t, "npub1ABC", StripURI("NOSTR:npub1ABC"))
}
