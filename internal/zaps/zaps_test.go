package zaps

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedRequest builds a signed zap request embedding the given tags.
func signedRequest(t *testing.T, content string, tags nostr.Tags) (string, string) {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)

	req := nostr.Event{
		Kind:      9734,
		PubKey:    pk,
		CreatedAt: nostr.Timestamp(1700000000),
		Tags:      tags,
		Content:   content,
	}
	require.NoError(t, req.Sign(sk))

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	return string(raw), pk
}

func receipt(desc string, tags nostr.Tags) *nostr.Event {
	ev := &nostr.Event{
		ID:        "receipt-id",
		Kind:      9735,
		CreatedAt: nostr.Timestamp(1700000100),
		Tags:      append(nostr.Tags{{"description", desc}}, tags...),
	}
	return ev
}

func TestParseValidZap(t *testing.T) {
	desc, sender := signedRequest(t, "great stream!", nostr.Tags{
		{"amount", "21000000"}, // 21k sats in msats
		{"p", "host-pubkey"},
	})
	ev := receipt(desc, nostr.Tags{{"p", "host-pubkey"}})

	zap := Parse(ev)
	assert.True(t, zap.Valid)
	assert.Equal(t, "receipt-id", zap.ID)
	assert.Equal(t, int64(21000), zap.Amount)
	assert.Equal(t, sender, zap.Sender)
	assert.Equal(t, "host-pubkey", zap.Receiver)
	assert.Equal(t, "great stream!", zap.Content)
	assert.False(t, zap.AnonZap)
	assert.Equal(t, nostr.Timestamp(1700000100), zap.CreatedAt)
}

func TestParseAnonZap(t *testing.T) {
	desc, _ := signedRequest(t, "", nostr.Tags{
		{"amount", "1000"},
		{"anon", ""},
	})
	ev := receipt(desc, nostr.Tags{{"p", "host-pubkey"}})

	zap := Parse(ev)
	assert.True(t, zap.Valid)
	assert.True(t, zap.AnonZap)
	assert.Empty(t, zap.Sender)
}

func TestParseInvalidCases(t *testing.T) {
	goodDesc, _ := signedRequest(t, "hi", nostr.Tags{{"amount", "1000"}})

	t.Run("missing receiver", func(t *testing.T) {
		ev := receipt(goodDesc, nil)
		assert.False(t, Parse(ev).Valid)
	})

	t.Run("missing description", func(t *testing.T) {
		ev := &nostr.Event{ID: "x", Kind: 9735, Tags: nostr.Tags{{"p", "host"}}}
		assert.False(t, Parse(ev).Valid)
	})

	t.Run("malformed description", func(t *testing.T) {
		ev := receipt("{not json", nostr.Tags{{"p", "host"}})
		assert.False(t, Parse(ev).Valid)
	})

	t.Run("bad signature", func(t *testing.T) {
		var req nostr.Event
		require.NoError(t, json.Unmarshal([]byte(goodDesc), &req))
		req.Content = "tampered"
		raw, err := json.Marshal(req)
		require.NoError(t, err)
		ev := receipt(string(raw), nostr.Tags{{"p", "host"}})
		assert.False(t, Parse(ev).Valid)
	})

	t.Run("no amount anywhere", func(t *testing.T) {
		desc, _ := signedRequest(t, "hi", nil)
		ev := receipt(desc, nostr.Tags{{"p", "host"}})
		assert.False(t, Parse(ev).Valid)
	})

	t.Run("amount mismatch with invoice", func(t *testing.T) {
		desc, _ := signedRequest(t, "hi", nostr.Tags{{"amount", "1000000"}})
		// Invoice says 10 sats (100n btc ... ) vs request's 1000 sats.
		ev := receipt(desc, nostr.Tags{{"p", "host"}, {"bolt11", "lnbc100n1rest"}})
		assert.False(t, Parse(ev).Valid)
	})
}

func TestParseAmountFromInvoice(t *testing.T) {
	desc, _ := signedRequest(t, "hi", nil)
	// 210u btc = 21_000 sats.
	ev := receipt(desc, nostr.Tags{{"p", "host"}, {"bolt11", "lnbc210u1qqqsig"}})

	zap := Parse(ev)
	assert.True(t, zap.Valid)
	assert.Equal(t, int64(21000), zap.Amount)
}

func TestInvoiceAmountMsats(t *testing.T) {
	cases := []struct {
		invoice string
		msats   int64
		ok      bool
	}{
		{"lnbc1pvjluez", 0, false}, // no amount
		{"lnbc2500u1qqq", 250_000_000, true},
		{"lnbc20m1qqq", 2_000_000_000, true},
		{"lnbc100n1qqq", 10_000, true},
		{"lnbc1p1qqq", 0, false}, // sub-msat precision rejected
		{"lntb500u1qqq", 50_000_000, true},
		{"garbage", 0, false},
		// Amounts whose msat total cannot fit in an int64 are rejected,
		// never wrapped into a bogus positive value.
		{"lnbc92233721m1qqq", 0, false},
		{"lnbc9223372036854775807p1qqq", 0, false},
	}

	for _, tc := range cases {
		got, err := invoiceAmountMsats(tc.invoice)
		if tc.ok {
			assert.NoError(t, err, tc.invoice)
			assert.Equal(t, tc.msats, got, tc.invoice)
		} else {
			assert.Error(t, err, tc.invoice)
		}
	}
}

func TestInvoiceAmountErrorIsOwnSentinel(t *testing.T) {
	_, err := invoiceAmountMsats("lnbc1pvjluez")
	require.Error(t, err)
	// The missing-amount error must not match strconv's sentinels, or a
	// caller inspecting parse failures would conflate the two.
	assert.False(t, errors.Is(err, strconv.ErrSyntax))
	assert.True(t, errors.Is(err, errNoAmount))
}
