// Package zaps reconciles zap receipts with the payment requests embedded in
// them and derives the ParsedZap view consumed by the timeline and the alert
// queue. A receipt that cannot be reconciled is marked invalid and excluded
// from every derived view; nothing here is an error the rendering surface
// sees.
package zaps

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
)

// ParsedZap is the derived form of a kind-9735 zap receipt.
type ParsedZap struct {
	// ID is the receipt event id.
	ID string
	// Valid reports whether the receipt reconciled with its embedded
	// payment request.
	Valid bool
	// Amount is the payment amount in whole sats.
	Amount int64
	// Sender is the zapper's pubkey. Empty for anonymous zaps.
	Sender string
	// Receiver is the zapped pubkey.
	Receiver string
	// Content is the optional zap comment.
	Content string
	// AnonZap is set when the request carried an anon marker.
	AnonZap bool
	// CreatedAt is the receipt timestamp, kept for timeline ordering.
	CreatedAt nostr.Timestamp
}

// Parse derives a ParsedZap from a zap receipt. It never fails; receipts that
// cannot be reconciled come back with Valid=false.
func Parse(receipt *nostr.Event) ParsedZap {
	zap := ParsedZap{ID: receipt.ID, CreatedAt: receipt.CreatedAt}

	receiver, ok := event.TagValue(receipt, "p")
	if !ok {
		return zap
	}
	zap.Receiver = receiver

	desc, ok := event.TagValue(receipt, "description")
	if !ok {
		return zap
	}
	var request nostr.Event
	if err := json.Unmarshal([]byte(desc), &request); err != nil {
		return zap
	}
	if ok, err := request.CheckSignature(); err != nil || !ok {
		return zap
	}

	zap.Sender = request.PubKey
	zap.Content = request.Content
	if _, anon := event.FirstValue(request.Tags, "anon"); anon {
		zap.AnonZap = true
		zap.Sender = ""
	}

	// Amount comes from the request's millisat amount tag; the bolt11
	// invoice on the receipt must agree when both are present.
	requestMsats := int64(-1)
	if s, ok := event.FirstValue(request.Tags, "amount"); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return zap
		}
		requestMsats = n
	}
	invoiceMsats := int64(-1)
	if bolt11, ok := event.TagValue(receipt, "bolt11"); ok {
		if n, err := invoiceAmountMsats(bolt11); err == nil {
			invoiceMsats = n
		}
	}

	switch {
	case requestMsats >= 0 && invoiceMsats >= 0:
		if requestMsats != invoiceMsats {
			return zap
		}
		zap.Amount = requestMsats / 1000
	case requestMsats >= 0:
		zap.Amount = requestMsats / 1000
	case invoiceMsats >= 0:
		zap.Amount = invoiceMsats / 1000
	default:
		return zap
	}

	zap.Valid = true
	return zap
}

// msatsPerBTC is the msat value of one whole coin in a bolt11 HRP.
const msatsPerBTC = 100_000_000_000

// invoiceAmountMsats reads the amount encoded in a bolt11 invoice's
// human-readable part. Only the HRP is inspected; the rest of the invoice is
// opaque to this layer.
func invoiceAmountMsats(invoice string) (int64, error) {
	hrp := strings.ToLower(invoice)
	if i := strings.LastIndex(hrp, "1"); i > 0 {
		hrp = hrp[:i]
	}
	for _, prefix := range []string{"lnbcrt", "lntbs", "lntb", "lnbc"} {
		if strings.HasPrefix(hrp, prefix) {
			hrp = hrp[len(prefix):]
			if hrp == "" {
				return 0, errNoAmount
			}
			return parseHRPAmount(hrp)
		}
	}
	return 0, errNoAmount
}

var errNoAmount = errors.New("zaps: no amount in invoice")

func parseHRPAmount(s string) (int64, error) {
	divisor := int64(1)
	switch s[len(s)-1] {
	case 'm':
		divisor = 1_000
		s = s[:len(s)-1]
	case 'u':
		divisor = 1_000_000
		s = s[:len(s)-1]
	case 'n':
		divisor = 1_000_000_000
		s = s[:len(s)-1]
	case 'p':
		divisor = 1_000_000_000_000
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt64/msatsPerBTC {
		return 0, errNoAmount
	}
	total := n * msatsPerBTC
	if total%divisor != 0 {
		return 0, errNoAmount
	}
	return total / divisor, nil
}
