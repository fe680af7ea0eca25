// Package timeline merges chat messages, zap receipts and badge awards into
// the single moderated, chronologically sorted sequence the overlay renders.
// Aggregation is pure: recomputing from an unchanged snapshot yields an
// identical ordered output.
package timeline

import (
	"sort"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/badge"
	"github.com/rolznz/zap.stream/internal/mutes"
	"github.com/rolznz/zap.stream/internal/zaps"
)

// BigZapThreshold is the whole-sat amount at which a zap gets distinguished
// visual treatment.
const BigZapThreshold = 50_000

// AnonZapper is the ranking bucket for zaps with no attributable sender.
const AnonZapper = "anon"

// ItemKind discriminates timeline entries.
type ItemKind int

const (
	ItemChatMessage ItemKind = iota
	ItemZapReceipt
	ItemBadgeAward
)

// Item is one visible timeline entry. Zap and Award are populated for their
// respective kinds; Event is always the originating signed event.
type Item struct {
	Kind  ItemKind
	Event *nostr.Event
	Zap   *zaps.ParsedZap
	Award *badge.Award
}

// CreatedAt returns the originating event's timestamp.
func (it Item) CreatedAt() nostr.Timestamp {
	return it.Event.CreatedAt
}

// Author returns the originating event's author, the identity moderation
// checks run against.
func (it Item) Author() string {
	return it.Event.PubKey
}

// IsBigZap reports whether a zap item is at or above the big-zap threshold.
// Purely a function of amount, never of sender.
func (it Item) IsBigZap() bool {
	return it.Kind == ItemZapReceipt && it.Zap != nil && it.Zap.Amount >= BigZapThreshold
}

// ZapperTotal is one row of the top-payers ranking.
type ZapperTotal struct {
	Pubkey string
	Amount int64
}

// Snapshot is one aggregation pass's input: the latest event sets and
// moderation state pushed by the subscription layer. All fields are
// read-only to this package.
type Snapshot struct {
	// Host is the stream host pubkey; zap receipts for other receivers
	// are not part of this stream's timeline.
	Host string
	// Messages, ZapReceipts and Awards are the raw event sets.
	Messages    []*nostr.Event
	ZapReceipts []*nostr.Event
	Awards      []*nostr.Event
	// ViewerMutes and HostMutes are the two independent moderation
	// snapshots; membership in either hides an author.
	ViewerMutes mutes.Set
	HostMutes   mutes.Set
}

// View is the aggregated projection the rendering surface consumes.
type View struct {
	// Items is the moderated timeline, most recent first.
	Items []Item
	// TopZappers ranks senders of valid zaps by descending total amount.
	// It is a separate view from Items: moderation does not apply here.
	TopZappers []ZapperTotal
	// HasMessages reports whether any chat message has arrived yet; the
	// display layer keeps a loading indicator up until it flips.
	HasMessages bool
}

// Aggregate recomputes the timeline view from a snapshot.
func Aggregate(snap Snapshot) View {
	view := View{HasMessages: len(snap.Messages) > 0}

	items := make([]Item, 0, len(snap.Messages)+len(snap.ZapReceipts)+len(snap.Awards))
	for _, ev := range snap.Messages {
		items = append(items, Item{Kind: ItemChatMessage, Event: ev})
	}

	var valid []zaps.ParsedZap
	for _, ev := range snap.ZapReceipts {
		zap := zaps.Parse(ev)
		if !zap.Valid {
			continue
		}
		valid = append(valid, zap)
		if snap.Host != "" && zap.Receiver != snap.Host {
			continue
		}
		z := zap
		items = append(items, Item{Kind: ItemZapReceipt, Event: ev, Zap: &z})
	}

	for _, ev := range snap.Awards {
		aw := badge.FromEvent(ev)
		items = append(items, Item{Kind: ItemBadgeAward, Event: ev, Award: &aw})
	}

	// Moderation runs on every pass so live mute-list edits take effect
	// immediately.
	filtered := items[:0]
	for _, it := range items {
		if mutes.Either(it.Author(), snap.ViewerMutes, snap.HostMutes) {
			continue
		}
		filtered = append(filtered, it)
	}

	// Most recent first; ties keep concatenation order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt() > filtered[j].CreatedAt()
	})

	view.Items = filtered
	view.TopZappers = rankZappers(valid)
	return view
}

// rankZappers sums valid zaps per sender and orders by descending total.
// Anonymous zaps pool into a single bucket. Equal totals order by pubkey so
// the ranking is deterministic.
func rankZappers(valid []zaps.ParsedZap) []ZapperTotal {
	totals := make(map[string]int64)
	for _, z := range valid {
		sender := z.Sender
		if z.AnonZap || sender == "" {
			sender = AnonZapper
		}
		totals[sender] += z.Amount
	}
	out := make([]ZapperTotal, 0, len(totals))
	for pk, amount := range totals {
		out = append(out, ZapperTotal{Pubkey: pk, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Pubkey < out[j].Pubkey
	})
	return out
}
