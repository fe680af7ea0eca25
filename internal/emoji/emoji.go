// Package emoji models NIP-30 custom emoji packs and the per-stream union of
// viewer and channel packs used to resolve chat shortcodes.
package emoji

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
)

// Emoji is one shortcode/image pair from a pack.
type Emoji struct {
	Name string
	URL  string
}

// Pack is a custom emoji set published as an addressable event.
type Pack struct {
	Author     string
	Identifier string
	Name       string
	Emoji      []Emoji
}

// ID is the pack's addressable identity. Packs with equal IDs are the same
// pack regardless of which subscription they arrived on.
func (p Pack) ID() string {
	return fmt.Sprintf("%d:%s:%s", event.KindEmojiSet, p.Author, p.Identifier)
}

// FromEvent reads a kind-30030 emoji set. Tags that are not well-formed
// emoji entries are skipped.
func FromEvent(ev *nostr.Event) Pack {
	p := Pack{Author: ev.PubKey}
	p.Identifier, _ = event.TagValue(ev, "d")
	p.Name, _ = event.TagValue(ev, "title")
	if p.Name == "" {
		p.Name = p.Identifier
	}
	for _, t := range ev.Tags {
		if len(t) >= 3 && t[0] == "emoji" {
			p.Emoji = append(p.Emoji, Emoji{Name: t[1], URL: t[2]})
		}
	}
	return p
}

// Union merges the viewer's packs with the channel's, deduplicated by pack
// ID. Viewer packs are listed first, so on a duplicate the viewer's copy
// wins.
func Union(viewer, channel []Pack) []Pack {
	seen := make(map[string]struct{}, len(viewer)+len(channel))
	out := make([]Pack, 0, len(viewer)+len(channel))
	for _, p := range append(append([]Pack{}, viewer...), channel...) {
		if _, dup := seen[p.ID()]; dup {
			continue
		}
		seen[p.ID()] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Tags flattens packs into event-style emoji tags so pack emoji can feed the
// tokenizer's shortcode table alongside an event's own tags.
func Tags(packs []Pack) nostr.Tags {
	var tags nostr.Tags
	for _, p := range packs {
		for _, e := range p.Emoji {
			tags = append(tags, nostr.Tag{"emoji", e.Name, e.URL})
		}
	}
	return tags
}
