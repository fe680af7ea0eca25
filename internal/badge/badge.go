// Package badge models NIP-58 badge awards as they appear in stream chat.
// An award references its badge definition out-of-band; a missing definition
// degrades the rendering to recipients-only, never to an error.
package badge

import (
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
)

// Address identifies an addressable badge definition by kind, author and
// identifier.
type Address struct {
	Kind       int
	Author     string
	Identifier string
}

// String renders the kind:pubkey:identifier lookup key.
func (a Address) String() string {
	return strconv.Itoa(a.Kind) + ":" + a.Author + ":" + a.Identifier
}

// ParseAddress splits a kind:pubkey:identifier triple. The identifier may
// itself contain colons.
func ParseAddress(s string) (Address, bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Address{}, false
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return Address{}, false
	}
	return Address{Kind: kind, Author: parts[1], Identifier: parts[2]}, true
}

// Award is a badge award extracted from a kind-8 event.
type Award struct {
	// EventID is the award event's id.
	EventID string
	// Awarder is the award event's author.
	Awarder string
	// CreatedAt orders the award on the timeline.
	CreatedAt nostr.Timestamp
	// Definition addresses the awarded badge. Zero-valued when the award
	// carried no usable "a" tag.
	Definition Address
	// Recipients are the awarded pubkeys, one per "p" tag.
	Recipients []string
}

// FromEvent extracts an Award from a badge award event.
func FromEvent(ev *nostr.Event) Award {
	aw := Award{EventID: ev.ID, Awarder: ev.PubKey, CreatedAt: ev.CreatedAt}
	if a, ok := event.TagValue(ev, "a"); ok {
		aw.Definition, _ = ParseAddress(a)
	}
	aw.Recipients = event.Values(ev.Tags, "p")
	return aw
}

// Definition is the displayable subset of a badge definition event.
type Definition struct {
	Name      string
	Image     string
	Thumbnail string
}

// DefinitionLookup resolves a badge definition address to its latest event.
// Supplied by the subscription layer; returns false when unknown.
type DefinitionLookup interface {
	BadgeDefinition(addr Address) (*nostr.Event, bool)
}

// Resolve looks up an award's definition. The second return is false when
// the definition is unavailable; callers still render the recipients.
func (aw Award) Resolve(lookup DefinitionLookup) (Definition, bool) {
	if lookup == nil || aw.Definition == (Address{}) {
		return Definition{}, false
	}
	ev, ok := lookup.BadgeDefinition(aw.Definition)
	if !ok || ev == nil {
		return Definition{}, false
	}
	def := Definition{}
	def.Name, _ = event.TagValue(ev, "name")
	if def.Name == "" {
		def.Name, _ = event.TagValue(ev, "d")
	}
	def.Image, _ = event.TagValue(ev, "image")
	def.Thumbnail, _ = event.TagValue(ev, "thumb")
	return def, true
}
