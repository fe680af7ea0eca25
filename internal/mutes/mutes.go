// Package mutes models moderation snapshots. Two independent sets are in
// play for any stream view: the viewer's own mute list and the host's. Both
// are read-only snapshots rebuilt from the latest mute-list events on every
// aggregation pass; this package never mutates list events.
package mutes

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
)

// Set is a snapshot of muted pubkeys.
type Set map[string]struct{}

// NewSet builds a Set from raw pubkeys.
func NewSet(pubkeys ...string) Set {
	s := make(Set, len(pubkeys))
	for _, pk := range pubkeys {
		s[pk] = struct{}{}
	}
	return s
}

// FromEvent builds a Set from a kind-10000 mute list's "p" tags. A nil event
// yields an empty set.
func FromEvent(ev *nostr.Event) Set {
	if ev == nil {
		return Set{}
	}
	return NewSet(event.Values(ev.Tags, "p")...)
}

// Contains reports whether pubkey is muted. Safe on a nil Set.
func (s Set) Contains(pubkey string) bool {
	_, ok := s[pubkey]
	return ok
}

// Union merges sets into a new Set. Used where a single combined snapshot
// is needed, such as the alert speech gate.
func Union(sets ...Set) Set {
	merged := Set{}
	for _, s := range sets {
		for pk := range s {
			merged[pk] = struct{}{}
		}
	}
	return merged
}

// Either reports whether pubkey appears in any of the given sets. Timeline
// and alert filtering drop an author muted by the viewer or the host.
func Either(pubkey string, sets ...Set) bool {
	for _, s := range sets {
		if s.Contains(pubkey) {
			return true
		}
	}
	return false
}
