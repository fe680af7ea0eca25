// Package feed subscribes to nostr relays for a live stream's activity and
// maintains the in-memory state the timeline and alert modules read from.
package feed

import (
	"sort"
	"sync"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/badge"
	"github.com/rolznz/zap.stream/internal/emoji"
	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/mutes"
	"github.com/rolznz/zap.stream/internal/timeline"
)

// Store holds everything received from relays for one stream: the live
// event itself, chat messages, zap receipts, badge awards, mute lists,
// emoji packs and badge definitions. All methods are safe for concurrent
// use.
type Store struct {
	mu sync.RWMutex

	liveEvent *nostr.Event
	messages  *eventList
	zaps      *eventList
	awards    *eventList

	// muteLists maps a pubkey to its latest kind-10000 event.
	muteLists map[string]*nostr.Event
	// emojiPacks maps a pack ID (kind:author:d) to its latest event.
	emojiPacks map[string]*nostr.Event
	// badgeDefs maps a badge address (kind:author:d) to its latest event.
	badgeDefs map[string]*nostr.Event

	// viewer and host pubkeys, used to pick the relevant mute lists.
	viewer string
	host   string
}

var _ badge.DefinitionLookup = (*Store)(nil)

// NewStore creates an empty store. The viewer pubkey may be empty when the
// overlay runs without a logged-in identity.
func NewStore(viewer string) *Store {
	return &Store{
		messages:   newEventList(),
		zaps:       newEventList(),
		awards:     newEventList(),
		muteLists:  make(map[string]*nostr.Event),
		emojiPacks: make(map[string]*nostr.Event),
		badgeDefs:  make(map[string]*nostr.Event),
		viewer:     viewer,
	}
}

// Ingest classifies and stores a relay event. It reports whether the store
// changed, so callers can skip publishing updates for duplicates.
func (s *Store) Ingest(ev *nostr.Event) bool {
	if ev == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case event.KindLiveEvent:
		if s.liveEvent != nil && s.liveEvent.CreatedAt >= ev.CreatedAt {
			return false
		}
		s.liveEvent = ev
		s.host = event.Host(ev)
		return true

	case event.KindLiveChatMessage:
		return s.messages.add(ev)

	case event.KindZapReceipt:
		return s.zaps.add(ev)

	case event.KindBadgeAward:
		return s.awards.add(ev)

	case event.KindMuteList:
		return replaceNewer(s.muteLists, ev.PubKey, ev)

	case event.KindEmojiSet:
		if d, ok := event.FirstValue(ev.Tags, "d"); ok {
			key := badge.Address{Kind: ev.Kind, Author: ev.PubKey, Identifier: d}.String()
			return replaceNewer(s.emojiPacks, key, ev)
		}
		return false

	case event.KindBadgeDefinition:
		if d, ok := event.FirstValue(ev.Tags, "d"); ok {
			key := badge.Address{Kind: ev.Kind, Author: ev.PubKey, Identifier: d}.String()
			return replaceNewer(s.badgeDefs, key, ev)
		}
		return false
	}

	return false
}

// eventList keeps events in arrival order with ID-based deduplication.
// Arrival order matters: aggregation breaks timestamp ties by input order,
// so a snapshot of an unchanged store must always be the same sequence.
type eventList struct {
	seen  map[string]struct{}
	order []*nostr.Event
}

func newEventList() *eventList {
	return &eventList{seen: make(map[string]struct{})}
}

func (l *eventList) add(ev *nostr.Event) bool {
	if _, dup := l.seen[ev.ID]; dup {
		return false
	}
	l.seen[ev.ID] = struct{}{}
	l.order = append(l.order, ev)
	return true
}

func (l *eventList) snapshot() []*nostr.Event {
	out := make([]*nostr.Event, len(l.order))
	copy(out, l.order)
	return out
}

// replaceNewer keeps only the latest revision of a replaceable event.
func replaceNewer(m map[string]*nostr.Event, key string, ev *nostr.Event) bool {
	if cur, exists := m[key]; exists && cur.CreatedAt >= ev.CreatedAt {
		return false
	}
	m[key] = ev
	return true
}

// LiveEvent returns the latest stream event, or nil before the first one
// arrives.
func (s *Store) LiveEvent() *nostr.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveEvent
}

// Host returns the stream host's pubkey, empty before the live event
// arrives.
func (s *Store) Host() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// BadgeDefinition implements badge.DefinitionLookup.
func (s *Store) BadgeDefinition(addr badge.Address) (*nostr.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.badgeDefs[addr.String()]
	return ev, ok
}

// EmojiPacks returns the usable packs: the union of the viewer's and the
// channel's, deduplicated by pack ID with the viewer's copy winning. Each
// group is sorted by ID so repeated calls over an unchanged store yield an
// identical sequence.
func (s *Store) EmojiPacks() []emoji.Pack {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var viewer, channel []emoji.Pack
	for _, ev := range s.emojiPacks {
		p := emoji.FromEvent(ev)
		if ev.PubKey == s.viewer {
			viewer = append(viewer, p)
		} else {
			channel = append(channel, p)
		}
	}
	byID := func(packs []emoji.Pack) func(i, j int) bool {
		return func(i, j int) bool { return packs[i].ID() < packs[j].ID() }
	}
	sort.Slice(viewer, byID(viewer))
	sort.Slice(channel, byID(channel))
	return emoji.Union(viewer, channel)
}

// EmojiTags flattens the usable packs into emoji tags for the tokenizer.
func (s *Store) EmojiTags() nostr.Tags {
	return emoji.Tags(s.EmojiPacks())
}

// Snapshot assembles the immutable input for a timeline aggregation pass.
func (s *Store) Snapshot() timeline.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := timeline.Snapshot{
		Host:        s.host,
		Messages:    s.messages.snapshot(),
		ZapReceipts: s.zaps.snapshot(),
		Awards:      s.awards.snapshot(),
	}
	if ev, ok := s.muteLists[s.viewer]; ok && s.viewer != "" {
		snap.ViewerMutes = mutes.FromEvent(ev)
	}
	if ev, ok := s.muteLists[s.host]; ok && s.host != "" {
		snap.HostMutes = mutes.FromEvent(ev)
	}
	return snap
}
