package event

import (
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

// StreamStatus is the lifecycle state advertised by a live event's "status" tag.
type StreamStatus string

const (
	StatusPlanned StreamStatus = "planned"
	StatusLive    StreamStatus = "live"
	StatusEnded   StreamStatus = "ended"
)

// Host resolves the stream host for a live event: the first "p" tag carrying
// a "host" role marker, falling back to the event author. Moderation and
// zap-receiver checks key off this identity.
func Host(ev *nostr.Event) string {
	if ev == nil {
		return ""
	}
	for _, t := range ev.Tags {
		if len(t) >= 4 && t[0] == "p" && t[3] == "host" {
			return t[1]
		}
	}
	return ev.PubKey
}

// StreamInfo is the displayable metadata carried on a live event's tags.
type StreamInfo struct {
	Title        string
	Summary      string
	Image        string
	Status       StreamStatus
	Identifier   string
	Starts       int64
	Participants int
}

// InfoFromEvent extracts stream metadata from a kind-30311 live event.
// Missing tags yield zero values; a malformed participant count reads as zero.
func InfoFromEvent(ev *nostr.Event) StreamInfo {
	if ev == nil {
		return StreamInfo{}
	}
	info := StreamInfo{}
	info.Title, _ = TagValue(ev, "title")
	info.Summary, _ = TagValue(ev, "summary")
	info.Image, _ = TagValue(ev, "image")
	info.Identifier, _ = TagValue(ev, "d")
	if s, ok := TagValue(ev, "status"); ok {
		info.Status = StreamStatus(s)
	}
	if s, ok := TagValue(ev, "starts"); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			info.Starts = n
		}
	}
	if s, ok := TagValue(ev, "current_participants"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			info.Participants = n
		}
	}
	return info
}
