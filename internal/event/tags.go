package event

import "github.com/nbd-wtf/go-nostr"

// FirstValue returns the second element of the first tag whose key matches,
// which is where nostr tags conventionally carry their value. The boolean
// reports whether such a tag exists.
func FirstValue(tags nostr.Tags, key string) (string, bool) {
	for _, t := range tags {
		if len(t) >= 2 && t[0] == key {
			return t[1], true
		}
	}
	return "", false
}

// Values returns the values of every tag whose key matches, in tag order.
func Values(tags nostr.Tags, key string) []string {
	var out []string
	for _, t := range tags {
		if len(t) >= 2 && t[0] == key {
			out = append(out, t[1])
		}
	}
	return out
}

// FindWithValue returns the first tag whose key and value both match.
// Used for tags that act as lookup tables, e.g. ["emoji", name, url].
func FindWithValue(tags nostr.Tags, key, value string) (nostr.Tag, bool) {
	for _, t := range tags {
		if len(t) >= 2 && t[0] == key && t[1] == value {
			return t, true
		}
	}
	return nil, false
}

// TagValue is a convenience accessor reading the first value of key from an
// event's tag list.
func TagValue(ev *nostr.Event, key string) (string, bool) {
	if ev == nil {
		return "", false
	}
	return FirstValue(ev.Tags, key)
}
