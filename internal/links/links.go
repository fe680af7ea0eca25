// Package links wraps the bech32/TLV entity encoding in an opaque Link type.
// Consumers only ever see decode success or failure; the wire format never
// leaks past this package.
package links

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Type discriminates what a Link points at.
type Type int

const (
	// TypeProfile points at a user (npub / nprofile).
	TypeProfile Type = iota
	// TypeEvent points at a single event (note / nevent).
	TypeEvent
	// TypeAddress points at an addressable event by kind+author+identifier (naddr).
	TypeAddress
)

var (
	// ErrUnknownPrefix is returned for bech32 entities this client does not use.
	ErrUnknownPrefix = errors.New("links: unknown entity prefix")
)

// uriPrefixes are stripped before decoding; tokens may arrive bare or as
// nostr: / web+nostr: URIs.
var uriPrefixes = []string{"web+nostr:", "nostr:"}

// Link is a structured pointer to another event or profile. It is resolved by
// downstream collaborators, never interpreted here.
type Link struct {
	Type       Type
	ID         string // event id (TypeEvent) or pubkey (TypeProfile)
	Author     string // optional author hint (TypeEvent)
	Kind       int
	Identifier string // d-tag identifier (TypeAddress)
	Relays     []string
}

// StripURI removes a nostr: or web+nostr: scheme prefix, if present.
func StripURI(token string) string {
	lower := strings.ToLower(token)
	for _, p := range uriPrefixes {
		if strings.HasPrefix(lower, p) {
			return token[len(p):]
		}
	}
	return token
}

// Parse decodes a bech32 entity token, with or without a nostr: URI prefix,
// into a Link. The error is non-nil for anything that does not round-trip
// through the codec; callers are expected to keep the original text in that
// case.
func Parse(token string) (Link, error) {
	bare := StripURI(token)
	prefix, value, err := nip19.Decode(bare)
	if err != nil {
		return Link{}, fmt.Errorf("links: decode %q: %w", token, err)
	}
	switch prefix {
	case "npub":
		return Link{Type: TypeProfile, ID: value.(string)}, nil
	case "nprofile":
		p := value.(nostr.ProfilePointer)
		return Link{Type: TypeProfile, ID: p.PublicKey, Relays: p.Relays}, nil
	case "note":
		return Link{Type: TypeEvent, ID: value.(string)}, nil
	case "nevent":
		p := value.(nostr.EventPointer)
		return Link{Type: TypeEvent, ID: p.ID, Author: p.Author, Kind: p.Kind, Relays: p.Relays}, nil
	case "naddr":
		p := value.(nostr.EntityPointer)
		return Link{Type: TypeAddress, Author: p.PublicKey, Kind: p.Kind, Identifier: p.Identifier, Relays: p.Relays}, nil
	default:
		return Link{}, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
}

// Valid reports whether token decodes to a Link this client can resolve.
// Used to validate nostr:-scheme candidates before treating them as links.
func Valid(token string) bool {
	_, err := Parse(token)
	return err == nil
}

// Address renders an address link's kind:pubkey:identifier triple, the form
// used as a lookup key for addressable events.
func (l Link) Address() string {
	return fmt.Sprintf("%d:%s:%s", l.Kind, l.Author, l.Identifier)
}
