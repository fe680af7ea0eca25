// Package richtext turns an event's free-form content into an ordered
// sequence of typed fragments: plain text, custom emoji, user mentions,
// event and address references, and hyperlinks. The rendering surface
// consumes the fragments; this package never renders anything itself.
package richtext

import "github.com/rolznz/zap.stream/internal/links"

// Kind discriminates fragment variants.
type Kind int

const (
	// KindText is a literal span of the original content.
	KindText Kind = iota
	// KindEmoji is a resolved :shortcode: with an image source.
	KindEmoji
	// KindMention is a reference to a user profile.
	KindMention
	// KindEventRef is a reference to another event.
	KindEventRef
	// KindAddressRef is a reference to an addressable event.
	KindAddressRef
	// KindLink is a generic hyperlink.
	KindLink
	// KindOpaque is a pre-rendered node supplied by the caller. Opaque
	// fragments pass through every extraction pass untouched.
	KindOpaque
)

// Fragment is one unit of tokenized content. Text always holds the exact
// source span the fragment was produced from, so concatenating Text over a
// fragment sequence reconstructs the original reading order losslessly.
type Fragment struct {
	Kind Kind
	Text string

	// Name and URL are set for emoji (shortcode name, image source) and
	// for hyperlinks (URL only).
	Name string
	URL  string

	// Pubkey is set for mentions.
	Pubkey string

	// Link is set for event and address references, and for mentions that
	// carried relay hints.
	Link *links.Link

	// Node carries a caller-supplied pre-rendered value for KindOpaque.
	Node any
}

// TextFragment returns a plain-text fragment.
func TextFragment(s string) Fragment {
	return Fragment{Kind: KindText, Text: s}
}

// Opaque wraps a pre-rendered node so it can ride through Transform untouched.
func Opaque(node any) Fragment {
	return Fragment{Kind: KindOpaque, Node: node}
}

// String returns the fragment's canonical display fallback: the source span
// it was produced from. Empty text fragments render as nothing.
func (f Fragment) String() string {
	return f.Text
}

// Flatten concatenates the display fallback of each fragment. Opaque nodes
// contribute nothing; every other fragment contributes its source span.
func Flatten(frags []Fragment) string {
	var b []byte
	for _, f := range frags {
		b = append(b, f.Text...)
	}
	return string(b)
}
