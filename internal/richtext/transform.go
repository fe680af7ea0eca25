package richtext

import (
	"log/slog"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/links"
)

// Transform runs the fixed extraction pipeline over a fragment sequence.
// Each pass re-splits every text fragment produced by the previous pass and
// leaves everything else untouched, so tokens never reassemble across
// pre-existing fragment boundaries. Pass order matters: emoji shortcodes run
// first so they are not mistaken for literal text inside later tokens, and
// the generic URL pass runs last because every other pass recognizes a more
// specific prefixed grammar.
func Transform(frags []Fragment, tags nostr.Tags) []Fragment {
	frags = extractEmoji(frags, tags)
	frags = extractEntities(frags, "nprofile", decodeMention)
	frags = extractEntities(frags, "nevent", decodeEventRef)
	frags = extractEntities(frags, "naddr", decodeAddressRef)
	frags = extractEntities(frags, "note", decodeEventRef)
	frags = extractEntities(frags, "npub", decodeMention)
	frags = extractURLs(frags)
	return frags
}

// TransformText tokenizes a single content string against its event tags.
func TransformText(content string, tags nostr.Tags) []Fragment {
	return Transform([]Fragment{TextFragment(content)}, tags)
}

// mapText applies split to each text fragment and passes the rest through.
func mapText(frags []Fragment, split func(string) []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != KindText {
			out = append(out, f)
			continue
		}
		out = append(out, split(f.Text)...)
	}
	return out
}

func isShortcodeChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// extractEmoji scans for :name: shortcodes and resolves them against the
// event's "emoji" tags. An unresolved shortcode stays in the text verbatim,
// colons included.
func extractEmoji(frags []Fragment, tags nostr.Tags) []Fragment {
	return mapText(frags, func(s string) []Fragment {
		var out []Fragment
		textStart := 0 // start of the pending literal span
		i := 0
		for i < len(s) {
			if s[i] != ':' {
				i++
				continue
			}
			// Candidate shortcode: ':' name ':' with a non-empty name.
			j := i + 1
			for j < len(s) && isShortcodeChar(s[j]) {
				j++
			}
			if j == i+1 || j >= len(s) || s[j] != ':' {
				// Not a shortcode. The terminating character may itself
				// open the next candidate.
				if j > i+1 && j < len(s) {
					i = j
				} else {
					i++
				}
				continue
			}
			name := s[i+1 : j]
			if t, ok := event.FindWithValue(tags, "emoji", name); ok && len(t) >= 3 {
				if textStart < i {
					out = append(out, TextFragment(s[textStart:i]))
				}
				out = append(out, Fragment{Kind: KindEmoji, Text: s[i : j+1], Name: name, URL: t[2]})
				textStart = j + 1
			}
			// Matched or not, the closing colon is consumed; it cannot
			// reopen a shortcode.
			i = j + 1
		}
		if textStart < len(s) {
			out = append(out, TextFragment(s[textStart:]))
		}
		return out
	})
}

func isBech32Char(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func decodeMention(token string, link links.Link) Fragment {
	return Fragment{Kind: KindMention, Text: token, Pubkey: link.ID, Link: &link}
}

func decodeEventRef(token string, link links.Link) Fragment {
	return Fragment{Kind: KindEventRef, Text: token, Link: &link}
}

func decodeAddressRef(token string, link links.Link) Fragment {
	return Fragment{Kind: KindAddressRef, Text: token, Link: &link}
}

// extractEntities scans for nostr:<prefix>1<bech32> tokens and decodes them
// with the link codec. Decode failure keeps the token text verbatim; only
// address references surface their failures as warnings.
func extractEntities(frags []Fragment, prefix string, decode func(string, links.Link) Fragment) []Fragment {
	marker := "nostr:" + prefix + "1"
	return mapText(frags, func(s string) []Fragment {
		var out []Fragment
		textStart := 0
		i := 0
		for i < len(s) {
			idx := strings.Index(s[i:], marker)
			if idx < 0 {
				break
			}
			start := i + idx
			end := start + len(marker)
			for end < len(s) && isBech32Char(s[end]) {
				end++
			}
			token := s[start:end]
			link, err := links.Parse(token)
			if err != nil {
				if prefix == "naddr" {
					slog.Warn("failed to decode address reference", "token", token, "error", err)
				}
				i = end
				continue
			}
			if textStart < start {
				out = append(out, TextFragment(s[textStart:start]))
			}
			out = append(out, decode(token, link))
			textStart = end
			i = end
		}
		if textStart < len(s) {
			out = append(out, TextFragment(s[textStart:]))
		}
		return out
	})
}

// linkSchemes are the prefixes that mark a whitespace-delimited word as a
// link candidate. Matching is case-insensitive.
var linkSchemes = []string{"http:", "https:", "magnet:", "nostr:", "web+nostr:"}

func hasLinkScheme(word string) (string, bool) {
	lower := strings.ToLower(word)
	for _, scheme := range linkSchemes {
		if strings.HasPrefix(lower, scheme) {
			return scheme, true
		}
	}
	return "", false
}

// extractURLs splits remaining text on whitespace boundaries and classifies
// scheme-prefixed words as links. nostr-scheme words must additionally
// decode; malformed ones stay plain text.
func extractURLs(frags []Fragment) []Fragment {
	return mapText(frags, func(s string) []Fragment {
		var out []Fragment
		textStart := 0
		i := 0
		for i < len(s) {
			// Advance to the next word.
			if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' {
				i++
				continue
			}
			start := i
			for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' {
				i++
			}
			word := s[start:i]
			scheme, ok := hasLinkScheme(word)
			if !ok {
				continue
			}
			frag, ok := classifyLink(word, scheme)
			if !ok {
				continue
			}
			if textStart < start {
				out = append(out, TextFragment(s[textStart:start]))
			}
			out = append(out, frag)
			textStart = i
		}
		if textStart < len(s) {
			out = append(out, TextFragment(s[textStart:]))
		}
		return out
	})
}

// classifyLink turns a scheme-matched word into a fragment. Custom-protocol
// tokens are structurally validated and promoted to their entity fragment
// kind so the rendering surface can inline a richer preview.
func classifyLink(word, scheme string) (Fragment, bool) {
	switch scheme {
	case "nostr:", "web+nostr:":
		link, err := links.Parse(word)
		if err != nil {
			return Fragment{}, false
		}
		switch link.Type {
		case links.TypeProfile:
			return decodeMention(word, link), true
		case links.TypeAddress:
			return decodeAddressRef(word, link), true
		default:
			return decodeEventRef(word, link), true
		}
	default:
		return Fragment{Kind: KindLink, Text: word, URL: word}, true
	}
}
