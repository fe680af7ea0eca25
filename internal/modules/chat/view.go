package chat

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/rolznz/zap.stream/internal/badge"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/richtext"
	"github.com/rolznz/zap.stream/internal/timeline"
)

// FragmentView is one renderable span of a chat message.
type FragmentView struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Pubkey string `json:"pubkey,omitempty"`
}

// MessageView is a rendered chat message.
type MessageView struct {
	EventID   string         `json:"event_id"`
	Author    string         `json:"author"`
	CreatedAt int64          `json:"created_at"`
	Fragments []FragmentView `json:"fragments"`
}

// ZapView is a rendered zap receipt.
type ZapView struct {
	EventID   string `json:"event_id"`
	Sender    string `json:"sender"`
	Amount    int64  `json:"amount"`
	Content   string `json:"content,omitempty"`
	BigZap    bool   `json:"big_zap"`
	CreatedAt int64  `json:"created_at"`
}

// AwardView is a rendered badge award.
type AwardView struct {
	EventID    string   `json:"event_id"`
	Awarder    string   `json:"awarder"`
	BadgeName  string   `json:"badge_name,omitempty"`
	BadgeImage string   `json:"badge_image,omitempty"`
	Recipients []string `json:"recipients"`
	CreatedAt  int64    `json:"created_at"`
}

// ItemView is one timeline entry, exactly one of Message, Zap or Award set.
type ItemView struct {
	Kind    string       `json:"kind"`
	Message *MessageView `json:"message,omitempty"`
	Zap     *ZapView     `json:"zap,omitempty"`
	Award   *AwardView   `json:"award,omitempty"`
}

// ZapperView is one row of the top-payers ranking.
type ZapperView struct {
	Pubkey string `json:"pubkey"`
	Amount int64  `json:"amount"`
}

// TimelineView is the full payload pushed to overlay clients.
type TimelineView struct {
	Items       []ItemView   `json:"items"`
	TopZappers  []ZapperView `json:"top_zappers"`
	HasMessages bool         `json:"has_messages"`
}

// BuildView aggregates the store's current state into a renderable view:
// the moderated timeline with chat content tokenized into rich text
// fragments, badge awards resolved against known definitions, and the
// top-payers ranking.
func BuildView(store *feed.Store) TimelineView {
	snap := store.Snapshot()
	agg := timeline.Aggregate(snap)
	emojiTags := store.EmojiTags()

	view := TimelineView{
		Items:       make([]ItemView, 0, len(agg.Items)),
		TopZappers:  make([]ZapperView, 0, len(agg.TopZappers)),
		HasMessages: agg.HasMessages,
	}

	for _, item := range agg.Items {
		switch item.Kind {
		case timeline.ItemChatMessage:
			tags := make(nostr.Tags, 0, len(item.Event.Tags)+len(emojiTags))
			tags = append(tags, item.Event.Tags...)
			tags = append(tags, emojiTags...)
			frags := richtext.TransformText(item.Event.Content, tags)
			view.Items = append(view.Items, ItemView{
				Kind: "message",
				Message: &MessageView{
					EventID:   item.Event.ID,
					Author:    item.Event.PubKey,
					CreatedAt: int64(item.Event.CreatedAt),
					Fragments: fragmentViews(frags),
				},
			})

		case timeline.ItemZapReceipt:
			view.Items = append(view.Items, ItemView{
				Kind: "zap",
				Zap: &ZapView{
					EventID:   item.Zap.ID,
					Sender:    item.Zap.Sender,
					Amount:    item.Zap.Amount,
					Content:   item.Zap.Content,
					BigZap:    item.IsBigZap(),
					CreatedAt: int64(item.Event.CreatedAt),
				},
			})

		case timeline.ItemBadgeAward:
			av := &AwardView{
				EventID:    item.Award.EventID,
				Awarder:    item.Award.Awarder,
				Recipients: item.Award.Recipients,
				CreatedAt:  int64(item.Event.CreatedAt),
			}
			if def, ok := item.Award.Resolve(store); ok {
				av.BadgeName = def.Name
				av.BadgeImage = pickImage(def)
			}
			view.Items = append(view.Items, ItemView{Kind: "award", Award: av})
		}
	}

	for _, z := range agg.TopZappers {
		view.TopZappers = append(view.TopZappers, ZapperView{Pubkey: z.Pubkey, Amount: z.Amount})
	}

	return view
}

func fragmentViews(frags []richtext.Fragment) []FragmentView {
	out := make([]FragmentView, 0, len(frags))
	for _, f := range frags {
		fv := FragmentView{Text: f.Text, Name: f.Name, URL: f.URL, Pubkey: f.Pubkey}
		switch f.Kind {
		case richtext.KindText:
			fv.Kind = "text"
		case richtext.KindEmoji:
			fv.Kind = "emoji"
		case richtext.KindMention:
			fv.Kind = "mention"
		case richtext.KindEventRef:
			fv.Kind = "event"
		case richtext.KindAddressRef:
			fv.Kind = "address"
		case richtext.KindLink:
			fv.Kind = "link"
		default:
			fv.Kind = "opaque"
		}
		out = append(out, fv)
	}
	return out
}

func pickImage(def badge.Definition) string {
	if def.Thumbnail != "" {
		return def.Thumbnail
	}
	return def.Image
}
