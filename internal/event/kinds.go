package event

// Event kinds consumed by the overlay pipeline. Values follow the NIPs the
// stream client speaks; anything else arriving on a subscription is ignored.
const (
	// KindReaction is a NIP-25 reaction to a chat message.
	KindReaction = 7
	// KindBadgeAward is a NIP-58 badge award naming one or more recipients.
	KindBadgeAward = 8
	// KindLiveChatMessage is a NIP-53 live stream chat message.
	KindLiveChatMessage = 1311
	// KindZapReceipt is a NIP-57 zap receipt published by the receiver's
	// lightning service.
	KindZapReceipt = 9735
	// KindMuteList is a NIP-51 mute list (viewer or host moderation).
	KindMuteList = 10000
	// KindBadgeDefinition is a NIP-58 addressable badge definition.
	KindBadgeDefinition = 30009
	// KindEmojiSet is a NIP-30 addressable custom emoji pack.
	KindEmojiSet = 30030
	// KindLiveEvent is a NIP-53 addressable live stream event.
	KindLiveEvent = 30311
)
