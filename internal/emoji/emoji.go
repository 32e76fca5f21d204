package emoji

// EmojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":      {"❌", "[ERR]"},
	"warning":    {"⚠️", "[WRN]"},
	"info":       {"ℹ️", "[INF]"},
	"success":    {"✅", "[OK]"},
	"hint":       {"💡", "[TIP]"},
	"document":   {"📄", "[DOC]"},
	"conflict":   {"⚔️", "[!]"},
	"upload":     {"📤", "[UP]"},
	"statistics": {"📊", "[STATS]"},
	"folder":     {"📁", "[DIR]"},
	"target":     {"🎯", "[>]"},
	"watch":      {"👀", "[WATCH]"},
	"clean":      {"🟢", "[OK]"},
	"high":       {"🔴", "[HIGH]"},
	"door":       {"🚪", "[EXIT]"},
}

var emojiDisabled bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled = disabled
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled {
			return mapping[1] // fallback
		}
		return mapping[0] // emoji
	}
	return "[?]" // unknown key
}

// ConfidenceEmoji marks a finding by how sure the service was
func ConfidenceEmoji(confidence, highThreshold float64) string {
	if confidence >= highThreshold {
		return GetEmoji("high")
	}
	return GetEmoji("conflict")
}
