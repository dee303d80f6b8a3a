package domain

import "strings"

// Channel names a message stream.
type Channel string

const (
	// ChannelPrivate is user-to-user direct messaging.
	ChannelPrivate Channel = "private"
	// ChannelSupport is the user <-> expert support thread.
	ChannelSupport Channel = "support"
	// ChannelCommunity is the public broadcast room. It has no read state.
	ChannelCommunity Channel = "community"
)

// Sender roles.
const (
	RoleUser   = "user"
	RoleExpert = "expert"
)

// ParseChannel normalizes s and reports whether it names a known channel.
func ParseChannel(s string) (Channel, bool) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelPrivate, ChannelSupport, ChannelCommunity:
		return c, true
	default:
		return "", false
	}
}

// Tracked reports whether messages on c carry read state.
func (c Channel) Tracked() bool { return c == ChannelPrivate || c == ChannelSupport }

// ReadScope selects which unread messages in a user's inbox MarkRead flips.
// Empty SenderID / SenderRole match any sender.
type ReadScope struct {
	Channel    Channel `json:"channel"`
	SenderID   string  `json:"sender_id,omitempty"`
	SenderRole string  `json:"sender_role,omitempty"`
}

// Well-known setting keys.
const (
	SettingManualOnlineCount    = "manual_online_count"
	SettingNotificationsEnabled = "notifications_enabled"
)
