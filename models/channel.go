package models

// ChannelKind is the subset of Discord channel types the bot works with
type ChannelKind string

const (
	ChannelKindText     ChannelKind = "text"
	ChannelKindVoice    ChannelKind = "voice"
	ChannelKindCategory ChannelKind = "category"
	ChannelKindOther    ChannelKind = "other"
)

// ChannelInfo describes a guild channel
type ChannelInfo struct {
	ID       string
	GuildID  string
	Name     string
	Kind     ChannelKind
	ParentID string // category id, empty when the channel is not in a category
}

// MemberInfo describes a guild member for notices
type MemberInfo struct {
	UserID      string
	Username    string
	DisplayName string
	AvatarURL   string
	Bot         bool
}

// Mention returns the Discord mention for the member
func (m MemberInfo) Mention() string {
	return "<@" + m.UserID + ">"
}

// GuildInfo describes a guild at the time of an event
type GuildInfo struct {
	ID          string
	Name        string
	MemberCount int
}
