package models

import (
	"time"
)

// VoiceRoom is a temporary voice channel created when a member joins the lobby.
// A room is tracked for as long as its channel exists.
type VoiceRoom struct {
	ChannelID string    `json:"-" db:"channel_id"`
	GuildID   string    `json:"guild" db:"guild_id"`
	OwnerID   string    `json:"owner" db:"owner_id"`
	Name      string    `json:"name,omitempty" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// VoiceStateChange is a member's voice channel transition as reported by the gateway.
// An empty channel id means "not in a voice channel".
type VoiceStateChange struct {
	GuildID         string
	UserID          string
	DisplayName     string
	BeforeChannelID string
	AfterChannelID  string
}

// Joined reports whether the member entered a channel they were not in before
func (c VoiceStateChange) Joined() bool {
	return c.AfterChannelID != "" && c.AfterChannelID != c.BeforeChannelID
}

// Left reports whether the member left a channel they were in before
func (c VoiceStateChange) Left() bool {
	return c.BeforeChannelID != "" && c.BeforeChannelID != c.AfterChannelID
}
