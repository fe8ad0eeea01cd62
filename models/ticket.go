package models

import (
	"time"
)

// Ticket is a private support channel opened by a member
type Ticket struct {
	ID        string    `json:"id" db:"id"`
	ChannelID string    `json:"-" db:"channel_id"`
	GuildID   string    `json:"guild" db:"guild_id"`
	OwnerID   string    `json:"owner" db:"owner_id"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
