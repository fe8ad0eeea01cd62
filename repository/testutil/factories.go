package testutil

import (
	"time"

	"hoshikuzu/models"

	"github.com/google/uuid"
)

// CreateTestRoom creates a test voice room owned by ownerID
func CreateTestRoom(channelID, guildID, ownerID string) *models.VoiceRoom {
	return &models.VoiceRoom{
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
		Name:      "🔊 " + ownerID + "'s room",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// CreateTestRoomAt creates a test voice room with a fixed creation time
func CreateTestRoomAt(channelID, guildID, ownerID string, createdAt time.Time) *models.VoiceRoom {
	room := CreateTestRoom(channelID, guildID, ownerID)
	room.CreatedAt = createdAt
	return room
}

// CreateTestTicket creates a test ticket with the default reason
func CreateTestTicket(channelID, guildID, ownerID string) *models.Ticket {
	return &models.Ticket{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
		Reason:    "Support",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}
