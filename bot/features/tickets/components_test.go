package tickets

import (
	"testing"
	"time"

	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntroMessage(t *testing.T) {
	ticket := &models.Ticket{
		ID:        "t-1",
		ChannelID: "700",
		GuildID:   "100",
		OwnerID:   "300",
		Reason:    "Support",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	msg := introMessage(ticket)

	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "🎫 Ticket opened", msg.Embeds[0].Title)
	assert.Equal(t, "<@300> — Support", msg.Embeds[0].Description)

	require.Len(t, msg.Components, 1)
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)
	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "ticket_close_300", button.CustomID)
	assert.Equal(t, discordgo.DangerButton, button.Style)
}

func TestClosingMessage(t *testing.T) {
	assert.Equal(t, "🔒 Closing in 5 seconds...", closingMessage(5*time.Second))
	assert.Equal(t, "🔒 Closing in 1 second...", closingMessage(time.Second))
	assert.Equal(t, "🔒 Closing now...", closingMessage(0))
}

func TestCanClose(t *testing.T) {
	interaction := func(userID string, perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{
				User:        &discordgo.User{ID: userID},
				Permissions: perms,
			},
		}}
	}

	tests := []struct {
		name    string
		i       *discordgo.InteractionCreate
		ownerID string
		want    bool
	}{
		{"owner", interaction("300", 0), "300", true},
		{"stranger", interaction("301", 0), "300", false},
		{"moderator", interaction("301", discordgo.PermissionManageChannels), "300", true},
		{"admin", interaction("301", discordgo.PermissionAdministrator), "300", true},
		{"unknown owner", interaction("300", 0), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canClose(tt.i, tt.ownerID))
		})
	}
}
