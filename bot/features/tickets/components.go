package tickets

import (
	"fmt"
	"time"

	"hoshikuzu/bot/common"
	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
)

// closeButtonPrefix is followed by the ticket owner's id
const closeButtonPrefix = "ticket_close_"

// introMessage builds the message posted in a new ticket channel
func introMessage(ticket *models.Ticket) *discordgo.MessageSend {
	embed := common.NoticeEmbed(models.Notice{
		Title:       "🎫 Ticket opened",
		Description: fmt.Sprintf("<@%s> — %s", ticket.OwnerID, ticket.Reason),
		Level:       models.NoticeLevelSuccess,
		Timestamp:   ticket.CreatedAt,
	})

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Close ticket",
						Style:    discordgo.DangerButton,
						CustomID: closeButtonPrefix + ticket.OwnerID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
					},
				},
			},
		},
	}
}

// closingMessage tells the user when the channel goes away
func closingMessage(delay time.Duration) string {
	seconds := int(delay.Round(time.Second) / time.Second)
	if seconds <= 0 {
		return "🔒 Closing now..."
	}
	if seconds == 1 {
		return "🔒 Closing in 1 second..."
	}
	return fmt.Sprintf("🔒 Closing in %d seconds...", seconds)
}

// canClose reports whether a user may close a ticket: its owner, or anyone
// holding Manage Channels
func canClose(i *discordgo.InteractionCreate, ownerID string) bool {
	user := common.InteractionUser(i)
	if user != nil && ownerID != "" && user.ID == ownerID {
		return true
	}
	return common.HasPermission(i, discordgo.PermissionManageChannels)
}
