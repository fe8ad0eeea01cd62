package moderation

import (
	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /lock, /unlock and /role moderator commands
type Feature struct {
	moderationService service.ModerationService
}

// NewFeature creates a new moderation feature instance
func NewFeature(moderationService service.ModerationService) *Feature {
	return &Feature{
		moderationService: moderationService,
	}
}

// HandleCommand routes moderation commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "lock":
		f.handleLock(s, i, true)
	case "unlock":
		f.handleLock(s, i, false)
	case "role":
		f.handleRole(s, i)
	default:
		common.RespondWithError(s, i, "Unknown command.")
	}
}
