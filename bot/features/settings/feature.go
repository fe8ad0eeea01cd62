package settings

import (
	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	guildConfigService service.GuildConfigService
}

// NewFeature creates a new settings feature instance
func NewFeature(guildConfigService service.GuildConfigService) *Feature {
	return &Feature{
		guildConfigService: guildConfigService,
	}
}

// HandleCommand routes settings commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	// Check if user has admin permissions
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need the Manage Server permission to use this command.")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "show":
		f.handleShow(s, i)
	case "logs", "welcome", "lobby":
		f.handleChannel(s, i, sub)
	case "autorole":
		f.handleAutoRole(s, i, sub)
	case "links":
		f.handleLinks(s, i, sub)
	case "allowlink":
		f.handleAllowLink(s, i, sub)
	case "disallowlink":
		f.handleDisallowLink(s, i, sub)
	case "clear":
		f.handleClear(s, i, sub)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
