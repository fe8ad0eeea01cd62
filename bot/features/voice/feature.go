package voice

import (
	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the temporary voice room commands
type Feature struct {
	voiceService service.VoiceService
}

// NewFeature creates a new voice feature instance
func NewFeature(voiceService service.VoiceService) *Feature {
	return &Feature{
		voiceService: voiceService,
	}
}

// HandleCommand routes voice commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "setup":
		f.handleSetup(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
