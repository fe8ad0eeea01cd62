package tickets

import (
	"strings"

	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles support tickets
type Feature struct {
	ticketService service.TicketService
}

// NewFeature creates a new tickets feature instance
func NewFeature(ticketService service.TicketService) *Feature {
	return &Feature{
		ticketService: ticketService,
	}
}

// HandleCommand routes ticket commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "open":
		f.handleOpen(s, i, options[0])
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

// HandleInteraction handles the close button on a ticket's intro message
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, closeButtonPrefix) {
		return
	}
	f.handleClose(s, i, strings.TrimPrefix(customID, closeButtonPrefix))
}
