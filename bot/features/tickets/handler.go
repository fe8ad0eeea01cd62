package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 30 * time.Second

// handleOpen handles the /ticket open command
func (f *Feature) handleOpen(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	user := common.InteractionUser(i)
	if user == nil || i.GuildID == "" {
		common.RespondWithError(s, i, "Tickets can only be opened in a server.")
		return
	}

	reason := ""
	if opt, ok := common.OptionMap(sub.Options)["reason"]; ok {
		reason = opt.StringValue()
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer ticket response: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	ticket, err := f.ticketService.OpenTicket(ctx, i.GuildID, user.ID, user.Username, reason)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": i.GuildID,
			"userID":  user.ID,
			"error":   err,
		}).Error("Failed to open ticket")
		common.FollowUpWithError(s, i, common.UserMessage(err, "Failed to open a ticket."))
		return
	}

	if _, err := s.ChannelMessageSendComplex(ticket.ChannelID, introMessage(ticket), discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"guildID":   i.GuildID,
			"channelID": ticket.ChannelID,
			"error":     err,
		}).Warn("Failed to post ticket intro message")
	}

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Ticket created: <#%s>", ticket.ChannelID), true)
}

// handleClose closes the ticket of the interaction's channel.
// ownerID is carried by the close button.
func (f *Feature) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, ownerID string) {
	if !canClose(i, ownerID) {
		common.RespondWithError(s, i, "You cannot close this ticket.")
		return
	}

	user := common.InteractionUser(i)
	closedBy := ""
	if user != nil {
		closedBy = user.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	delay, err := f.ticketService.CloseTicket(ctx, i.ChannelID, closedBy)
	if err != nil {
		if !errors.Is(err, service.ErrTicketNotFound) && !errors.Is(err, service.ErrTicketClosing) {
			log.WithFields(log.Fields{
				"channelID": i.ChannelID,
				"error":     err,
			}).Error("Failed to close ticket")
		}
		common.RespondWithError(s, i, common.UserMessage(err, "Failed to close the ticket."))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: closingMessage(delay),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}
