package voice

import (
	"context"
	"fmt"
	"time"

	"hoshikuzu/bot/common"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSetup handles the /voice setup command
func (f *Feature) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.HasPermission(i, discordgo.PermissionManageChannels) {
		common.RespondWithError(s, i, "You need the Manage Channels permission to use this command.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer voice setup response: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := f.voiceService.EnsureLobby(ctx, i.GuildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": i.GuildID,
			"error":   err,
		}).Error("Failed to set up voice lobby")
		common.FollowUpWithError(s, i, common.UserMessage(err, "Failed to set up the voice lobby."))
		return
	}

	common.FollowUpWithSuccess(s, i, setupMessage(result), true)
}

func setupMessage(result *service.LobbyResult) string {
	if result.Created {
		return fmt.Sprintf("Lobby <#%s> created. Join it to get your own voice room.", result.ChannelID)
	}
	return fmt.Sprintf("Lobby <#%s> is ready. Join it to get your own voice room.", result.ChannelID)
}
