package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hoshikuzu/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 15 * time.Second

var errNotMember = errors.New("user is not a member of this server")

// handleLock handles /lock and /unlock
func (f *Feature) handleLock(s *discordgo.Session, i *discordgo.InteractionCreate, lock bool) {
	if !common.HasPermission(i, discordgo.PermissionManageChannels) {
		common.RespondWithError(s, i, "You need the Manage Channels permission to use this command.")
		return
	}
	user := common.InteractionUser(i)
	if user == nil {
		return
	}

	channelID := targetChannelID(i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	if lock {
		err = f.moderationService.LockChannel(ctx, i.GuildID, channelID, user.ID)
	} else {
		err = f.moderationService.UnlockChannel(ctx, i.GuildID, channelID, user.ID)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":   i.GuildID,
			"channelID": channelID,
			"lock":      lock,
			"error":     err,
		}).Error("Failed to change channel lock")
		common.RespondWithError(s, i, common.UserMessage(err, "Failed to update the channel permissions."))
		return
	}

	if err := common.RespondWithSuccess(s, i, lockMessage(channelID, lock), false); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

// handleRole handles /role, which gives the role or takes it away
func (f *Feature) handleRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.HasPermission(i, discordgo.PermissionManageRoles) {
		common.RespondWithError(s, i, "You need the Manage Roles permission to use this command.")
		return
	}
	user := common.InteractionUser(i)
	if user == nil {
		return
	}

	data := i.ApplicationCommandData()
	options := common.OptionMap(data.Options)
	memberOpt, okMember := options["member"]
	roleOpt, okRole := options["role"]
	if !okMember || !okRole {
		common.RespondWithError(s, i, "Please pick a member and a role.")
		return
	}
	targetID := memberOpt.UserValue(nil).ID
	roleID := roleOpt.RoleValue(nil, "").ID

	if roleID == i.GuildID {
		common.RespondWithError(s, i, "The @everyone role cannot be given or taken.")
		return
	}

	roles, err := memberRoles(data, targetID)
	if err != nil {
		common.RespondWithError(s, i, "That user is not a member of this server.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	added, err := f.moderationService.ToggleRole(ctx, i.GuildID, targetID, roleID, roles, user.ID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": i.GuildID,
			"userID":  targetID,
			"roleID":  roleID,
			"error":   err,
		}).Error("Failed to toggle member role")
		common.RespondWithError(s, i, common.UserMessage(err, "Failed to update the member's roles. Check that my role is above it."))
		return
	}

	if err := common.RespondWithSuccess(s, i, roleMessage(roleName(data, roleID), targetID, added), false); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

// targetChannelID returns the channel option, or the channel the command was used in
func targetChannelID(i *discordgo.InteractionCreate) string {
	if opt, ok := common.OptionMap(i.ApplicationCommandData().Options)["channel"]; ok {
		if id, ok := opt.Value.(string); ok && id != "" {
			return id
		}
	}
	return i.ChannelID
}

// memberRoles returns the roles of a member resolved with the command
func memberRoles(data discordgo.ApplicationCommandInteractionData, userID string) ([]string, error) {
	if data.Resolved == nil {
		return nil, errNotMember
	}
	member, ok := data.Resolved.Members[userID]
	if !ok || member == nil {
		return nil, errNotMember
	}
	return member.Roles, nil
}

func roleName(data discordgo.ApplicationCommandInteractionData, roleID string) string {
	if data.Resolved != nil {
		if role, ok := data.Resolved.Roles[roleID]; ok && role != nil && role.Name != "" {
			return role.Name
		}
	}
	return common.RoleMention(roleID)
}

func lockMessage(channelID string, locked bool) string {
	if locked {
		return fmt.Sprintf("<#%s> locked.", channelID)
	}
	return fmt.Sprintf("<#%s> unlocked.", channelID)
}

func roleMessage(name, userID string, added bool) string {
	if added {
		return fmt.Sprintf("%s given to <@%s>.", name, userID)
	}
	return fmt.Sprintf("%s removed from <@%s>.", name, userID)
}
