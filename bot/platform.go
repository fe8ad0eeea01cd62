package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"hoshikuzu/bot/common"
	"hoshikuzu/models"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
)

// Permissions granted to a room owner on their room
const roomOwnerAllow = discordgo.PermissionViewChannel |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionVoiceSpeak |
	discordgo.PermissionManageChannels |
	discordgo.PermissionVoiceMoveMembers

// Permissions granted to the ticket owner and the bot on a ticket channel
const ticketMemberAllow = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles

// Platform implements service.Platform over a discordgo session
type Platform struct {
	session *discordgo.Session
}

var _ service.Platform = (*Platform)(nil)

// NewPlatform creates a platform adapter for a session
func NewPlatform(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

func (p *Platform) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create category %q: %w", name, mapError(err))
	}
	return ch.ID, nil
}

func (p *Platform) CreateVoiceChannel(ctx context.Context, guildID, name, parentID string) (string, error) {
	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create voice channel %q: %w", name, mapError(err))
	}
	return ch.ID, nil
}

func (p *Platform) CreatePrivateTextChannel(ctx context.Context, guildID, name, parentID, ownerID string) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares the guild id
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketMemberAllow,
		},
	}
	if p.session.State != nil && p.session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    p.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketMemberAllow | discordgo.PermissionManageChannels,
		})
	}

	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             parentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create text channel %q: %w", name, mapError(err))
	}
	return ch.ID, nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := p.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, mapError(err))
	}
	return nil
}

func (p *Platform) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	if err := p.session.GuildMemberMove(guildID, userID, &channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to move member %s to %s: %w", userID, channelID, mapError(err))
	}
	return nil
}

func (p *Platform) GrantRoomOwner(ctx context.Context, channelID, userID string) error {
	err := p.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember,
		roomOwnerAllow, 0, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to grant owner rights on %s: %w", channelID, mapError(err))
	}
	return nil
}

func (p *Platform) Channel(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	if p.session.State != nil {
		if ch, err := p.session.State.Channel(channelID); err == nil {
			return channelInfo(ch), nil
		}
	}

	ch, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, mapError(err))
	}
	return channelInfo(ch), nil
}

func (p *Platform) FindChannel(ctx context.Context, guildID, name string, kind models.ChannelKind) (*models.ChannelInfo, error) {
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of guild %s: %w", guildID, mapError(err))
	}
	return findChannel(channels, name, kind), nil
}

func (p *Platform) VoiceMemberCount(guildID, channelID string) int {
	guild, err := p.session.State.Guild(guildID)
	if err != nil {
		return 0
	}

	p.session.State.RLock()
	defer p.session.State.RUnlock()
	return countVoiceMembers(guild.VoiceStates, channelID)
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add role %s to %s: %w", roleID, userID, mapError(err))
	}
	return nil
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove role %s from %s: %w", roleID, userID, mapError(err))
	}
	return nil
}

func (p *Platform) SetEveryoneSendMessages(ctx context.Context, guildID, channelID string, allow bool) error {
	ch, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to get channel %s: %w", channelID, mapError(err))
	}

	// @everyone shares the guild id
	allowBits, denyBits := sendMessagesOverwrite(ch.PermissionOverwrites, guildID, allow)
	err = p.session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole,
		allowBits, denyBits, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to update @everyone on %s: %w", channelID, mapError(err))
	}
	return nil
}

func (p *Platform) SendNotice(ctx context.Context, channelID string, notice models.Notice) error {
	_, err := p.session.ChannelMessageSendEmbed(channelID, common.NoticeEmbed(notice), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send notice to %s: %w", channelID, mapError(err))
	}
	return nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, mapError(err))
	}
	return nil
}

// mapError turns Discord's unknown channel error into service.ErrChannelNotFound
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return fmt.Errorf("%w: %v", service.ErrChannelNotFound, err)
	}
	if restErr.Message == nil && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", service.ErrChannelNotFound, err)
	}
	return err
}

func channelKind(t discordgo.ChannelType) models.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return models.ChannelKindText
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return models.ChannelKindVoice
	case discordgo.ChannelTypeGuildCategory:
		return models.ChannelKindCategory
	default:
		return models.ChannelKindOther
	}
}

func channelInfo(ch *discordgo.Channel) *models.ChannelInfo {
	return &models.ChannelInfo{
		ID:       ch.ID,
		GuildID:  ch.GuildID,
		Name:     ch.Name,
		Kind:     channelKind(ch.Type),
		ParentID: ch.ParentID,
	}
}

func findChannel(channels []*discordgo.Channel, name string, kind models.ChannelKind) *models.ChannelInfo {
	for _, ch := range channels {
		if ch == nil || ch.Name != name || channelKind(ch.Type) != kind {
			continue
		}
		return channelInfo(ch)
	}
	return nil
}

func countVoiceMembers(states []*discordgo.VoiceState, channelID string) int {
	count := 0
	for _, vs := range states {
		if vs != nil && vs.ChannelID == channelID {
			count++
		}
	}
	return count
}

// sendMessagesOverwrite returns the role overwrite for roleID with only the send messages bit changed
func sendMessagesOverwrite(overwrites []*discordgo.PermissionOverwrite, roleID string, allow bool) (int64, int64) {
	var allowBits, denyBits int64
	for _, ow := range overwrites {
		if ow != nil && ow.ID == roleID && ow.Type == discordgo.PermissionOverwriteTypeRole {
			allowBits, denyBits = ow.Allow, ow.Deny
			break
		}
	}

	if allow {
		allowBits |= discordgo.PermissionSendMessages
		denyBits &^= discordgo.PermissionSendMessages
	} else {
		denyBits |= discordgo.PermissionSendMessages
		allowBits &^= discordgo.PermissionSendMessages
	}
	return allowBits, denyBits
}
