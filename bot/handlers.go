package bot

import (
	"context"
	"fmt"
	"time"

	"hoshikuzu/bot/common"
	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	// handlerTimeout bounds the platform calls made for one gateway event
	handlerTimeout = 30 * time.Second

	// linkWarningTTL is how long the "no links" warning stays visible
	linkWarningTTL = 5 * time.Second
)

// handleGuildCreate reconciles tracked rooms once the guild's voice states are known
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := b.voiceService.ReconcileRooms(ctx, g.ID); err != nil {
		log.WithFields(log.Fields{
			"guildID": g.ID,
			"error":   err,
		}).Error("Failed to reconcile voice rooms")
	}
}

func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	change, ok := voiceStateChange(v)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.voiceService.HandleVoiceStateChange(ctx, change)
}

func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.memberService.HandleMemberJoin(ctx, b.guildInfo(m.GuildID), memberInfo(m.Member))
}

func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.memberService.HandleMemberLeave(ctx, b.guildInfo(m.GuildID), memberInfo(m.Member))
}

// handleMessageCreate enforces the link filter
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !b.linkFilter.Violates(ctx, m.GuildID, m.ChannelID, m.Content) {
		return
	}

	logger := log.WithFields(log.Fields{
		"guildID":   m.GuildID,
		"channelID": m.ChannelID,
		"userID":    m.Author.ID,
	})

	if err := b.platform.DeleteMessage(ctx, m.ChannelID, m.ID); err != nil {
		logger.WithError(err).Warn("Failed to delete message containing a link")
		return
	}

	warning, err := s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("🚫 %s, links are not allowed here.", m.Author.Mention()),
		discordgo.WithContext(ctx))
	if err != nil {
		logger.WithError(err).Warn("Failed to post link warning")
		return
	}

	channelID, messageID := warning.ChannelID, warning.ID
	b.scheduler.Schedule("link-warning:"+messageID, linkWarningTTL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		if err := b.platform.DeleteMessage(ctx, channelID, messageID); err != nil {
			logger.WithError(err).Debug("Failed to delete link warning")
		}
	})
}

// handleMessageDelete posts the deleted message to the audit log when it was cached
func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" || m.BeforeDelete == nil || m.BeforeDelete.Author == nil {
		return
	}

	author := models.MemberInfo{
		UserID:      m.BeforeDelete.Author.ID,
		Username:    m.BeforeDelete.Author.Username,
		DisplayName: m.BeforeDelete.Author.GlobalName,
		AvatarURL:   m.BeforeDelete.Author.AvatarURL(""),
		Bot:         m.BeforeDelete.Author.Bot,
	}
	if author.DisplayName == "" {
		author.DisplayName = author.Username
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.auditLog.LogMessageDeleted(ctx, m.GuildID, author, m.ChannelID, m.BeforeDelete.Content)
}

// guildInfo reads the guild's name and member count from the state cache
func (b *Bot) guildInfo(guildID string) models.GuildInfo {
	info := models.GuildInfo{ID: guildID}
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		return info
	}

	b.session.State.RLock()
	defer b.session.State.RUnlock()
	info.Name = guild.Name
	info.MemberCount = guild.MemberCount
	return info
}

// voiceStateChange converts a gateway voice state update, reporting false for
// updates outside a guild
func voiceStateChange(v *discordgo.VoiceStateUpdate) (models.VoiceStateChange, bool) {
	if v == nil || v.VoiceState == nil || v.GuildID == "" {
		return models.VoiceStateChange{}, false
	}

	change := models.VoiceStateChange{
		GuildID:        v.GuildID,
		UserID:         v.UserID,
		DisplayName:    common.DisplayName(v.Member),
		AfterChannelID: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		change.BeforeChannelID = v.BeforeUpdate.ChannelID
	}
	return change, true
}

func memberInfo(m *discordgo.Member) models.MemberInfo {
	info := models.MemberInfo{
		DisplayName: common.DisplayName(m),
	}
	if m.User != nil {
		info.AvatarURL = m.AvatarURL("")
		info.UserID = m.User.ID
		info.Username = m.User.Username
		info.Bot = m.User.Bot
	}
	return info
}
