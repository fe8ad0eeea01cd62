package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hoshikuzu/models"

	log "github.com/sirupsen/logrus"
)

// memberService implements the MemberService interface
type memberService struct {
	store    ConfigStore
	platform Platform
	now      func() time.Time
}

// NewMemberService creates a new member service
func NewMemberService(store ConfigStore, platform Platform) MemberService {
	return &memberService{
		store:    store,
		platform: platform,
		now:      time.Now,
	}
}

// HandleMemberJoin grants the auto role and posts the welcome notice.
// Failures are logged only.
func (s *memberService) HandleMemberJoin(ctx context.Context, guild models.GuildInfo, member models.MemberInfo) {
	cfg, err := s.config(ctx, guild.ID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guild.ID,
			"error":   err,
		}).Error("Failed to read guild settings for member join")
		return
	}

	if cfg.AutoRoleID != "" {
		if err := s.platform.AddRole(ctx, guild.ID, member.UserID, cfg.AutoRoleID); err != nil {
			log.WithFields(log.Fields{
				"guildID": guild.ID,
				"userID":  member.UserID,
				"roleID":  cfg.AutoRoleID,
				"error":   err,
			}).Warn("Failed to grant auto role")
		}
	}

	if cfg.WelcomeChannelID == "" {
		return
	}

	notice := models.Notice{
		Title:        "🌿 Welcome!",
		Description:  fmt.Sprintf("Welcome %s to **%s**!", member.Mention(), guild.Name),
		Level:        models.NoticeLevelSuccess,
		ThumbnailURL: member.AvatarURL,
		Timestamp:    s.now().UTC(),
		Fields: []models.NoticeField{
			{Name: "👥 Members", Value: strconv.Itoa(guild.MemberCount), Inline: true},
		},
	}
	s.send(ctx, guild.ID, cfg.WelcomeChannelID, notice)
}

// HandleMemberLeave posts the goodbye notice
func (s *memberService) HandleMemberLeave(ctx context.Context, guild models.GuildInfo, member models.MemberInfo) {
	cfg, err := s.config(ctx, guild.ID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guild.ID,
			"error":   err,
		}).Error("Failed to read guild settings for member leave")
		return
	}
	if cfg.WelcomeChannelID == "" {
		return
	}

	name := member.Username
	if name == "" {
		name = member.UserID
	}

	notice := models.Notice{
		Title:        "👋 Goodbye...",
		Description:  fmt.Sprintf("%s left the server.", name),
		Level:        models.NoticeLevelError,
		ThumbnailURL: member.AvatarURL,
		Timestamp:    s.now().UTC(),
		Fields: []models.NoticeField{
			{Name: "👥 Members left", Value: strconv.Itoa(guild.MemberCount), Inline: true},
		},
	}
	s.send(ctx, guild.ID, cfg.WelcomeChannelID, notice)
}

func (s *memberService) config(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	values, err := s.store.GuildValues(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return DecodeGuildConfig(guildID, values), nil
}

func (s *memberService) send(ctx context.Context, guildID, channelID string, notice models.Notice) {
	if err := s.platform.SendNotice(ctx, channelID, notice); err != nil {
		log.WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": channelID,
			"error":     err,
		}).Warn("Failed to post member notice")
	}
}
