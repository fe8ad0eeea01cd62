package service

import (
	"context"
	"fmt"
	"slices"

	"hoshikuzu/events"
	"hoshikuzu/models"

	log "github.com/sirupsen/logrus"
)

// moderationService implements the ModerationService interface
type moderationService struct {
	platform Platform
	eventBus *events.Bus
}

// NewModerationService creates a new moderation service
func NewModerationService(platform Platform, eventBus *events.Bus) ModerationService {
	return &moderationService{
		platform: platform,
		eventBus: eventBus,
	}
}

// LockChannel stops @everyone from sending messages in a text channel
func (s *moderationService) LockChannel(ctx context.Context, guildID, channelID, actorID string) error {
	return s.setLocked(ctx, guildID, channelID, actorID, true)
}

// UnlockChannel lets @everyone send messages in a text channel again
func (s *moderationService) UnlockChannel(ctx context.Context, guildID, channelID, actorID string) error {
	return s.setLocked(ctx, guildID, channelID, actorID, false)
}

func (s *moderationService) setLocked(ctx context.Context, guildID, channelID, actorID string, locked bool) error {
	if err := ValidateSnowflake(channelID); err != nil {
		return err
	}

	channel, err := s.platform.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.GuildID != "" && channel.GuildID != guildID {
		return ErrChannelNotFound
	}
	if channel.Kind != models.ChannelKindText {
		return fmt.Errorf("%w: <#%s> is not a text channel", ErrWrongChannelKind, channelID)
	}

	if err := s.platform.SetEveryoneSendMessages(ctx, guildID, channelID, !locked); err != nil {
		return fmt.Errorf("failed to update channel permissions: %w", err)
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.ChannelLockedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		ActorID:   actorID,
		Locked:    locked,
	})
	bus.Flush(ctx)

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"channelID": channelID,
		"actorID":   actorID,
		"locked":    locked,
	}).Info("Channel lock changed")
	return nil
}

// ToggleRole removes the role when memberRoles holds it and adds it otherwise
func (s *moderationService) ToggleRole(ctx context.Context, guildID, userID, roleID string, memberRoles []string, actorID string) (bool, error) {
	if err := ValidateSnowflake(userID); err != nil {
		return false, err
	}
	if err := ValidateSnowflake(roleID); err != nil {
		return false, err
	}

	add := !slices.Contains(memberRoles, roleID)
	if add {
		if err := s.platform.AddRole(ctx, guildID, userID, roleID); err != nil {
			return false, fmt.Errorf("failed to add role: %w", err)
		}
	} else {
		if err := s.platform.RemoveRole(ctx, guildID, userID, roleID); err != nil {
			return false, fmt.Errorf("failed to remove role: %w", err)
		}
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.MemberRoleChangedEvent{
		GuildID: guildID,
		UserID:  userID,
		RoleID:  roleID,
		ActorID: actorID,
		Added:   add,
	})
	bus.Flush(ctx)

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"roleID":  roleID,
		"actorID": actorID,
		"added":   add,
	}).Info("Member role toggled")
	return add, nil
}
