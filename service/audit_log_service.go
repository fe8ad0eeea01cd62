package service

import (
	"context"
	"fmt"
	"time"

	"hoshikuzu/events"
	"hoshikuzu/models"

	log "github.com/sirupsen/logrus"
)

const maxNoticeFieldLength = 1024

// auditLogService implements the AuditLogService interface
type auditLogService struct {
	store    ConfigStore
	platform Platform
	now      func() time.Time
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(store ConfigStore, platform Platform) AuditLogService {
	return &auditLogService{
		store:    store,
		platform: platform,
		now:      time.Now,
	}
}

// Subscribe registers the audit handlers on the event bus
func (s *auditLogService) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeLobbyCreated, s.handleEvent)
	bus.Subscribe(events.EventTypeRoomCreated, s.handleEvent)
	bus.Subscribe(events.EventTypeRoomDeleted, s.handleEvent)
	bus.Subscribe(events.EventTypeRoomDeletionFailed, s.handleEvent)
	bus.Subscribe(events.EventTypeTicketOpened, s.handleEvent)
	bus.Subscribe(events.EventTypeTicketClosed, s.handleEvent)
	bus.Subscribe(events.EventTypeChannelLocked, s.handleEvent)
	bus.Subscribe(events.EventTypeMemberRoleChanged, s.handleEvent)
}

func (s *auditLogService) handleEvent(ctx context.Context, event events.Event) {
	guildEvent, ok := event.(events.GuildEvent)
	if !ok {
		return
	}

	notice, ok := noticeForEvent(event)
	if !ok {
		return
	}
	notice.Timestamp = s.now().UTC()

	s.post(ctx, guildEvent.Guild(), notice)
}

// noticeForEvent describes an event for the log channel
func noticeForEvent(event events.Event) (models.Notice, bool) {
	switch e := event.(type) {
	case events.LobbyCreatedEvent:
		description := fmt.Sprintf("Lobby <#%s> is ready.", e.ChannelID)
		if e.Adopted {
			description = fmt.Sprintf("Existing channel <#%s> is now the lobby.", e.ChannelID)
		}
		return models.Notice{
			Title:       "🔊 Voice lobby configured",
			Description: description,
			Level:       models.NoticeLevelInfo,
		}, true
	case events.RoomCreatedEvent:
		return models.Notice{
			Title:       "🔊 Voice room created",
			Description: fmt.Sprintf("<@%s> opened **%s**.", e.OwnerID, e.Name),
			Level:       models.NoticeLevelSuccess,
			Fields: []models.NoticeField{
				{Name: "Channel", Value: e.ChannelID, Inline: true},
			},
		}, true
	case events.RoomDeletedEvent:
		return models.Notice{
			Title:       "🔇 Voice room deleted",
			Description: fmt.Sprintf("**%s** was empty and has been removed.", e.Name),
			Level:       models.NoticeLevelInfo,
			Fields: []models.NoticeField{
				{Name: "Owner", Value: fmt.Sprintf("<@%s>", e.OwnerID), Inline: true},
				{Name: "Channel", Value: e.ChannelID, Inline: true},
			},
		}, true
	case events.RoomDeletionFailedEvent:
		return models.Notice{
			Title:       "⚠️ Voice room could not be deleted",
			Description: fmt.Sprintf("<#%s> is empty but deleting it failed. It will be retried.", e.ChannelID),
			Level:       models.NoticeLevelWarning,
			Fields: []models.NoticeField{
				{Name: "Reason", Value: truncate(e.Reason, maxNoticeFieldLength)},
			},
		}, true
	case events.TicketOpenedEvent:
		return models.Notice{
			Title:       "🎫 Ticket opened",
			Description: fmt.Sprintf("<@%s> opened <#%s>.", e.OwnerID, e.ChannelID),
			Level:       models.NoticeLevelSuccess,
			Fields: []models.NoticeField{
				{Name: "Reason", Value: truncate(e.Reason, maxNoticeFieldLength)},
			},
		}, true
	case events.TicketClosedEvent:
		return models.Notice{
			Title:       "🔒 Ticket closed",
			Description: fmt.Sprintf("Ticket of <@%s> closed by <@%s>.", e.OwnerID, e.ClosedBy),
			Level:       models.NoticeLevelInfo,
		}, true
	case events.ChannelLockedEvent:
		if e.Locked {
			return models.Notice{
				Title:       "🔒 Channel locked",
				Description: fmt.Sprintf("<#%s> was locked by <@%s>.", e.ChannelID, e.ActorID),
				Level:       models.NoticeLevelWarning,
			}, true
		}
		return models.Notice{
			Title:       "🔓 Channel unlocked",
			Description: fmt.Sprintf("<#%s> was unlocked by <@%s>.", e.ChannelID, e.ActorID),
			Level:       models.NoticeLevelInfo,
		}, true
	case events.MemberRoleChangedEvent:
		description := fmt.Sprintf("<@%s> gave <@&%s> to <@%s>.", e.ActorID, e.RoleID, e.UserID)
		if !e.Added {
			description = fmt.Sprintf("<@%s> removed <@&%s> from <@%s>.", e.ActorID, e.RoleID, e.UserID)
		}
		return models.Notice{
			Title:       "🏷️ Member role changed",
			Description: description,
			Level:       models.NoticeLevelInfo,
		}, true
	default:
		return models.Notice{}, false
	}
}

// LogMessageDeleted posts a deleted message notice
func (s *auditLogService) LogMessageDeleted(ctx context.Context, guildID string, author models.MemberInfo, channelID, content string) {
	if author.Bot {
		return
	}
	if content == "" {
		content = "[embed/attachment]"
	}

	s.post(ctx, guildID, models.Notice{
		Title: "🗑️ Message deleted",
		Level: models.NoticeLevelWarning,
		Fields: []models.NoticeField{
			{Name: "Author", Value: fmt.Sprintf("%s (%s)", author.Username, author.UserID)},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", channelID)},
			{Name: "Content", Value: truncate(content, maxNoticeFieldLength)},
		},
		Timestamp: s.now().UTC(),
	})
}

func (s *auditLogService) post(ctx context.Context, guildID string, notice models.Notice) {
	logChannel := StringValue(s.store.Get(ctx, guildID, string(models.ConfigKeyLogChannel), nil))
	if logChannel == "" {
		return
	}

	if err := s.platform.SendNotice(ctx, logChannel, notice); err != nil {
		log.WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": logChannel,
			"error":     err,
		}).Warn("Failed to post audit notice")
	}
}

// truncate caps s to max runes, marking the cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
