package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"hoshikuzu/events"
	"hoshikuzu/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTicketReason   = "Support"
	maxTicketChannelRunes = 90
)

// TicketConfig holds the ticket settings
type TicketConfig struct {
	CategoryName string
	CloseDelay   time.Duration
}

// ticketService implements the TicketService interface
type ticketService struct {
	store     Store
	platform  Platform
	eventBus  *events.Bus
	scheduler *Scheduler
	cfg       TicketConfig
	now       func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(store Store, platform Platform, eventBus *events.Bus, scheduler *Scheduler, cfg TicketConfig) TicketService {
	return &ticketService{
		store:     store,
		platform:  platform,
		eventBus:  eventBus,
		scheduler: scheduler,
		cfg:       cfg,
		now:       time.Now,
	}
}

// OpenTicket creates a private ticket channel for a member
func (s *ticketService) OpenTicket(ctx context.Context, guildID, ownerID, ownerName, reason string) (*models.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultTicketReason
	}

	category, err := s.platform.FindChannel(ctx, guildID, s.cfg.CategoryName, models.ChannelKindCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket category: %w", err)
	}
	categoryID := ""
	if category != nil {
		categoryID = category.ID
	} else {
		categoryID, err = s.platform.CreateCategory(ctx, guildID, s.cfg.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to create ticket category: %w", err)
		}
	}

	channelID, err := s.platform.CreatePrivateTextChannel(ctx, guildID, TicketChannelName(ownerName), categoryID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	ticket := &models.Ticket{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.TicketOpenedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		TicketID:  ticket.ID,
		OwnerID:   ownerID,
		Reason:    reason,
	})

	if err := s.store.PutTicket(ctx, ticket); err != nil {
		bus.Discard()
		if delErr := s.platform.DeleteChannel(ctx, channelID); delErr != nil && !errors.Is(delErr, ErrChannelNotFound) {
			log.WithFields(log.Fields{
				"guildID":   guildID,
				"channelID": channelID,
				"error":     delErr,
			}).Error("Failed to delete untracked ticket channel")
		}
		return nil, fmt.Errorf("failed to record ticket: %w", err)
	}
	bus.Flush(ctx)

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"channelID": channelID,
		"ticketID":  ticket.ID,
		"ownerID":   ownerID,
	}).Info("Ticket opened")

	return ticket, nil
}

// CloseTicket schedules the deletion of a ticket channel and returns the delay
func (s *ticketService) CloseTicket(ctx context.Context, channelID, closedBy string) (time.Duration, error) {
	ticket, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return 0, ErrTicketNotFound
	}

	key := ticketTimerKey(channelID)
	if s.scheduler.Pending(key) {
		return 0, ErrTicketClosing
	}

	scheduled := s.scheduler.Schedule(key, s.cfg.CloseDelay, func() {
		timerCtx, cancel := context.WithTimeout(context.Background(), timerTaskTimeout)
		defer cancel()
		s.deleteTicket(timerCtx, ticket, closedBy)
	})
	if !scheduled {
		return 0, fmt.Errorf("ticket close rejected, shutting down")
	}

	log.WithFields(log.Fields{
		"guildID":   ticket.GuildID,
		"channelID": channelID,
		"closedBy":  closedBy,
		"delay":     s.cfg.CloseDelay,
	}).Info("Ticket close scheduled")

	return s.cfg.CloseDelay, nil
}

func (s *ticketService) deleteTicket(ctx context.Context, ticket *models.Ticket, closedBy string) {
	logger := log.WithFields(log.Fields{
		"guildID":   ticket.GuildID,
		"channelID": ticket.ChannelID,
		"ticketID":  ticket.ID,
	})

	if err := s.platform.DeleteChannel(ctx, ticket.ChannelID); err != nil && !errors.Is(err, ErrChannelNotFound) {
		logger.WithError(err).Error("Failed to delete ticket channel")
		return
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.TicketClosedEvent{
		GuildID:   ticket.GuildID,
		ChannelID: ticket.ChannelID,
		TicketID:  ticket.ID,
		OwnerID:   ticket.OwnerID,
		ClosedBy:  closedBy,
	})

	if err := s.store.DeleteTicket(ctx, ticket.ChannelID); err != nil {
		bus.Discard()
		logger.WithError(err).Error("Failed to remove ticket record")
		return
	}
	bus.Flush(ctx)

	logger.Info("Ticket closed")
}

// TicketChannelName builds the channel name of a member's ticket
func TicketChannelName(ownerName string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(ownerName)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				b.WriteRune('-')
			}
			lastDash = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastDash = false
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "member"
	}

	name := []rune("ticket-" + slug)
	if len(name) > maxTicketChannelRunes {
		name = name[:maxTicketChannelRunes]
	}
	return strings.TrimRight(string(name), "-")
}

func ticketTimerKey(channelID string) string {
	return "ticket:" + channelID
}
