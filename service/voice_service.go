package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"hoshikuzu/events"
	"hoshikuzu/models"

	log "github.com/sirupsen/logrus"
)

const (
	maxChannelNameRunes = 100
	timerTaskTimeout    = 30 * time.Second
)

// VoiceConfig holds the voice room settings
type VoiceConfig struct {
	LobbyName      string
	CategoryName   string
	RoomNameFormat string        // must contain one %s for the member's display name
	EmptyGrace     time.Duration // zero deletes empty rooms immediately
	JoinCooldown   time.Duration // zero disables the lobby join limiter
}

// voiceService implements the VoiceService interface
type voiceService struct {
	store     Store
	platform  Platform
	eventBus  *events.Bus
	scheduler *Scheduler
	limiter   *JoinLimiter
	cfg       VoiceConfig
	now       func() time.Time

	// Lifecycle transitions run one at a time
	mu sync.Mutex
}

// NewVoiceService creates a new voice service
func NewVoiceService(store Store, platform Platform, eventBus *events.Bus, scheduler *Scheduler, cfg VoiceConfig) VoiceService {
	return &voiceService{
		store:     store,
		platform:  platform,
		eventBus:  eventBus,
		scheduler: scheduler,
		limiter:   NewJoinLimiter(cfg.JoinCooldown),
		cfg:       cfg,
		now:       time.Now,
	}
}

// HandleVoiceStateChange reacts to a member's voice channel transition.
// The departure is handled before the arrival so that a member moving from
// their room to the lobby frees the old room first.
func (s *voiceService) HandleVoiceStateChange(ctx context.Context, change models.VoiceStateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if change.Left() {
		s.handleLeave(ctx, change)
	}
	if change.Joined() {
		s.handleJoin(ctx, change)
	}
}

func (s *voiceService) handleJoin(ctx context.Context, change models.VoiceStateChange) {
	// A pending empty-room deletion is called off once someone is back
	if s.scheduler != nil && s.scheduler.Cancel(roomTimerKey(change.AfterChannelID)) {
		log.WithFields(log.Fields{
			"guildID":   change.GuildID,
			"channelID": change.AfterChannelID,
			"userID":    change.UserID,
		}).Debug("Room refilled before its grace period ended")
	}

	lobbyID := StringValue(s.store.Get(ctx, change.GuildID, string(models.ConfigKeyLobbyChannel), nil))
	if lobbyID == "" || change.AfterChannelID != lobbyID {
		return
	}

	logger := log.WithFields(log.Fields{
		"guildID": change.GuildID,
		"userID":  change.UserID,
		"lobbyID": lobbyID,
	})

	if !s.limiter.Allow(change.GuildID, change.UserID) {
		logger.Info("Lobby join throttled, member stays in the lobby")
		return
	}

	parentID := ""
	lobby, err := s.platform.Channel(ctx, lobbyID)
	if err != nil {
		logger.WithError(err).Warn("Failed to read lobby channel, creating room without category")
	} else if lobby != nil {
		parentID = lobby.ParentID
	}

	name := s.roomName(change.DisplayName)
	channelID, err := s.platform.CreateVoiceChannel(ctx, change.GuildID, name, parentID)
	if err != nil {
		logger.WithError(err).Error("Failed to create voice room")
		return
	}
	logger = logger.WithField("channelID", channelID)

	room := &models.VoiceRoom{
		ChannelID: channelID,
		GuildID:   change.GuildID,
		OwnerID:   change.UserID,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.RoomCreatedEvent{
		GuildID:   room.GuildID,
		ChannelID: room.ChannelID,
		OwnerID:   room.OwnerID,
		Name:      room.Name,
	})

	if err := s.store.PutRoom(ctx, room); err != nil {
		bus.Discard()
		logger.WithError(err).Error("Failed to record voice room, deleting channel")
		// An untracked room would never be cleaned up
		if delErr := s.platform.DeleteChannel(ctx, channelID); delErr != nil && !errors.Is(delErr, ErrChannelNotFound) {
			logger.WithError(delErr).Error("Failed to delete untracked voice room")
		}
		return
	}
	bus.Flush(ctx)

	if err := s.platform.GrantRoomOwner(ctx, channelID, change.UserID); err != nil {
		logger.WithError(err).Warn("Failed to grant room owner permissions")
	}

	// A failed move leaves the room in place; it is removed once seen empty
	if err := s.platform.MoveMember(ctx, change.GuildID, change.UserID, channelID); err != nil {
		logger.WithError(err).Warn("Failed to move member into voice room")
		return
	}

	logger.WithField("name", name).Info("Created voice room")
}

func (s *voiceService) handleLeave(ctx context.Context, change models.VoiceStateChange) {
	room, err := s.store.GetRoom(ctx, change.BeforeChannelID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":   change.GuildID,
			"channelID": change.BeforeChannelID,
			"error":     err,
		}).Error("Failed to look up voice room")
		return
	}
	if room == nil {
		return
	}

	s.deleteIfEmpty(ctx, room)
}

// deleteIfEmpty removes the room when nobody is connected, right away or once
// the grace period passed. Callers hold s.mu.
func (s *voiceService) deleteIfEmpty(ctx context.Context, room *models.VoiceRoom) {
	if s.platform.VoiceMemberCount(room.GuildID, room.ChannelID) > 0 {
		return
	}

	if s.cfg.EmptyGrace <= 0 || s.scheduler == nil {
		s.deleteRoom(ctx, room)
		return
	}

	channelID := room.ChannelID
	scheduled := s.scheduler.Schedule(roomTimerKey(channelID), s.cfg.EmptyGrace, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		timerCtx, cancel := context.WithTimeout(context.Background(), timerTaskTimeout)
		defer cancel()

		current, err := s.store.GetRoom(timerCtx, channelID)
		if err != nil {
			log.WithFields(log.Fields{
				"channelID": channelID,
				"error":     err,
			}).Error("Failed to look up voice room after grace period")
			return
		}
		if current == nil || s.platform.VoiceMemberCount(current.GuildID, current.ChannelID) > 0 {
			return
		}
		s.deleteRoom(timerCtx, current)
	})

	if scheduled {
		log.WithFields(log.Fields{
			"guildID":   room.GuildID,
			"channelID": channelID,
			"grace":     s.cfg.EmptyGrace,
		}).Debug("Voice room empty, deletion scheduled")
	}
}

// deleteRoom deletes the channel and forgets it. A channel that is already gone
// counts as deleted; any other failure keeps the entry for a later retry.
func (s *voiceService) deleteRoom(ctx context.Context, room *models.VoiceRoom) {
	logger := log.WithFields(log.Fields{
		"guildID":   room.GuildID,
		"channelID": room.ChannelID,
		"ownerID":   room.OwnerID,
	})

	bus := events.NewTransactionalBus(s.eventBus)

	if err := s.platform.DeleteChannel(ctx, room.ChannelID); err != nil && !errors.Is(err, ErrChannelNotFound) {
		logger.WithError(err).Error("Failed to delete empty voice room")
		bus.Publish(events.RoomDeletionFailedEvent{
			GuildID:   room.GuildID,
			ChannelID: room.ChannelID,
			Name:      room.Name,
			Reason:    err.Error(),
		})
		bus.Flush(ctx)
		return
	}

	bus.Publish(events.RoomDeletedEvent{
		GuildID:   room.GuildID,
		ChannelID: room.ChannelID,
		OwnerID:   room.OwnerID,
		Name:      room.Name,
	})

	if err := s.store.DeleteRoom(ctx, room.ChannelID); err != nil {
		bus.Discard()
		logger.WithError(err).Error("Failed to remove voice room entry")
		return
	}
	bus.Flush(ctx)

	logger.Info("Deleted empty voice room")
}

// EnsureLobby makes sure the guild has a lobby channel and stores its id.
// A configured lobby that still exists is kept; otherwise a voice channel
// named like the lobby is adopted before a new one is created.
func (s *voiceService) EnsureLobby(ctx context.Context, guildID string) (*LobbyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.WithField("guildID", guildID)

	configured := StringValue(s.store.Get(ctx, guildID, string(models.ConfigKeyLobbyChannel), nil))
	if configured != "" {
		channel, err := s.platform.Channel(ctx, configured)
		switch {
		case err == nil && channel != nil && channel.GuildID == guildID && channel.Kind == models.ChannelKindVoice:
			return &LobbyResult{ChannelID: channel.ID, CategoryID: channel.ParentID}, nil
		case err != nil && !errors.Is(err, ErrChannelNotFound):
			return nil, fmt.Errorf("failed to read configured lobby: %w", err)
		}
		logger.WithField("lobbyID", configured).Info("Configured lobby is gone, setting up a new one")
	}

	result := &LobbyResult{}

	lobby, err := s.platform.FindChannel(ctx, guildID, s.cfg.LobbyName, models.ChannelKindVoice)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lobby channel: %w", err)
	}

	if lobby != nil {
		result.ChannelID = lobby.ID
		result.CategoryID = lobby.ParentID
	} else {
		category, err := s.platform.FindChannel(ctx, guildID, s.cfg.CategoryName, models.ChannelKindCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to look up lobby category: %w", err)
		}
		if category != nil {
			result.CategoryID = category.ID
		} else {
			result.CategoryID, err = s.platform.CreateCategory(ctx, guildID, s.cfg.CategoryName)
			if err != nil {
				return nil, fmt.Errorf("failed to create lobby category: %w", err)
			}
			result.CategoryCreated = true
		}

		result.ChannelID, err = s.platform.CreateVoiceChannel(ctx, guildID, s.cfg.LobbyName, result.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to create lobby channel: %w", err)
		}
		result.Created = true
	}

	bus := events.NewTransactionalBus(s.eventBus)
	bus.Publish(events.LobbyCreatedEvent{
		GuildID:    guildID,
		ChannelID:  result.ChannelID,
		CategoryID: result.CategoryID,
		Adopted:    !result.Created,
	})

	// The channel is kept on failure; the next call adopts it by name
	if err := s.store.Set(ctx, guildID, string(models.ConfigKeyLobbyChannel), result.ChannelID); err != nil {
		bus.Discard()
		return nil, fmt.Errorf("failed to save lobby channel: %w", err)
	}
	bus.Flush(ctx)

	logger.WithFields(log.Fields{
		"lobbyID":         result.ChannelID,
		"categoryID":      result.CategoryID,
		"created":         result.Created,
		"categoryCreated": result.CategoryCreated,
	}).Info("Lobby ready")

	return result, nil
}

// ReconcileRooms restores the room/channel correspondence for a guild after
// downtime: entries of vanished channels are dropped and empty rooms deleted.
func (s *voiceService) ReconcileRooms(ctx context.Context, guildID string) error {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list voice rooms: %w", err)
	}

	for _, room := range rooms {
		if room.GuildID != guildID {
			continue
		}
		s.reconcileRoom(ctx, room)
	}
	return nil
}

func (s *voiceService) reconcileRoom(ctx context.Context, room *models.VoiceRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.WithFields(log.Fields{
		"guildID":   room.GuildID,
		"channelID": room.ChannelID,
	})

	channel, err := s.platform.Channel(ctx, room.ChannelID)
	if errors.Is(err, ErrChannelNotFound) || (err == nil && channel == nil) {
		if err := s.store.DeleteRoom(ctx, room.ChannelID); err != nil {
			logger.WithError(err).Error("Failed to drop entry of vanished voice room")
			return
		}
		logger.Info("Dropped entry of vanished voice room")
		return
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to read voice room during reconcile")
		return
	}

	s.deleteIfEmpty(ctx, room)
}

// roomName formats the room name for a member, capped to the platform limit
func (s *voiceService) roomName(displayName string) string {
	if displayName == "" {
		displayName = "member"
	}
	name := fmt.Sprintf(s.cfg.RoomNameFormat, displayName)
	if utf8.RuneCountInString(name) <= maxChannelNameRunes {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxChannelNameRunes])
}

func roomTimerKey(channelID string) string {
	return "voice-room:" + channelID
}
