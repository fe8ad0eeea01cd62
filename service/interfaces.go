package service

import (
	"context"
	"time"

	"hoshikuzu/events"
	"hoshikuzu/models"
)

// ConfigStore defines the interface for per-guild key/value settings
type ConfigStore interface {
	// Get returns the stored value or def. It never fails: a missing guild or key,
	// or a backend read error, yields def.
	Get(ctx context.Context, guildID, key string, def any) any

	// Set inserts or overwrites a value. The write is durable once Set returns.
	Set(ctx context.Context, guildID, key string, value any) error

	// Unset removes a value. Removing a missing key is not an error.
	Unset(ctx context.Context, guildID, key string) error

	// GuildValues returns a copy of every value stored for a guild
	GuildValues(ctx context.Context, guildID string) (map[string]any, error)
}

// VoiceRoomRepository defines the interface for temporary voice room tracking
type VoiceRoomRepository interface {
	// PutRoom records a room, keyed by its channel id
	PutRoom(ctx context.Context, room *models.VoiceRoom) error

	// GetRoom returns the room tracked for a channel, or nil if the channel is not a room
	GetRoom(ctx context.Context, channelID string) (*models.VoiceRoom, error)

	// DeleteRoom stops tracking a channel
	DeleteRoom(ctx context.Context, channelID string) error

	// ListRooms returns every tracked room
	ListRooms(ctx context.Context) ([]*models.VoiceRoom, error)
}

// TicketRepository defines the interface for support ticket tracking
type TicketRepository interface {
	PutTicket(ctx context.Context, ticket *models.Ticket) error

	// GetTicket returns the ticket for a channel, or nil if the channel is not a ticket
	GetTicket(ctx context.Context, channelID string) (*models.Ticket, error)

	DeleteTicket(ctx context.Context, channelID string) error

	ListTickets(ctx context.Context) ([]*models.Ticket, error)
}

// Store is the complete persistence contract used by the services
type Store interface {
	ConfigStore
	VoiceRoomRepository
	TicketRepository

	// Close flushes and releases the backend
	Close() error
}

// Platform defines the chat platform operations the services depend on.
// Implementations return ErrChannelNotFound when a channel does not exist.
type Platform interface {
	// CreateCategory creates a channel category and returns its id
	CreateCategory(ctx context.Context, guildID, name string) (string, error)

	// CreateVoiceChannel creates a voice channel under parentID (may be empty) and returns its id
	CreateVoiceChannel(ctx context.Context, guildID, name, parentID string) (string, error)

	// CreatePrivateTextChannel creates a text channel visible only to ownerID and the bot
	CreatePrivateTextChannel(ctx context.Context, guildID, name, parentID, ownerID string) (string, error)

	// DeleteChannel deletes a channel
	DeleteChannel(ctx context.Context, channelID string) error

	// MoveMember moves a connected member into a voice channel
	MoveMember(ctx context.Context, guildID, userID, channelID string) error

	// GrantRoomOwner gives a member connect, speak and manage rights on a channel
	GrantRoomOwner(ctx context.Context, channelID, userID string) error

	// Channel returns a channel by id
	Channel(ctx context.Context, channelID string) (*models.ChannelInfo, error)

	// FindChannel returns the first guild channel of the given kind and name, or nil
	FindChannel(ctx context.Context, guildID, name string, kind models.ChannelKind) (*models.ChannelInfo, error)

	// VoiceMemberCount returns how many members are currently connected to a voice channel
	VoiceMemberCount(guildID, channelID string) int

	// AddRole grants a role to a member
	AddRole(ctx context.Context, guildID, userID, roleID string) error

	// RemoveRole takes a role from a member
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	// SetEveryoneSendMessages allows or denies @everyone sending messages in a channel,
	// keeping the other bits of the existing overwrite
	SetEveryoneSendMessages(ctx context.Context, guildID, channelID string, allow bool) error

	// SendNotice posts a notice to a text channel
	SendNotice(ctx context.Context, channelID string, notice models.Notice) error

	// DeleteMessage deletes a message
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// GuildConfigService defines the interface for typed guild settings
type GuildConfigService interface {
	// GetConfig returns the typed settings of a guild
	GetConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)

	// SetChannel validates and stores a channel setting (lobby, logs, welcome)
	SetChannel(ctx context.Context, guildID string, key models.ConfigKey, channelID string) error

	// SetAutoRole validates and stores the role granted on join
	SetAutoRole(ctx context.Context, guildID, roleID string) error

	// SetAllowLinks enables or disables the link allow list
	SetAllowLinks(ctx context.Context, guildID string, enabled bool) error

	// AllowLinkChannel adds a channel to the allow list; returns false if it was already there
	AllowLinkChannel(ctx context.Context, guildID, channelID string) (bool, error)

	// DisallowLinkChannel removes a channel from the allow list; returns false if it was not there
	DisallowLinkChannel(ctx context.Context, guildID, channelID string) (bool, error)

	// Clear removes a setting
	Clear(ctx context.Context, guildID string, key models.ConfigKey) error
}

// LobbyResult describes the outcome of EnsureLobby
type LobbyResult struct {
	ChannelID       string
	CategoryID      string
	Created         bool // a new lobby channel was created
	CategoryCreated bool // a new category was created
}

// VoiceService defines the interface for the temporary voice room lifecycle
type VoiceService interface {
	// HandleVoiceStateChange reacts to a member's voice channel transition
	HandleVoiceStateChange(ctx context.Context, change models.VoiceStateChange)

	// EnsureLobby makes sure the guild has a lobby channel and stores its id
	EnsureLobby(ctx context.Context, guildID string) (*LobbyResult, error)

	// ReconcileRooms drops a guild's entries for vanished channels and deletes its empty rooms
	ReconcileRooms(ctx context.Context, guildID string) error
}

// TicketService defines the interface for support tickets
type TicketService interface {
	// OpenTicket creates a private ticket channel for a member
	OpenTicket(ctx context.Context, guildID, ownerID, ownerName, reason string) (*models.Ticket, error)

	// CloseTicket schedules the deletion of a ticket channel
	CloseTicket(ctx context.Context, channelID, closedBy string) (time.Duration, error)
}

// MemberService defines the interface for member arrival and departure handling
type MemberService interface {
	// HandleMemberJoin grants the auto role and posts the welcome notice
	HandleMemberJoin(ctx context.Context, guild models.GuildInfo, member models.MemberInfo)

	// HandleMemberLeave posts the goodbye notice
	HandleMemberLeave(ctx context.Context, guild models.GuildInfo, member models.MemberInfo)
}

// LinkFilterService defines the interface for the link filter
type LinkFilterService interface {
	// Violates reports whether a message must be removed for containing a link
	Violates(ctx context.Context, guildID, channelID, content string) bool
}

// AuditLogService defines the interface for posting audit notices to the log channel
type AuditLogService interface {
	// Subscribe registers the audit handlers on the event bus
	Subscribe(bus *events.Bus)

	// LogMessageDeleted posts a deleted message notice
	LogMessageDeleted(ctx context.Context, guildID string, author models.MemberInfo, channelID, content string)
}

// ModerationService defines the interface for moderator channel and role actions
type ModerationService interface {
	// LockChannel stops @everyone from sending messages in a text channel
	LockChannel(ctx context.Context, guildID, channelID, actorID string) error

	// UnlockChannel lets @everyone send messages in a text channel again
	UnlockChannel(ctx context.Context, guildID, channelID, actorID string) error

	// ToggleRole removes the role when memberRoles holds it and adds it otherwise.
	// It reports whether the role was added.
	ToggleRole(ctx context.Context, guildID, userID, roleID string, memberRoles []string, actorID string) (bool, error)
}
