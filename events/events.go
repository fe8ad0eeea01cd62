package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLobbyCreated       EventType = "lobby_created"
	EventTypeRoomCreated        EventType = "room_created"
	EventTypeRoomDeleted        EventType = "room_deleted"
	EventTypeRoomDeletionFailed EventType = "room_deletion_failed"
	EventTypeTicketOpened       EventType = "ticket_opened"
	EventTypeTicketClosed       EventType = "ticket_closed"
	EventTypeChannelLocked      EventType = "channel_locked"
	EventTypeMemberRoleChanged  EventType = "member_role_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GuildEvent is implemented by events scoped to a guild
type GuildEvent interface {
	Event
	Guild() string
}

// LobbyCreatedEvent represents a lobby channel set up by an admin
type LobbyCreatedEvent struct {
	GuildID    string
	ChannelID  string
	CategoryID string
	Adopted    bool // an existing channel was reused instead of created
}

func (e LobbyCreatedEvent) Type() EventType {
	return EventTypeLobbyCreated
}

func (e LobbyCreatedEvent) Guild() string {
	return e.GuildID
}

// RoomCreatedEvent represents a temporary voice room created for a member
type RoomCreatedEvent struct {
	GuildID   string
	ChannelID string
	OwnerID   string
	Name      string
}

func (e RoomCreatedEvent) Type() EventType {
	return EventTypeRoomCreated
}

func (e RoomCreatedEvent) Guild() string {
	return e.GuildID
}

// RoomDeletedEvent represents a temporary voice room removed after emptying
type RoomDeletedEvent struct {
	GuildID   string
	ChannelID string
	OwnerID   string
	Name      string
}

func (e RoomDeletedEvent) Type() EventType {
	return EventTypeRoomDeleted
}

func (e RoomDeletedEvent) Guild() string {
	return e.GuildID
}

// RoomDeletionFailedEvent represents an empty room the platform refused to delete
type RoomDeletionFailedEvent struct {
	GuildID   string
	ChannelID string
	Name      string
	Reason    string
}

func (e RoomDeletionFailedEvent) Type() EventType {
	return EventTypeRoomDeletionFailed
}

func (e RoomDeletionFailedEvent) Guild() string {
	return e.GuildID
}

// TicketOpenedEvent represents a new support ticket
type TicketOpenedEvent struct {
	GuildID   string
	ChannelID string
	TicketID  string
	OwnerID   string
	Reason    string
}

func (e TicketOpenedEvent) Type() EventType {
	return EventTypeTicketOpened
}

func (e TicketOpenedEvent) Guild() string {
	return e.GuildID
}

// TicketClosedEvent represents a ticket channel deleted after close
type TicketClosedEvent struct {
	GuildID   string
	ChannelID string
	TicketID  string
	OwnerID   string
	ClosedBy  string
}

func (e TicketClosedEvent) Type() EventType {
	return EventTypeTicketClosed
}

func (e TicketClosedEvent) Guild() string {
	return e.GuildID
}

// ChannelLockedEvent represents a moderator locking or unlocking a text channel
type ChannelLockedEvent struct {
	GuildID   string
	ChannelID string
	ActorID   string
	Locked    bool
}

func (e ChannelLockedEvent) Type() EventType {
	return EventTypeChannelLocked
}

func (e ChannelLockedEvent) Guild() string {
	return e.GuildID
}

// MemberRoleChangedEvent represents a role given to or taken from a member by a moderator
type MemberRoleChangedEvent struct {
	GuildID string
	UserID  string
	RoleID  string
	ActorID string
	Added   bool
}

func (e MemberRoleChangedEvent) Type() EventType {
	return EventTypeMemberRoleChanged
}

func (e MemberRoleChangedEvent) Guild() string {
	return e.GuildID
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers may post to Discord; never block the emitter on them
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised during one operation and hands them to
// the real bus only once the operation's state change has been persisted.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush emits every pending event. Called after the store write succeeded.
func (b *TransactionalBus) Flush(ctx context.Context) {
	if b.real == nil {
		b.pending = nil
		return
	}

	// Handlers outlive the operation; detach them from its cancellation
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called when the operation failed.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
