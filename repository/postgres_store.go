package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hoshikuzu/database"
	"hoshikuzu/models"
	"hoshikuzu/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var _ service.Store = (*PostgresStore)(nil)

// PostgresStore implements service.Store on the guild_config, voice_rooms and tickets tables
type PostgresStore struct {
	db *database.DB
	q  queryable
}

// NewPostgresStore creates a store backed by the connection pool
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db.Pool}
}

// newPostgresStoreWithTx creates a store whose statements run inside tx
func newPostgresStoreWithTx(tx queryable) *PostgresStore {
	return &PostgresStore{q: tx}
}

// Get returns the stored value or def. Read errors are logged and yield def.
func (s *PostgresStore) Get(ctx context.Context, guildID, key string, def any) any {
	query := `
		SELECT value
		FROM guild_config
		WHERE guild_id = $1 AND key = $2
	`

	var raw []byte
	err := s.q.QueryRow(ctx, query, guildID, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return def
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"key":     key,
			"error":   err,
		}).Error("Failed to read guild config value")
		return def
	}

	var value any
	if err := unmarshalJSON(raw, &value); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"key":     key,
			"error":   err,
		}).Error("Failed to decode guild config value")
		return def
	}
	return value
}

// Set upserts a value
func (s *PostgresStore) Set(ctx context.Context, guildID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for guild %s: %w", key, guildID, err)
	}

	query := `
		INSERT INTO guild_config (guild_id, key, value, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (guild_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.q.Exec(ctx, query, guildID, key, string(raw)); err != nil {
		return fmt.Errorf("failed to set %s for guild %s: %w", key, guildID, err)
	}
	return nil
}

// Unset removes a value
func (s *PostgresStore) Unset(ctx context.Context, guildID, key string) error {
	query := `DELETE FROM guild_config WHERE guild_id = $1 AND key = $2`

	if _, err := s.q.Exec(ctx, query, guildID, key); err != nil {
		return fmt.Errorf("failed to unset %s for guild %s: %w", key, guildID, err)
	}
	return nil
}

// GuildValues returns every value stored for a guild
func (s *PostgresStore) GuildValues(ctx context.Context, guildID string) (map[string]any, error) {
	query := `
		SELECT key, value
		FROM guild_config
		WHERE guild_id = $1
	`

	rows, err := s.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query config for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	values := make(map[string]any)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		var value any
		if err := unmarshalJSON(raw, &value); err != nil {
			return nil, fmt.Errorf("failed to decode %s for guild %s: %w", key, guildID, err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating config rows: %w", err)
	}
	return values, nil
}

// PutRoom inserts or replaces a room
func (s *PostgresStore) PutRoom(ctx context.Context, room *models.VoiceRoom) error {
	if room == nil || room.ChannelID == "" {
		return fmt.Errorf("room must have a channel id")
	}

	createdAt := room.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO voice_rooms (channel_id, guild_id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id)
		DO UPDATE SET guild_id = EXCLUDED.guild_id,
		              owner_id = EXCLUDED.owner_id,
		              name = EXCLUDED.name
	`

	_, err := s.q.Exec(ctx, query, room.ChannelID, room.GuildID, room.OwnerID, room.Name, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record room %s: %w", room.ChannelID, err)
	}
	return nil
}

// GetRoom returns the room tracked for a channel, or nil
func (s *PostgresStore) GetRoom(ctx context.Context, channelID string) (*models.VoiceRoom, error) {
	query := `
		SELECT channel_id, guild_id, owner_id, name, created_at
		FROM voice_rooms
		WHERE channel_id = $1
	`

	var room models.VoiceRoom
	err := s.q.QueryRow(ctx, query, channelID).Scan(
		&room.ChannelID,
		&room.GuildID,
		&room.OwnerID,
		&room.Name,
		&room.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", channelID, err)
	}
	return &room, nil
}

// DeleteRoom stops tracking a channel
func (s *PostgresStore) DeleteRoom(ctx context.Context, channelID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM voice_rooms WHERE channel_id = $1`, channelID); err != nil {
		return fmt.Errorf("failed to remove room %s: %w", channelID, err)
	}
	return nil
}

// ListRooms returns every tracked room ordered by creation time
func (s *PostgresStore) ListRooms(ctx context.Context) ([]*models.VoiceRoom, error) {
	query := `
		SELECT channel_id, guild_id, owner_id, name, created_at
		FROM voice_rooms
		ORDER BY created_at
	`

	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.VoiceRoom
	for rows.Next() {
		var room models.VoiceRoom
		if err := rows.Scan(&room.ChannelID, &room.GuildID, &room.OwnerID, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// PutTicket inserts or replaces a ticket
func (s *PostgresStore) PutTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil || ticket.ChannelID == "" {
		return fmt.Errorf("ticket must have a channel id")
	}

	createdAt := ticket.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO tickets (channel_id, id, guild_id, owner_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (channel_id)
		DO UPDATE SET reason = EXCLUDED.reason
	`

	_, err := s.q.Exec(ctx, query, ticket.ChannelID, ticket.ID, ticket.GuildID, ticket.OwnerID, ticket.Reason, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record ticket %s: %w", ticket.ChannelID, err)
	}
	return nil
}

// GetTicket returns the ticket for a channel, or nil
func (s *PostgresStore) GetTicket(ctx context.Context, channelID string) (*models.Ticket, error) {
	query := `
		SELECT channel_id, id, guild_id, owner_id, reason, created_at
		FROM tickets
		WHERE channel_id = $1
	`

	var ticket models.Ticket
	err := s.q.QueryRow(ctx, query, channelID).Scan(
		&ticket.ChannelID,
		&ticket.ID,
		&ticket.GuildID,
		&ticket.OwnerID,
		&ticket.Reason,
		&ticket.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", channelID, err)
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket
func (s *PostgresStore) DeleteTicket(ctx context.Context, channelID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM tickets WHERE channel_id = $1`, channelID); err != nil {
		return fmt.Errorf("failed to remove ticket %s: %w", channelID, err)
	}
	return nil
}

// ListTickets returns every open ticket ordered by creation time
func (s *PostgresStore) ListTickets(ctx context.Context) ([]*models.Ticket, error) {
	query := `
		SELECT channel_id, id, guild_id, owner_id, reason, created_at
		FROM tickets
		ORDER BY created_at
	`

	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		if err := rows.Scan(&ticket.ChannelID, &ticket.ID, &ticket.GuildID, &ticket.OwnerID, &ticket.Reason, &ticket.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ImportStats counts the records copied by ImportDocument
type ImportStats struct {
	Values  int
	Rooms   int
	Tickets int
}

// ImportDocument copies a file store document into the database in a single transaction
func ImportDocument(ctx context.Context, db *database.DB, doc *Document) (*ImportStats, error) {
	stats := &ImportStats{}

	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		store := newPostgresStoreWithTx(tx)

		for guildID, values := range doc.Config {
			for key, value := range values {
				if err := store.Set(ctx, guildID, key, value); err != nil {
					return err
				}
				stats.Values++
			}
		}

		for _, room := range doc.VoiceRooms {
			if err := store.PutRoom(ctx, room); err != nil {
				return err
			}
			stats.Rooms++
		}

		for _, ticket := range doc.Tickets {
			if ticket.ID == "" {
				ticket.ID = uuid.NewString()
			}
			if err := store.PutTicket(ctx, ticket); err != nil {
				return err
			}
			stats.Tickets++
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import document: %w", err)
	}

	log.WithFields(log.Fields{
		"values":  stats.Values,
		"rooms":   stats.Rooms,
		"tickets": stats.Tickets,
	}).Info("Imported document into database")

	return stats, nil
}
