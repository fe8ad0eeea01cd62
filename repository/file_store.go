package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"hoshikuzu/models"
	"hoshikuzu/service"

	log "github.com/sirupsen/logrus"
)

var _ service.Store = (*FileStore)(nil)

// ErrCorruptDocument is returned when the data file exists but cannot be decoded
var ErrCorruptDocument = errors.New("corrupt data file")

// Document is the on-disk layout of the file store
type Document struct {
	Config     map[string]map[string]any    `json:"config"`
	VoiceRooms map[string]*models.VoiceRoom `json:"voiceRooms"`
	Tickets    map[string]*models.Ticket    `json:"tickets"`
}

func newDocument() *Document {
	return &Document{
		Config:     make(map[string]map[string]any),
		VoiceRooms: make(map[string]*models.VoiceRoom),
		Tickets:    make(map[string]*models.Ticket),
	}
}

// normalize fills nil maps, including null per-guild settings, and restores the channel ids kept as map keys
func (d *Document) normalize() {
	if d.Config == nil {
		d.Config = make(map[string]map[string]any)
	}
	if d.VoiceRooms == nil {
		d.VoiceRooms = make(map[string]*models.VoiceRoom)
	}
	if d.Tickets == nil {
		d.Tickets = make(map[string]*models.Ticket)
	}
	for guildID, values := range d.Config {
		if values == nil {
			d.Config[guildID] = make(map[string]any)
		}
	}
	for channelID, room := range d.VoiceRooms {
		if room == nil {
			delete(d.VoiceRooms, channelID)
			continue
		}
		room.ChannelID = channelID
	}
	for channelID, ticket := range d.Tickets {
		if ticket == nil {
			delete(d.Tickets, channelID)
			continue
		}
		ticket.ChannelID = channelID
	}
}

// ReadDocument loads a document from disk. A missing file yields an empty document.
func ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := newDocument()
	if err := unmarshalJSON(raw, doc); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptDocument, path, err)
	}
	doc.normalize()
	return doc, nil
}

// FileStore keeps the whole state in memory and rewrites its JSON file on every mutation.
// It assumes it is the only writer of the file.
type FileStore struct {
	path string
	mu   sync.RWMutex
	doc  *Document
}

// NewFileStore opens the store at path. An absent file starts an empty store; an
// unparsable one is logged and replaced by an empty store on the next write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	doc, err := ReadDocument(path)
	if err != nil {
		if !errors.Is(err, ErrCorruptDocument) {
			return nil, err
		}
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Warn("Data file is corrupted, starting with an empty store")
		doc = newDocument()
	}

	log.WithFields(log.Fields{
		"path":   path,
		"guilds": len(doc.Config),
		"rooms":  len(doc.VoiceRooms),
	}).Info("File store loaded")

	return &FileStore{path: path, doc: doc}, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current document
func (s *FileStore) Snapshot() (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := json.Marshal(s.doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	doc := newDocument()
	if err := unmarshalJSON(raw, doc); err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	doc.normalize()
	return doc, nil
}

// Get returns the stored value or def
func (s *FileStore) Get(_ context.Context, guildID, key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.doc.Config[guildID]
	if !ok {
		return def
	}
	value, ok := values[key]
	if !ok {
		return def
	}
	return value
}

// Set stores a value and rewrites the file before returning
func (s *FileStore) Set(_ context.Context, guildID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, guildExisted := s.doc.Config[guildID]
	if !guildExisted {
		values = make(map[string]any)
		s.doc.Config[guildID] = values
	}
	previous, keyExisted := values[key]
	values[key] = value

	if err := s.persistLocked(); err != nil {
		if keyExisted {
			values[key] = previous
		} else {
			delete(values, key)
		}
		if !guildExisted {
			delete(s.doc.Config, guildID)
		}
		return fmt.Errorf("failed to set %s for guild %s: %w", key, guildID, err)
	}
	return nil
}

// Unset removes a value and rewrites the file before returning
func (s *FileStore) Unset(_ context.Context, guildID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.doc.Config[guildID]
	if !ok {
		return nil
	}
	previous, ok := values[key]
	if !ok {
		return nil
	}
	delete(values, key)

	if err := s.persistLocked(); err != nil {
		values[key] = previous
		return fmt.Errorf("failed to unset %s for guild %s: %w", key, guildID, err)
	}
	return nil
}

// GuildValues returns a copy of the values stored for a guild
func (s *FileStore) GuildValues(_ context.Context, guildID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]any, len(s.doc.Config[guildID]))
	for k, v := range s.doc.Config[guildID] {
		values[k] = v
	}
	return values, nil
}

// PutRoom records a voice room
func (s *FileStore) PutRoom(_ context.Context, room *models.VoiceRoom) error {
	if room == nil || room.ChannelID == "" {
		return fmt.Errorf("room must have a channel id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *room
	previous, existed := s.doc.VoiceRooms[room.ChannelID]
	s.doc.VoiceRooms[room.ChannelID] = &stored

	if err := s.persistLocked(); err != nil {
		if existed {
			s.doc.VoiceRooms[room.ChannelID] = previous
		} else {
			delete(s.doc.VoiceRooms, room.ChannelID)
		}
		return fmt.Errorf("failed to record room %s: %w", room.ChannelID, err)
	}
	return nil
}

// GetRoom returns the room tracked for a channel, or nil
func (s *FileStore) GetRoom(_ context.Context, channelID string) (*models.VoiceRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.doc.VoiceRooms[channelID]
	if !ok {
		return nil, nil
	}
	copied := *room
	return &copied, nil
}

// DeleteRoom stops tracking a channel
func (s *FileStore) DeleteRoom(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.doc.VoiceRooms[channelID]
	if !ok {
		return nil
	}
	delete(s.doc.VoiceRooms, channelID)

	if err := s.persistLocked(); err != nil {
		s.doc.VoiceRooms[channelID] = previous
		return fmt.Errorf("failed to remove room %s: %w", channelID, err)
	}
	return nil
}

// ListRooms returns every tracked room ordered by creation time
func (s *FileStore) ListRooms(_ context.Context) ([]*models.VoiceRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.VoiceRoom, 0, len(s.doc.VoiceRooms))
	for _, room := range s.doc.VoiceRooms {
		copied := *room
		rooms = append(rooms, &copied)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// PutTicket records a ticket
func (s *FileStore) PutTicket(_ context.Context, ticket *models.Ticket) error {
	if ticket == nil || ticket.ChannelID == "" {
		return fmt.Errorf("ticket must have a channel id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ticket
	previous, existed := s.doc.Tickets[ticket.ChannelID]
	s.doc.Tickets[ticket.ChannelID] = &stored

	if err := s.persistLocked(); err != nil {
		if existed {
			s.doc.Tickets[ticket.ChannelID] = previous
		} else {
			delete(s.doc.Tickets, ticket.ChannelID)
		}
		return fmt.Errorf("failed to record ticket %s: %w", ticket.ChannelID, err)
	}
	return nil
}

// GetTicket returns the ticket for a channel, or nil
func (s *FileStore) GetTicket(_ context.Context, channelID string) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.doc.Tickets[channelID]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

// DeleteTicket removes a ticket
func (s *FileStore) DeleteTicket(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.doc.Tickets[channelID]
	if !ok {
		return nil
	}
	delete(s.doc.Tickets, channelID)

	if err := s.persistLocked(); err != nil {
		s.doc.Tickets[channelID] = previous
		return fmt.Errorf("failed to remove ticket %s: %w", channelID, err)
	}
	return nil
}

// ListTickets returns every open ticket ordered by creation time
func (s *FileStore) ListTickets(_ context.Context) ([]*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickets := make([]*models.Ticket, 0, len(s.doc.Tickets))
	for _, ticket := range s.doc.Tickets {
		copied := *ticket
		tickets = append(tickets, &copied)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
	return tickets, nil
}

// Close writes the document one last time
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked serializes the whole document and replaces the file atomically.
// Callers hold s.mu.
func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// unmarshalJSON decodes keeping numbers as json.Number so snowflakes stored as
// numbers keep their precision
func unmarshalJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after document")
	}
	return nil
}

// writeFileAtomic writes to a temporary file, syncs it and renames it over path
func writeFileAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"

	file, err := os.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Make the rename itself durable
	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		dir.Sync()
		dir.Close()
	}

	return nil
}
