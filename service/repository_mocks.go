package service

import (
	"context"

	"hoshikuzu/models"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, guildID, key string, def any) any {
	args := m.Called(ctx, guildID, key, def)
	return args.Get(0)
}

func (m *MockStore) Set(ctx context.Context, guildID, key string, value any) error {
	args := m.Called(ctx, guildID, key, value)
	return args.Error(0)
}

func (m *MockStore) Unset(ctx context.Context, guildID, key string) error {
	args := m.Called(ctx, guildID, key)
	return args.Error(0)
}

func (m *MockStore) GuildValues(ctx context.Context, guildID string) (map[string]any, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockStore) PutRoom(ctx context.Context, room *models.VoiceRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockStore) GetRoom(ctx context.Context, channelID string) (*models.VoiceRoom, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceRoom), args.Error(1)
}

func (m *MockStore) DeleteRoom(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockStore) ListRooms(ctx context.Context) ([]*models.VoiceRoom, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VoiceRoom), args.Error(1)
}

func (m *MockStore) PutTicket(ctx context.Context, ticket *models.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockStore) GetTicket(ctx context.Context, channelID string) (*models.Ticket, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockStore) DeleteTicket(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockStore) ListTickets(ctx context.Context) ([]*models.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
