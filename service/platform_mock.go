package service

import (
	"context"

	"hoshikuzu/models"

	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of Platform
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	args := m.Called(ctx, guildID, name)
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) CreateVoiceChannel(ctx context.Context, guildID, name, parentID string) (string, error) {
	args := m.Called(ctx, guildID, name, parentID)
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) CreatePrivateTextChannel(ctx context.Context, guildID, name, parentID, ownerID string) (string, error) {
	args := m.Called(ctx, guildID, name, parentID, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockPlatform) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	args := m.Called(ctx, guildID, userID, channelID)
	return args.Error(0)
}

func (m *MockPlatform) GrantRoomOwner(ctx context.Context, channelID, userID string) error {
	args := m.Called(ctx, channelID, userID)
	return args.Error(0)
}

func (m *MockPlatform) Channel(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelInfo), args.Error(1)
}

func (m *MockPlatform) FindChannel(ctx context.Context, guildID, name string, kind models.ChannelKind) (*models.ChannelInfo, error) {
	args := m.Called(ctx, guildID, name, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelInfo), args.Error(1)
}

func (m *MockPlatform) VoiceMemberCount(guildID, channelID string) int {
	args := m.Called(guildID, channelID)
	return args.Int(0)
}

func (m *MockPlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockPlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockPlatform) SetEveryoneSendMessages(ctx context.Context, guildID, channelID string, allow bool) error {
	args := m.Called(ctx, guildID, channelID, allow)
	return args.Error(0)
}

func (m *MockPlatform) SendNotice(ctx context.Context, channelID string, notice models.Notice) error {
	args := m.Called(ctx, channelID, notice)
	return args.Error(0)
}

func (m *MockPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}
