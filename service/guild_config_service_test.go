package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hoshikuzu/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuild   = "100000000000000001"
	testLobby   = "200000000000000001"
	testText    = "200000000000000002"
	testRole    = "300000000000000001"
	otherGuild  = "100000000000000002"
	otherLobby  = "200000000000000009"
	testRoomID  = "400000000000000123"
	testOwnerID = "500000000000000001"
)

func TestGuildConfigService_GetConfig(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	service := NewGuildConfigService(mockStore, new(MockPlatform))

	mockStore.On("GuildValues", ctx, testGuild).Return(map[string]any{
		"lobbyChannelId":    json.Number(testLobby),
		"logChannelId":      testText,
		"autoRoleId":        testRole,
		"allowLinksEnabled": true,
		"allowLinkChannels": []any{testText, json.Number("200000000000000003"), nil},
		"unrelated":         "kept in the store",
	}, nil)

	cfg, err := service.GetConfig(ctx, testGuild)
	require.NoError(t, err)

	assert.Equal(t, testGuild, cfg.GuildID)
	assert.Equal(t, testLobby, cfg.LobbyChannelID)
	assert.Equal(t, testText, cfg.LogChannelID)
	assert.Empty(t, cfg.WelcomeChannelID)
	assert.Equal(t, testRole, cfg.AutoRoleID)
	assert.True(t, cfg.AllowLinksEnabled)
	assert.Equal(t, []string{testText, "200000000000000003"}, cfg.AllowLinkChannels)
	mockStore.AssertExpectations(t)
}

func TestGuildConfigService_GetConfig_StoreError(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	service := NewGuildConfigService(mockStore, new(MockPlatform))

	mockStore.On("GuildValues", ctx, testGuild).Return(nil, errors.New("connection refused"))

	cfg, err := service.GetConfig(ctx, testGuild)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestGuildConfigService_SetChannel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		key       models.ConfigKey
		channelID string
		channel   *models.ChannelInfo
		lookupErr error
		wantErr   error
		wantSaved bool
	}{
		{
			name:      "lobby accepts a voice channel",
			key:       models.ConfigKeyLobbyChannel,
			channelID: testLobby,
			channel:   &models.ChannelInfo{ID: testLobby, GuildID: testGuild, Kind: models.ChannelKindVoice},
			wantSaved: true,
		},
		{
			name:      "logs accept a text channel",
			key:       models.ConfigKeyLogChannel,
			channelID: testText,
			channel:   &models.ChannelInfo{ID: testText, GuildID: testGuild, Kind: models.ChannelKindText},
			wantSaved: true,
		},
		{
			name:      "lobby rejects a text channel",
			key:       models.ConfigKeyLobbyChannel,
			channelID: testText,
			channel:   &models.ChannelInfo{ID: testText, GuildID: testGuild, Kind: models.ChannelKindText},
			wantErr:   ErrWrongChannelKind,
		},
		{
			name:      "welcome rejects a category",
			key:       models.ConfigKeyWelcomeChannel,
			channelID: testText,
			channel:   &models.ChannelInfo{ID: testText, GuildID: testGuild, Kind: models.ChannelKindCategory},
			wantErr:   ErrWrongChannelKind,
		},
		{
			name:      "channel of another guild",
			key:       models.ConfigKeyLobbyChannel,
			channelID: otherLobby,
			channel:   &models.ChannelInfo{ID: otherLobby, GuildID: otherGuild, Kind: models.ChannelKindVoice},
			wantErr:   ErrChannelNotFound,
		},
		{
			name:      "unknown channel",
			key:       models.ConfigKeyLobbyChannel,
			channelID: testLobby,
			lookupErr: ErrChannelNotFound,
			wantErr:   ErrChannelNotFound,
		},
		{
			name:      "invalid id",
			key:       models.ConfigKeyLobbyChannel,
			channelID: "not-an-id",
			wantErr:   ErrInvalidSnowflake,
		},
		{
			name:      "unknown setting",
			key:       models.ConfigKeyAutoRole,
			channelID: testText,
			wantErr:   ErrUnknownSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockStore)
			mockPlatform := new(MockPlatform)
			service := NewGuildConfigService(mockStore, mockPlatform)

			if tt.channel != nil || tt.lookupErr != nil {
				mockPlatform.On("Channel", ctx, tt.channelID).Return(tt.channel, tt.lookupErr)
			}
			if tt.wantSaved {
				mockStore.On("Set", ctx, testGuild, string(tt.key), tt.channelID).Return(nil)
			}

			err := service.SetChannel(ctx, testGuild, tt.key, tt.channelID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockStore.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mockStore.AssertExpectations(t)
			mockPlatform.AssertExpectations(t)
		})
	}
}

func TestGuildConfigService_SetChannel_WriteFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	mockPlatform := new(MockPlatform)
	service := NewGuildConfigService(mockStore, mockPlatform)

	mockPlatform.On("Channel", ctx, testLobby).Return(&models.ChannelInfo{ID: testLobby, GuildID: testGuild, Kind: models.ChannelKindVoice}, nil)
	diskFull := errors.New("no space left on device")
	mockStore.On("Set", ctx, testGuild, "lobbyChannelId", testLobby).Return(diskFull)

	err := service.SetChannel(ctx, testGuild, models.ConfigKeyLobbyChannel, testLobby)
	assert.ErrorIs(t, err, diskFull)
}

func TestGuildConfigService_SetAutoRole(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	service := NewGuildConfigService(mockStore, new(MockPlatform))

	mockStore.On("Set", ctx, testGuild, "autoRoleId", testRole).Return(nil)

	assert.NoError(t, service.SetAutoRole(ctx, testGuild, testRole))
	assert.ErrorIs(t, service.SetAutoRole(ctx, testGuild, testGuild), ErrInvalidSnowflake)
	assert.ErrorIs(t, service.SetAutoRole(ctx, testGuild, "0"), ErrInvalidSnowflake)
	mockStore.AssertNumberOfCalls(t, "Set", 1)
}

func TestGuildConfigService_LinkAllowList(t *testing.T) {
	ctx := context.Background()
	textChannel := &models.ChannelInfo{ID: testText, GuildID: testGuild, Kind: models.ChannelKindText}

	t.Run("adds a new channel", func(t *testing.T) {
		mockStore := new(MockStore)
		mockPlatform := new(MockPlatform)
		service := NewGuildConfigService(mockStore, mockPlatform)

		mockPlatform.On("Channel", ctx, testText).Return(textChannel, nil)
		mockStore.On("Get", ctx, testGuild, "allowLinkChannels", nil).Return([]any{"200000000000000003"})
		mockStore.On("Set", ctx, testGuild, "allowLinkChannels", []string{"200000000000000003", testText}).Return(nil)

		changed, err := service.AllowLinkChannel(ctx, testGuild, testText)
		require.NoError(t, err)
		assert.True(t, changed)
		mockStore.AssertExpectations(t)
	})

	t.Run("already allowed", func(t *testing.T) {
		mockStore := new(MockStore)
		mockPlatform := new(MockPlatform)
		service := NewGuildConfigService(mockStore, mockPlatform)

		mockPlatform.On("Channel", ctx, testText).Return(textChannel, nil)
		mockStore.On("Get", ctx, testGuild, "allowLinkChannels", nil).Return([]string{testText})

		changed, err := service.AllowLinkChannel(ctx, testGuild, testText)
		require.NoError(t, err)
		assert.False(t, changed)
		mockStore.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removes a channel", func(t *testing.T) {
		mockStore := new(MockStore)
		service := NewGuildConfigService(mockStore, new(MockPlatform))

		mockStore.On("Get", ctx, testGuild, "allowLinkChannels", nil).Return([]any{testText, "200000000000000003"})
		mockStore.On("Set", ctx, testGuild, "allowLinkChannels", []string{"200000000000000003"}).Return(nil)

		changed, err := service.DisallowLinkChannel(ctx, testGuild, testText)
		require.NoError(t, err)
		assert.True(t, changed)
		mockStore.AssertExpectations(t)
	})

	t.Run("removing an absent channel is a no-op", func(t *testing.T) {
		mockStore := new(MockStore)
		service := NewGuildConfigService(mockStore, new(MockPlatform))

		mockStore.On("Get", ctx, testGuild, "allowLinkChannels", nil).Return(nil)

		changed, err := service.DisallowLinkChannel(ctx, testGuild, testText)
		require.NoError(t, err)
		assert.False(t, changed)
		mockStore.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("toggle", func(t *testing.T) {
		mockStore := new(MockStore)
		service := NewGuildConfigService(mockStore, new(MockPlatform))

		mockStore.On("Set", ctx, testGuild, "allowLinksEnabled", true).Return(nil)
		assert.NoError(t, service.SetAllowLinks(ctx, testGuild, true))
		mockStore.AssertExpectations(t)
	})
}

func TestGuildConfigService_Clear(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	service := NewGuildConfigService(mockStore, new(MockPlatform))

	mockStore.On("Unset", ctx, testGuild, "welcomeChannelId").Return(nil)

	assert.NoError(t, service.Clear(ctx, testGuild, models.ConfigKeyWelcomeChannel))
	assert.ErrorIs(t, service.Clear(ctx, testGuild, models.ConfigKey("prefix")), ErrUnknownSetting)
	mockStore.AssertExpectations(t)
}

func TestValueConversions(t *testing.T) {
	assert.Equal(t, "123456789012345678", StringValue(json.Number("123456789012345678")))
	assert.Equal(t, "42", StringValue(float64(42)))
	assert.Equal(t, "42", StringValue(42))
	assert.Equal(t, "", StringValue(true))
	assert.Equal(t, "", StringValue(nil))

	assert.True(t, BoolValue(true))
	assert.True(t, BoolValue("true"))
	assert.True(t, BoolValue(json.Number("1")))
	assert.False(t, BoolValue(nil))
	assert.False(t, BoolValue("nope"))

	assert.Nil(t, StringSliceValue("single"))
	assert.Equal(t, []string{"1", "2"}, StringSliceValue([]any{"1", json.Number("2"), false}))
}

func TestValidateSnowflake(t *testing.T) {
	assert.NoError(t, ValidateSnowflake("123456789012345678"))
	assert.ErrorIs(t, ValidateSnowflake(""), ErrInvalidSnowflake)
	assert.ErrorIs(t, ValidateSnowflake("0"), ErrInvalidSnowflake)
	assert.ErrorIs(t, ValidateSnowflake("-5"), ErrInvalidSnowflake)
	assert.ErrorIs(t, ValidateSnowflake("12ab"), ErrInvalidSnowflake)
	assert.ErrorIs(t, ValidateSnowflake("123456789012345678901"), ErrInvalidSnowflake)
}
