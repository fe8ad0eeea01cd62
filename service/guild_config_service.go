package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"hoshikuzu/models"
)

// guildConfigService implements the GuildConfigService interface
type guildConfigService struct {
	store    ConfigStore
	platform Platform
}

// NewGuildConfigService creates a new guild config service
func NewGuildConfigService(store ConfigStore, platform Platform) GuildConfigService {
	return &guildConfigService{
		store:    store,
		platform: platform,
	}
}

// GetConfig returns the typed settings of a guild
func (s *guildConfigService) GetConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	values, err := s.store.GuildValues(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings for guild %s: %w", guildID, err)
	}
	return DecodeGuildConfig(guildID, values), nil
}

// SetChannel validates and stores a channel setting
func (s *guildConfigService) SetChannel(ctx context.Context, guildID string, key models.ConfigKey, channelID string) error {
	kind, ok := models.ChannelKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	if _, err := s.requireChannel(ctx, guildID, channelID, kind); err != nil {
		return err
	}

	if err := s.store.Set(ctx, guildID, string(key), channelID); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// SetAutoRole stores the role granted to new members
func (s *guildConfigService) SetAutoRole(ctx context.Context, guildID, roleID string) error {
	if err := ValidateSnowflake(roleID); err != nil {
		return err
	}
	if roleID == guildID {
		// The @everyone role shares the guild id and cannot be granted
		return fmt.Errorf("%w: @everyone cannot be an auto role", ErrInvalidSnowflake)
	}

	if err := s.store.Set(ctx, guildID, string(models.ConfigKeyAutoRole), roleID); err != nil {
		return fmt.Errorf("failed to save auto role: %w", err)
	}
	return nil
}

// SetAllowLinks enables or disables the link allow list
func (s *guildConfigService) SetAllowLinks(ctx context.Context, guildID string, enabled bool) error {
	if err := s.store.Set(ctx, guildID, string(models.ConfigKeyAllowLinksEnabled), enabled); err != nil {
		return fmt.Errorf("failed to save link setting: %w", err)
	}
	return nil
}

// AllowLinkChannel adds a channel to the link allow list
func (s *guildConfigService) AllowLinkChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	if _, err := s.requireChannel(ctx, guildID, channelID, models.ChannelKindText); err != nil {
		return false, err
	}

	key := string(models.ConfigKeyAllowLinkChannels)
	channels := StringSliceValue(s.store.Get(ctx, guildID, key, nil))
	for _, id := range channels {
		if id == channelID {
			return false, nil
		}
	}

	channels = append(channels, channelID)
	if err := s.store.Set(ctx, guildID, key, channels); err != nil {
		return false, fmt.Errorf("failed to save link allow list: %w", err)
	}
	return true, nil
}

// DisallowLinkChannel removes a channel from the link allow list
func (s *guildConfigService) DisallowLinkChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	if err := ValidateSnowflake(channelID); err != nil {
		return false, err
	}

	key := string(models.ConfigKeyAllowLinkChannels)
	channels := StringSliceValue(s.store.Get(ctx, guildID, key, nil))

	kept := make([]string, 0, len(channels))
	for _, id := range channels {
		if id != channelID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(channels) {
		return false, nil
	}

	if err := s.store.Set(ctx, guildID, key, kept); err != nil {
		return false, fmt.Errorf("failed to save link allow list: %w", err)
	}
	return true, nil
}

// Clear removes a setting
func (s *guildConfigService) Clear(ctx context.Context, guildID string, key models.ConfigKey) error {
	switch key {
	case models.ConfigKeyLobbyChannel, models.ConfigKeyLogChannel, models.ConfigKeyWelcomeChannel,
		models.ConfigKeyAutoRole, models.ConfigKeyAllowLinksEnabled, models.ConfigKeyAllowLinkChannels:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	if err := s.store.Unset(ctx, guildID, string(key)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", key, err)
	}
	return nil
}

// requireChannel checks that channelID names a channel of the given kind in the guild
func (s *guildConfigService) requireChannel(ctx context.Context, guildID, channelID string, kind models.ChannelKind) (*models.ChannelInfo, error) {
	if err := ValidateSnowflake(channelID); err != nil {
		return nil, err
	}

	channel, err := s.platform.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil || channel.GuildID != guildID {
		return nil, ErrChannelNotFound
	}
	if channel.Kind != kind {
		return nil, fmt.Errorf("%w: expected a %s channel", ErrWrongChannelKind, kind)
	}
	return channel, nil
}

// DecodeGuildConfig builds the typed view from raw store values. Values of an
// unexpected type are ignored.
func DecodeGuildConfig(guildID string, values map[string]any) *models.GuildConfig {
	return &models.GuildConfig{
		GuildID:           guildID,
		LobbyChannelID:    StringValue(values[string(models.ConfigKeyLobbyChannel)]),
		LogChannelID:      StringValue(values[string(models.ConfigKeyLogChannel)]),
		WelcomeChannelID:  StringValue(values[string(models.ConfigKeyWelcomeChannel)]),
		AutoRoleID:        StringValue(values[string(models.ConfigKeyAutoRole)]),
		AllowLinksEnabled: BoolValue(values[string(models.ConfigKeyAllowLinksEnabled)]),
		AllowLinkChannels: StringSliceValue(values[string(models.ConfigKeyAllowLinkChannels)]),
	}
}

// StringValue converts a stored id to a string. Ids written as numbers are accepted.
func StringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return ""
	}
}

// BoolValue converts a stored flag to a bool
func BoolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case json.Number:
		return v.String() != "0"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// StringSliceValue converts a stored list of ids to strings, dropping unusable entries
func StringSliceValue(value any) []string {
	var items []any
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		items = v
	default:
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := StringValue(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}
