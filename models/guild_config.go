package models

// ConfigKey names a per-guild setting in the config store
type ConfigKey string

const (
	ConfigKeyLobbyChannel      ConfigKey = "lobbyChannelId"
	ConfigKeyLogChannel        ConfigKey = "logChannelId"
	ConfigKeyWelcomeChannel    ConfigKey = "welcomeChannelId"
	ConfigKeyAutoRole          ConfigKey = "autoRoleId"
	ConfigKeyAllowLinksEnabled ConfigKey = "allowLinksEnabled"
	ConfigKeyAllowLinkChannels ConfigKey = "allowLinkChannels"
)

// ChannelKeys are the settings that hold a channel id, with the kind of channel each expects
var ChannelKeys = map[ConfigKey]ChannelKind{
	ConfigKeyLobbyChannel:   ChannelKindVoice,
	ConfigKeyLogChannel:     ChannelKindText,
	ConfigKeyWelcomeChannel: ChannelKindText,
}

// GuildConfig is the typed view of a guild's key/value settings.
// Every field is optional; the zero value means "not configured".
type GuildConfig struct {
	GuildID           string   `json:"-"`
	LobbyChannelID    string   `json:"lobbyChannelId,omitempty"`
	LogChannelID      string   `json:"logChannelId,omitempty"`
	WelcomeChannelID  string   `json:"welcomeChannelId,omitempty"`
	AutoRoleID        string   `json:"autoRoleId,omitempty"`
	AllowLinksEnabled bool     `json:"allowLinksEnabled,omitempty"`
	AllowLinkChannels []string `json:"allowLinkChannels,omitempty"`
}

// LinksAllowedIn reports whether links may be posted in the given channel
func (c *GuildConfig) LinksAllowedIn(channelID string) bool {
	if !c.AllowLinksEnabled {
		return false
	}
	for _, id := range c.AllowLinkChannels {
		if id == channelID {
			return true
		}
	}
	return false
}
