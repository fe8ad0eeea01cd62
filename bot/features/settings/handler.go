package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hoshikuzu/bot/common"
	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 15 * time.Second

// subcommandKeys maps the channel subcommands to the setting they write
var subcommandKeys = map[string]models.ConfigKey{
	"logs":    models.ConfigKeyLogChannel,
	"welcome": models.ConfigKeyWelcomeChannel,
	"lobby":   models.ConfigKeyLobbyChannel,
}

// handleShow handles the /settings show command
func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cfg, err := f.guildConfigService.GetConfig(ctx, i.GuildID)
	if err != nil {
		log.Errorf("Failed to read settings of guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to read settings.")
		return
	}

	if err := common.RespondWithEmbed(s, i, configEmbed(cfg), nil, true); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

// handleChannel handles /settings logs|welcome|lobby
func (f *Feature) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["channel"]
	if !ok {
		common.RespondWithError(s, i, "Please pick a channel.")
		return
	}
	channelID := opt.ChannelValue(nil).ID
	key := subcommandKeys[sub.Name]

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.guildConfigService.SetChannel(ctx, i.GuildID, key, channelID); err != nil {
		f.fail(s, i, key, err)
		return
	}

	f.succeed(s, i, fmt.Sprintf("%s channel set to <#%s>", settingLabel(key), channelID))
}

// handleAutoRole handles /settings autorole
func (f *Feature) handleAutoRole(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["role"]
	if !ok {
		common.RespondWithError(s, i, "Please pick a role.")
		return
	}
	roleID := opt.RoleValue(nil, "").ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.guildConfigService.SetAutoRole(ctx, i.GuildID, roleID); err != nil {
		f.fail(s, i, models.ConfigKeyAutoRole, err)
		return
	}

	f.succeed(s, i, fmt.Sprintf("New members will receive <@&%s>", roleID))
}

// handleLinks handles /settings links
func (f *Feature) handleLinks(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["enabled"]
	if !ok {
		common.RespondWithError(s, i, "Please choose true or false.")
		return
	}
	enabled := opt.BoolValue()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.guildConfigService.SetAllowLinks(ctx, i.GuildID, enabled); err != nil {
		f.fail(s, i, models.ConfigKeyAllowLinksEnabled, err)
		return
	}

	if enabled {
		f.succeed(s, i, "Links are now allowed in allow-listed channels")
	} else {
		f.succeed(s, i, "Links are now blocked in every channel")
	}
}

// handleAllowLink handles /settings allowlink
func (f *Feature) handleAllowLink(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["channel"]
	if !ok {
		common.RespondWithError(s, i, "Please pick a channel.")
		return
	}
	channelID := opt.ChannelValue(nil).ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	added, err := f.guildConfigService.AllowLinkChannel(ctx, i.GuildID, channelID)
	if err != nil {
		f.fail(s, i, models.ConfigKeyAllowLinkChannels, err)
		return
	}

	if !added {
		f.succeed(s, i, fmt.Sprintf("<#%s> is already on the link allow list", channelID))
		return
	}
	f.succeed(s, i, fmt.Sprintf("<#%s> added to the link allow list", channelID))
}

// handleDisallowLink handles /settings disallowlink
func (f *Feature) handleDisallowLink(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["channel"]
	if !ok {
		common.RespondWithError(s, i, "Please pick a channel.")
		return
	}
	channelID := opt.ChannelValue(nil).ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	removed, err := f.guildConfigService.DisallowLinkChannel(ctx, i.GuildID, channelID)
	if err != nil {
		f.fail(s, i, models.ConfigKeyAllowLinkChannels, err)
		return
	}

	if !removed {
		f.succeed(s, i, fmt.Sprintf("<#%s> was not on the link allow list", channelID))
		return
	}
	f.succeed(s, i, fmt.Sprintf("<#%s> removed from the link allow list", channelID))
}

// handleClear handles /settings clear
func (f *Feature) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	opt, ok := common.OptionMap(sub.Options)["setting"]
	if !ok {
		common.RespondWithError(s, i, "Please pick a setting.")
		return
	}
	key := models.ConfigKey(opt.StringValue())

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.guildConfigService.Clear(ctx, i.GuildID, key); err != nil {
		f.fail(s, i, key, err)
		return
	}

	f.succeed(s, i, fmt.Sprintf("%s cleared", settingLabel(key)))
}

func (f *Feature) succeed(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

func (f *Feature) fail(s *discordgo.Session, i *discordgo.InteractionCreate, key models.ConfigKey, err error) {
	log.WithFields(log.Fields{
		"guildID": i.GuildID,
		"setting": key,
		"error":   err,
	}).Warn("Failed to update setting")
	common.RespondWithError(s, i, common.UserMessage(err, "Failed to update settings."))
}

// settingLabel returns the human name of a setting
func settingLabel(key models.ConfigKey) string {
	switch key {
	case models.ConfigKeyLobbyChannel:
		return "Voice lobby"
	case models.ConfigKeyLogChannel:
		return "Log"
	case models.ConfigKeyWelcomeChannel:
		return "Welcome"
	case models.ConfigKeyAutoRole:
		return "Auto role"
	case models.ConfigKeyAllowLinksEnabled:
		return "Link allow list switch"
	case models.ConfigKeyAllowLinkChannels:
		return "Link allow list"
	default:
		return string(key)
	}
}

// configEmbed renders a guild's settings
func configEmbed(cfg *models.GuildConfig) *discordgo.MessageEmbed {
	links := "disabled"
	if cfg.AllowLinksEnabled {
		links = "enabled"
	}

	allowList := "*empty*"
	if len(cfg.AllowLinkChannels) > 0 {
		mentions := make([]string, len(cfg.AllowLinkChannels))
		for idx, id := range cfg.AllowLinkChannels {
			mentions[idx] = common.ChannelMention(id)
		}
		allowList = strings.Join(mentions, ", ")
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Server settings",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔊 Voice lobby", Value: common.ChannelMention(cfg.LobbyChannelID), Inline: true},
			{Name: "📜 Logs", Value: common.ChannelMention(cfg.LogChannelID), Inline: true},
			{Name: "🌿 Welcome", Value: common.ChannelMention(cfg.WelcomeChannelID), Inline: true},
			{Name: "🎭 Auto role", Value: common.RoleMention(cfg.AutoRoleID), Inline: true},
			{Name: "🔗 Link allow list", Value: links, Inline: true},
			{Name: "✅ Allowed channels", Value: allowList, Inline: false},
		},
	}
}
