package bot

import (
	"fmt"

	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var (
	manageChannels int64 = discordgo.PermissionManageChannels
	manageGuild    int64 = discordgo.PermissionManageGuild
	manageRoles    int64 = discordgo.PermissionManageRoles
	noDM                 = false
)

// commandDefinitions returns every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	channelOption := func(description string, types ...discordgo.ChannelType) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  description,
			ChannelTypes: types,
			Required:     true,
		}
	}
	textChannel := []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}
	optionalChannel := func(description string) *discordgo.ApplicationCommandOption {
		opt := channelOption(description, textChannel...)
		opt.Required = false
		return opt
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "voice",
			Description:              "Manage temporary voice rooms",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setup",
					Description: "Create the lobby channel that spawns personal voice rooms",
				},
			},
		},
		{
			Name:                     "settings",
			Description:              "Configure the bot for this server",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "logs",
					Description: "Set the audit log channel",
					Options:     []*discordgo.ApplicationCommandOption{channelOption("Log channel", textChannel...)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcome",
					Description: "Set the welcome channel",
					Options:     []*discordgo.ApplicationCommandOption{channelOption("Welcome channel", textChannel...)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "lobby",
					Description: "Use an existing voice channel as the lobby",
					Options:     []*discordgo.ApplicationCommandOption{channelOption("Lobby voice channel", discordgo.ChannelTypeGuildVoice)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "autorole",
					Description: "Set the role given to new members",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to give",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "links",
					Description: "Allow links in allow-listed channels",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether the allow list is active",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "allowlink",
					Description: "Allow links in a channel",
					Options:     []*discordgo.ApplicationCommandOption{channelOption("Channel", textChannel...)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disallowlink",
					Description: "Stop allowing links in a channel",
					Options:     []*discordgo.ApplicationCommandOption{channelOption("Channel", textChannel...)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Reset a setting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "setting",
							Description: "Setting to reset",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Voice lobby", Value: string(models.ConfigKeyLobbyChannel)},
								{Name: "Log channel", Value: string(models.ConfigKeyLogChannel)},
								{Name: "Welcome channel", Value: string(models.ConfigKeyWelcomeChannel)},
								{Name: "Auto role", Value: string(models.ConfigKeyAutoRole)},
								{Name: "Link allow list switch", Value: string(models.ConfigKeyAllowLinksEnabled)},
								{Name: "Link allow list", Value: string(models.ConfigKeyAllowLinkChannels)},
							},
						},
					},
				},
			},
		},
		{
			Name:         "ticket",
			Description:  "Support tickets",
			DMPermission: &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open a private support channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "What do you need help with?",
							Required:    false,
							MaxLength:   200,
						},
					},
				},
			},
		},
		{
			Name:                     "lock",
			Description:              "Stop everyone from sending messages in a channel",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &noDM,
			Options:                  []*discordgo.ApplicationCommandOption{optionalChannel("Channel to lock (defaults to this one)")},
		},
		{
			Name:                     "unlock",
			Description:              "Let everyone send messages in a channel again",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &noDM,
			Options:                  []*discordgo.ApplicationCommandOption{optionalChannel("Channel to unlock (defaults to this one)")},
		},
		{
			Name:                     "role",
			Description:              "Give a role to a member, or take it away if they have it",
			DefaultMemberPermissions: &manageRoles,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to update",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to give or take",
					Required:    true,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithField("guildID", b.config.GuildID).Info("Slash commands registered")
	return nil
}
