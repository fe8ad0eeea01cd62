package bot

import (
	"fmt"
	"strings"

	"hoshikuzu/bot/features/moderation"
	"hoshikuzu/bot/features/settings"
	"hoshikuzu/bot/features/tickets"
	"hoshikuzu/bot/features/voice"
	"hoshikuzu/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// messageCacheSize keeps recent messages so deletions can be logged with their content
const messageCacheSize = 200

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // commands are registered on this guild only when set
}

// Services bundles the domain services the bot dispatches to
type Services struct {
	Voice       service.VoiceService
	GuildConfig service.GuildConfigService
	Tickets     service.TicketService
	Members     service.MemberService
	LinkFilter  service.LinkFilterService
	AuditLog    service.AuditLogService
	Moderation  service.ModerationService
}

type Bot struct {
	config        Config
	session       *discordgo.Session
	platform      service.Platform
	scheduler     *service.Scheduler
	voiceService  service.VoiceService
	memberService service.MemberService
	linkFilter    service.LinkFilterService
	auditLog      service.AuditLogService

	voiceFeature      *voice.Feature
	settingsFeature   *settings.Feature
	ticketsFeature    *tickets.Feature
	moderationFeature *moderation.Feature
}

// NewSession creates a Discord session with the intents the bot needs
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	dg.State.MaxMessageCount = messageCacheSize
	return dg, nil
}

// New registers the handlers on session, opens the gateway and registers the slash commands
func New(config Config, session *discordgo.Session, platform service.Platform, scheduler *service.Scheduler, services Services) (*Bot, error) {
	bot := &Bot{
		config:        config,
		session:       session,
		platform:      platform,
		scheduler:     scheduler,
		voiceService:  services.Voice,
		memberService: services.Members,
		linkFilter:    services.LinkFilter,
		auditLog:      services.AuditLog,

		voiceFeature:      voice.NewFeature(services.Voice),
		settingsFeature:   settings.NewFeature(services.GuildConfig),
		ticketsFeature:    tickets.NewFeature(services.Tickets),
		moderationFeature: moderation.NewFeature(services.Moderation),
	}

	// Register slash command handlers
	session.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	session.AddHandler(bot.handleComponentInteractions)

	// Gateway events
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleGuildCreate)
	session.AddHandler(bot.handleVoiceStateUpdate)
	session.AddHandler(bot.handleGuildMemberAdd)
	session.AddHandler(bot.handleGuildMemberRemove)
	session.AddHandler(bot.handleMessageCreate)
	session.AddHandler(bot.handleMessageDelete)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.String(),
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "voice":
		b.voiceFeature.HandleCommand(s, i)
	case "settings":
		b.settingsFeature.HandleCommand(s, i)
	case "ticket":
		b.ticketsFeature.HandleCommand(s, i)
	case "lock", "unlock", "role":
		b.moderationFeature.HandleCommand(s, i)
	}
}

// handleComponentInteractions handles button interactions
func (b *Bot) handleComponentInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, "ticket_") {
		b.ticketsFeature.HandleInteraction(s, i)
	}
}
