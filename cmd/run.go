package cmd

import (
	"context"
	"fmt"

	"hoshikuzu/bot"
	"hoshikuzu/config"
	"hoshikuzu/database"
	"hoshikuzu/events"
	"hoshikuzu/repository"
	"hoshikuzu/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.Info("Starting Hoshikuzu...")

	// Initialize storage
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...")
		if err := store.Close(); err != nil {
			log.Errorf("Error closing store: %v", err)
		}
	}()

	// Initialize event bus and scheduler
	eventBus := events.NewBus()
	scheduler := service.NewScheduler()
	defer scheduler.Stop()

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	platform := bot.NewPlatform(session)

	// Initialize services
	log.Info("Initializing services...")
	services := bot.Services{
		Voice: service.NewVoiceService(store, platform, eventBus, scheduler, service.VoiceConfig{
			LobbyName:      cfg.VoiceLobbyName,
			CategoryName:   cfg.VoiceCategoryName,
			RoomNameFormat: cfg.VoiceRoomNameFormat,
			EmptyGrace:     cfg.VoiceEmptyGrace,
			JoinCooldown:   cfg.VoiceJoinCooldown,
		}),
		GuildConfig: service.NewGuildConfigService(store, platform),
		Tickets: service.NewTicketService(store, platform, eventBus, scheduler, service.TicketConfig{
			CategoryName: cfg.TicketCategoryName,
			CloseDelay:   cfg.TicketCloseDelay,
		}),
		Members:    service.NewMemberService(store, platform),
		LinkFilter: service.NewLinkFilterService(store),
		AuditLog:   service.NewAuditLogService(store, platform),
		Moderation: service.NewModerationService(platform, eventBus),
	}
	services.AuditLog.Subscribe(eventBus)

	// Initialize Discord bot
	log.Info("Connecting to Discord...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, session, platform, scheduler, services)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode with %s storage", cfg.Environment, cfg.StorageBackend)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	// Pending timers must not touch a closed gateway
	scheduler.Stop()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// openStore opens the configured storage backend
func openStore(ctx context.Context, cfg *config.Config) (service.Store, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		databaseURL := cfg.ResolvedDatabaseURL()

		log.Info("Running database migrations...")
		if err := database.MigrateUp(databaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewPostgresStore(db), nil

	default:
		store, err := repository.NewFileStore(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return store, nil
	}
}
