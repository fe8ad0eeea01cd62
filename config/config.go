package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"hoshikuzu/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"` // registers commands on one guild when set

	// Storage configuration
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataFile       string `env:"DATA_FILE" envDefault:"hoshikuzu_data.json"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DatabaseName   string `env:"DATABASE_NAME"`

	// Voice rooms
	VoiceLobbyName      string        `env:"VOICE_LOBBY_NAME" envDefault:"➕ Create your room"`
	VoiceCategoryName   string        `env:"VOICE_CATEGORY_NAME" envDefault:"Temporary Voice"`
	VoiceRoomNameFormat string        `env:"VOICE_ROOM_NAME_FORMAT" envDefault:"🔊 %s's room"`
	VoiceEmptyGrace     time.Duration `env:"VOICE_EMPTY_GRACE" envDefault:"0s"`
	VoiceJoinCooldown   time.Duration `env:"VOICE_JOIN_COOLDOWN" envDefault:"0s"`

	// Tickets
	TicketCategoryName string        `env:"TICKET_CATEGORY_NAME" envDefault:"Tickets"`
	TicketCloseDelay   time.Duration `env:"TICKET_CLOSE_DELAY" envDefault:"5s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// SetTestConfig replaces the global instance. Only for tests.
func SetTestConfig(cfg *Config) {
	once.Do(func() {})
	instance = cfg
}

// NewTestConfig returns a configuration with defaults suitable for tests
func NewTestConfig() *Config {
	return &Config{
		StorageBackend:      StorageFile,
		DataFile:            "hoshikuzu_test.json",
		VoiceLobbyName:      "➕ Create your room",
		VoiceCategoryName:   "Temporary Voice",
		VoiceRoomNameFormat: "🔊 %s's room",
		TicketCategoryName:  "Tickets",
		TicketCloseDelay:    5 * time.Second,
		LogLevel:            "info",
		Environment:         "test",
	}
}

// load reads an optional .env file then the environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}
	return Parse()
}

// Parse reads the configuration from the environment and validates it
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case StorageFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file storage backend")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if strings.Count(c.VoiceRoomNameFormat, "%s") != 1 {
		return fmt.Errorf("VOICE_ROOM_NAME_FORMAT must contain exactly one %%s")
	}
	if c.VoiceEmptyGrace < 0 || c.VoiceJoinCooldown < 0 || c.TicketCloseDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	if c.Environment != "test" && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	return nil
}

// ResolvedDatabaseURL returns DATABASE_URL combined with DATABASE_NAME
func (c *Config) ResolvedDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// ConfigureLogging applies LOG_LEVEL to the global logger
func (c *Config) ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// MigrationDatabaseURL builds the database URL from the environment alone,
// so migrations and imports run without a Discord token.
func MigrationDatabaseURL() string {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}
	return database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
}
