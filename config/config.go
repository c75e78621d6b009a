package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Run configuration
	SetupPath      string // path to setup.toml
	PersistResults bool   // store runs and published weights in the database

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Messaging configuration
	NATSURL string

	// Discord configuration
	DiscordToken     string
	DiscordChannelID string

	// Logging
	LogLevel  logrus.Level
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development" or "production"
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

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Run
		SetupPath:      os.Getenv("SETUP_PATH"),
		PersistResults: os.Getenv("PERSIST_RESULTS") == "true",

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Messaging
		NATSURL: os.Getenv("NATS_URL"),

		// Discord
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		// Logging defaults
		LogLevel:  logrus.InfoLevel,
		LogFormat: strings.ToLower(os.Getenv("LOG_FORMAT")),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.SetupPath == "" {
		config.SetupPath = "setup.toml"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	// Override defaults if environment variables are set
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsedLevel, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		config.LogLevel = parsedLevel
	}
	if persist := os.Getenv("PERSIST_RESULTS"); persist != "" {
		if parsed, err := strconv.ParseBool(persist); err == nil {
			config.PersistResults = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.PersistResults && config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when PERSIST_RESULTS is enabled")
		}
		if config.DiscordToken != "" && config.DiscordChannelID == "" {
			return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
		}
	}

	return config, nil
}

// ConfigureLogging applies the level and format to the standard logrus logger
func (c *Config) ConfigureLogging() {
	logrus.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
