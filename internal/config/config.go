// Package config loads process configuration from the environment, with an
// optional .env file for development setups.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration. OwnerJID may be empty, in which
// case owner-only commands reject everyone.
type Config struct {
	// OwnerJID is the bot owner, e.g. "15551234567@s.whatsapp.net".
	OwnerJID string `env:"BOT_OWNER"`
	// Prefix is the default command prefix; a prefix persisted in the store
	// overrides it at startup.
	Prefix string `env:"BOT_PREFIX" envDefault:"."`

	StorePath   string `env:"STORE_PATH" envDefault:"bot_store.json"`
	SessionPath string `env:"SESSION_PATH" envDefault:"session.db"`

	QuotesPath string `env:"QUOTES_PATH" envDefault:"quotes.json"`
	JokesPath  string `env:"JOKES_PATH" envDefault:"jokes.json"`
	FactsPath  string `env:"FACTS_PATH" envDefault:"facts.json"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFile enables a rotating log file next to console output when set.
	LogFile string `env:"LOG_FILE"`
}

// New reads .env if present, then parses the environment.
func New() (*Config, error) {
	// A missing .env is fine; system environment variables still apply.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
