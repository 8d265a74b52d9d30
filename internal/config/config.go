package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, loaded from environment variables.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	BoardFile    string        `env:"BOARD_FILE"`
	DBPath       string        `env:"DB_PATH" envDefault:"./data/scramble.db"`
	FlipWait     time.Duration `env:"FLIP_WAIT" envDefault:"30s"`
	WatchTimeout time.Duration `env:"WATCH_TIMEOUT" envDefault:"60s"`
	ClientOrigin string        `env:"CLIENT_ORIGIN" envDefault:"*"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
