package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the CLI needs for one invocation. DATABASE_URL
// starting with postgres:// selects the Postgres driver, any other value is
// treated as a SQLite file path.
type Config struct {
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"eventcrm.db"`
	SessionFile   string        `env:"SESSION_FILE"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"eventcrm-dev-secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".eventcrm", "session")
	}
	return cfg, nil
}
