// Package config loads factcore settings from FACTCORE_* environment
// variables. Command-line flags override what is loaded here.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide settings.
type Config struct {
	ContentDir string   `env:"FACTCORE_CONTENT_DIR"`
	SaveDir    string   `env:"FACTCORE_SAVE_DIR"  envDefault:"saves"`
	SlotsDB    string   `env:"FACTCORE_SLOTS_DB"`
	LogFile    string   `env:"FACTCORE_LOG_FILE"`
	LogPrefix  string   `env:"FACTCORE_LOG_PREFIX" envDefault:"factcore: "`
	Presets    []string `env:"FACTCORE_PRESETS"   envSeparator:","`
	Plain      bool     `env:"FACTCORE_PLAIN"`
	Watch      bool     `env:"FACTCORE_WATCH"`
}

// Load parses the environment. An unset FACTCORE_SLOTS_DB defaults to
// slots.db inside the save directory.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SlotsDB == "" {
		cfg.SlotsDB = filepath.Join(cfg.SaveDir, "slots.db")
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
