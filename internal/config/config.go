// Package config loads process configuration from the environment and
// the optional YAML seed file of initial stores and rules.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

type Config struct {
	// DatabasePath is the SQLite file. Empty runs the engine on the
	// in-memory backend (nothing persists across restarts).
	DatabasePath string `env:"ADSCHED_DB_PATH"`
	// SeedFile holds initial stores and rules, applied when the
	// store table is empty.
	SeedFile string `env:"ADSCHED_SEED_FILE"`

	TickInterval time.Duration `env:"ADSCHED_TICK_INTERVAL" envDefault:"60s"`
	StartupDelay time.Duration `env:"ADSCHED_STARTUP_DELAY" envDefault:"5s"`

	LogLevel string `env:"ADSCHED_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Seed is the YAML seed file shape.
type Seed struct {
	Stores []store.Store `yaml:"stores"`
	Rules  []rules.Rule  `yaml:"rules"`
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed file: %w", err)
	}
	return seed, nil
}
