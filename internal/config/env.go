package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Overrides are environment settings that win over mok.yaml.
type Overrides struct {
	StoreBackend     string `env:"MOK_STORE_BACKEND"`
	StorePath        string `env:"MOK_STORE_PATH"`
	LogLevel         string `env:"MOK_LOG_LEVEL"`
	RepeatCompletion *bool  `env:"MOK_REPEAT_COMPLETION"`
}

// ApplyEnv loads dotenvPath (if it exists) into the process environment and
// applies MOK_* overrides to cfg.
func ApplyEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}

	var o Overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.StoreBackend != "" {
		cfg.Store.Backend = o.StoreBackend
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.RepeatCompletion != nil {
		cfg.Rewards.RepeatCompletion = *o.RepeatCompletion
	}
	return nil
}
