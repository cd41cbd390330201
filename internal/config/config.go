package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mokbank/mokbank/internal/rates"
)

// FileName is the config file at the root of a data directory.
const FileName = "mok.yaml"

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the top-level mok.yaml configuration.
type Config struct {
	Profile ProfileConfig `yaml:"profile"`
	Rates   RatesConfig   `yaml:"rates"`
	Rewards RewardsConfig `yaml:"rewards"`
	Store   StoreConfig   `yaml:"store"`
	Git     GitConfig     `yaml:"git"`
	Log     LogConfig     `yaml:"log"`
}

// ProfileConfig identifies the account owner.
type ProfileConfig struct {
	UserID      string `yaml:"user_id"`
	DisplayName string `yaml:"display_name"`
	AgeBand     string `yaml:"age_band"` // "kid" or "teen"; selects the curriculum
}

// RatesConfig overrides the rate table. Values are decimal strings.
type RatesConfig struct {
	TokenToCash          string `yaml:"token_to_cash"`
	TokenToUSDC          string `yaml:"token_to_usdc"`
	TokenToTravelMiles   string `yaml:"token_to_travel_miles"`
	InvestTokenReward    string `yaml:"invest_token_reward"`
	InvestXPReward       string `yaml:"invest_xp_reward"`
	WithdrawTokenPenalty string `yaml:"withdraw_token_penalty"`
	WithdrawXPPenalty    string `yaml:"withdraw_xp_penalty"`
	MissionXPMultiplier  string `yaml:"mission_xp_multiplier"`
	LevelStep            int64  `yaml:"level_step,omitempty"`
}

// RewardsConfig controls reward policy.
type RewardsConfig struct {
	// RepeatCompletion re-awards XP and tokens when a module is completed again.
	RepeatCompletion bool `yaml:"repeat_completion"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"` // sqlite file; relative to the data dir
}

// GitConfig controls git integration for the file store.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a mok.yaml file from disk. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new user.
func Default(userID, displayName string) *Config {
	d := rates.Default()
	return &Config{
		Profile: ProfileConfig{
			UserID:      userID,
			DisplayName: displayName,
			AgeBand:     "kid",
		},
		Rates: RatesConfig{
			TokenToCash:          d.TokenToCash.String(),
			TokenToUSDC:          d.TokenToUSDC.String(),
			TokenToTravelMiles:   d.TokenToTravelMiles.String(),
			InvestTokenReward:    d.InvestTokenReward.String(),
			InvestXPReward:       d.InvestXPReward.String(),
			WithdrawTokenPenalty: d.WithdrawTokenPenalty.String(),
			WithdrawXPPenalty:    d.WithdrawXPPenalty.String(),
			MissionXPMultiplier:  d.MissionXPMultiplier.String(),
			LevelStep:            d.LevelStep,
		},
		Rewards: RewardsConfig{
			RepeatCompletion: true,
		},
		Store: StoreConfig{
			Backend: BackendFile,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "MokBank Ledger",
			AuthorEmail: "ledger@mokbank.app",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Table builds the rate table, falling back to defaults for empty fields.
func (c *Config) Table() (rates.Table, error) {
	t := rates.Default()
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"token_to_cash", c.Rates.TokenToCash, &t.TokenToCash},
		{"token_to_usdc", c.Rates.TokenToUSDC, &t.TokenToUSDC},
		{"token_to_travel_miles", c.Rates.TokenToTravelMiles, &t.TokenToTravelMiles},
		{"invest_token_reward", c.Rates.InvestTokenReward, &t.InvestTokenReward},
		{"invest_xp_reward", c.Rates.InvestXPReward, &t.InvestXPReward},
		{"withdraw_token_penalty", c.Rates.WithdrawTokenPenalty, &t.WithdrawTokenPenalty},
		{"withdraw_xp_penalty", c.Rates.WithdrawXPPenalty, &t.WithdrawXPPenalty},
		{"mission_xp_multiplier", c.Rates.MissionXPMultiplier, &t.MissionXPMultiplier},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return rates.Table{}, fmt.Errorf("parsing rate %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	if c.Rates.LevelStep != 0 {
		t.LevelStep = c.Rates.LevelStep
	}
	if err := t.Validate(); err != nil {
		return rates.Table{}, err
	}
	return t, nil
}
