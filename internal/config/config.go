// Package config provides configuration management for the trading application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ibkr-trader/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Gateway    GatewayConfig              `mapstructure:"gateway"`
	Scheduler  SchedulerConfig            `mapstructure:"scheduler"`
	Control    ControlConfig              `mapstructure:"control"`
	Journal    JournalConfig              `mapstructure:"journal"`
	Logging    LoggingConfig              `mapstructure:"logging"`
	Strategies []models.StrategyDefinition `mapstructure:"-"` // loaded from strategies.toml
}

// GatewayConfig holds broker gateway configuration.
type GatewayConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Underlying symbol and its listing exchange for chain lookups.
	Symbol   string `mapstructure:"symbol"`
	Exchange string `mapstructure:"exchange"`
	// ReferenceStrike anchors strike resolution when the exact strike is
	// absent from the month's strike list.
	ReferenceStrike float64       `mapstructure:"reference_strike"`
	Timeout         time.Duration `mapstructure:"timeout"`
	// The Client Portal gateway serves a self-signed certificate on
	// localhost; verification stays off only for that deployment.
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	Mode               string `mapstructure:"mode"` // "live" or "paper"
}

// SchedulerConfig holds scheduler loop configuration.
type SchedulerConfig struct {
	Timezone         string        `mapstructure:"timezone"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	PostTriggerSleep time.Duration `mapstructure:"post_trigger_sleep"`
}

// ControlConfig holds the local operator/metrics listener configuration.
type ControlConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// JournalConfig holds execution journal configuration.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ibkr-trader"
	}
	return filepath.Join(home, ".config", "ibkr-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A local .env may override gateway settings; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	strategies, err := loadStrategies(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading strategies.toml: %w", err)
	}
	cfg.Strategies = strategies

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadStrategies(configDir string) ([]models.StrategyDefinition, error) {
	v := viper.New()
	v.SetConfigName("strategies")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateStrategies(configDir); err != nil {
				return nil, err
			}
			// Retry against the freshly written template.
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	var wrapper struct {
		Strategies []models.StrategyDefinition `mapstructure:"strategies"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Strategies, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = "https://localhost:5000/v1/api"
	}
	if cfg.Gateway.Symbol == "" {
		cfg.Gateway.Symbol = "SPX"
	}
	if cfg.Gateway.Exchange == "" {
		cfg.Gateway.Exchange = "CBOE"
	}
	if cfg.Gateway.ReferenceStrike == 0 {
		cfg.Gateway.ReferenceStrike = 5950.0
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 5 * time.Second
	}
	if cfg.Gateway.Mode == "" {
		cfg.Gateway.Mode = "paper"
	}
	if cfg.Scheduler.Timezone == "" {
		cfg.Scheduler.Timezone = "America/New_York"
	}
	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler.TickInterval = time.Second
	}
	if cfg.Scheduler.PostTriggerSleep == 0 {
		cfg.Scheduler.PostTriggerSleep = time.Minute
	}
	if cfg.Control.Addr == "" {
		cfg.Control.Addr = "127.0.0.1:7381"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(DefaultConfigDir(), "journal.db")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IBKR_GATEWAY_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("IBKR_SYMBOL"); v != "" {
		cfg.Gateway.Symbol = v
	}
	if v := os.Getenv("TRADER_MODE"); v != "" {
		cfg.Gateway.Mode = v
	}
	if v := os.Getenv("TRADER_CONTROL_ADDR"); v != "" {
		cfg.Control.Addr = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Gateway.Mode != "live" && c.Gateway.Mode != "paper" {
		return fmt.Errorf("invalid gateway mode: %s (must be 'live' or 'paper')", c.Gateway.Mode)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Scheduler.Timezone, err)
	}

	seen := make(map[string]bool, len(c.Strategies))
	for i := range c.Strategies {
		s := &c.Strategies[i]
		if s.ID == "" {
			return fmt.Errorf("strategy %d: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("strategy %s: duplicate id", s.ID)
		}
		seen[s.ID] = true
		if !validDay(s.DayOfWeek) {
			return fmt.Errorf("strategy %s: invalid day_of_week %q", s.ID, s.DayOfWeek)
		}
		for _, field := range []struct{ name, value string }{
			{"entry_time", s.EntryTime},
			{"exit_time", s.ExitTime},
		} {
			if _, err := time.Parse("15:04", field.value); err != nil {
				return fmt.Errorf("strategy %s: invalid %s %q", s.ID, field.name, field.value)
			}
		}
		if s.TargetDelta < 0 || s.TargetDelta > 100 {
			return fmt.Errorf("strategy %s: target_delta must be between 0 and 100", s.ID)
		}
		if s.NearDays <= 0 || s.FarDays <= s.NearDays {
			return fmt.Errorf("strategy %s: expiry offsets must satisfy 0 < near_days < far_days", s.ID)
		}
		if s.TakeProfitPct < 0 {
			return fmt.Errorf("strategy %s: take_profit_pct must be non-negative", s.ID)
		}
	}
	return nil
}

// IsPaperMode returns true if paper trading mode is enabled.
func (c *Config) IsPaperMode() bool {
	return c.Gateway.Mode == "paper"
}

// StrategyByID returns the strategy with the given id, if present.
func (c *Config) StrategyByID(id string) (*models.StrategyDefinition, bool) {
	for i := range c.Strategies {
		if c.Strategies[i].ID == id {
			return &c.Strategies[i], true
		}
	}
	return nil, false
}

func validDay(day string) bool {
	switch day {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}
