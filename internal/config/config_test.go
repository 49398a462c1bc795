package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ibkr-trader/internal/models"
)

func TestLoad_EmptyDirCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range []string{"config.toml", "strategies.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be created: %v", name, err)
		}
	}

	if len(cfg.Strategies) != 3 {
		t.Fatalf("expected 3 template strategies, got %d", len(cfg.Strategies))
	}
	s := cfg.Strategies[0]
	if s.ID != "1" || s.DayOfWeek != "Monday" || s.EntryTime != "09:32" {
		t.Errorf("first template strategy wrong: %+v", s)
	}
	if s.TargetDelta != 70.0 || s.NearDays != 4 || s.FarDays != 6 {
		t.Errorf("first template strategy selection fields wrong: %+v", s)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Gateway.BaseURL != "https://localhost:5000/v1/api" {
		t.Errorf("BaseURL = %q", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Symbol != "SPX" || cfg.Gateway.Exchange != "CBOE" {
		t.Errorf("symbol/exchange = %q/%q", cfg.Gateway.Symbol, cfg.Gateway.Exchange)
	}
	if !cfg.IsPaperMode() {
		t.Error("default mode must be paper")
	}
	if cfg.Scheduler.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q", cfg.Scheduler.Timezone)
	}
	if cfg.Control.Addr != "127.0.0.1:7381" {
		t.Errorf("Control.Addr = %q", cfg.Control.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IBKR_GATEWAY_URL", "https://gw.example:9999/v1/api")
	t.Setenv("TRADER_MODE", "live")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.BaseURL != "https://gw.example:9999/v1/api" {
		t.Errorf("BaseURL = %q", cfg.Gateway.BaseURL)
	}
	if cfg.IsPaperMode() {
		t.Error("TRADER_MODE=live must switch off paper mode")
	}
}

func validConfig() *Config {
	return &Config{
		Gateway:   GatewayConfig{Mode: "paper"},
		Scheduler: SchedulerConfig{Timezone: "America/New_York"},
		Strategies: []models.StrategyDefinition{
			{
				ID:          "1",
				Name:        "Test",
				DayOfWeek:   "Monday",
				EntryTime:   "09:32",
				ExitTime:    "15:30",
				TargetDelta: 70,
				NearDays:    4,
				FarDays:     6,
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad mode", func(c *Config) { c.Gateway.Mode = "demo" }, "invalid gateway mode"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"missing id", func(c *Config) { c.Strategies[0].ID = "" }, "id is required"},
		{"duplicate id", func(c *Config) {
			c.Strategies = append(c.Strategies, c.Strategies[0])
		}, "duplicate id"},
		{"bad day", func(c *Config) { c.Strategies[0].DayOfWeek = "Funday" }, "invalid day_of_week"},
		{"bad entry time", func(c *Config) { c.Strategies[0].EntryTime = "9:32am" }, "invalid entry_time"},
		{"bad exit time", func(c *Config) { c.Strategies[0].ExitTime = "25:00" }, "invalid exit_time"},
		{"delta out of range", func(c *Config) { c.Strategies[0].TargetDelta = 150 }, "target_delta"},
		{"near after far", func(c *Config) { c.Strategies[0].NearDays = 8 }, "near_days < far_days"},
		{"negative take profit", func(c *Config) { c.Strategies[0].TakeProfitPct = -1 }, "take_profit_pct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestStrategyByID(t *testing.T) {
	cfg := validConfig()

	if s, ok := cfg.StrategyByID("1"); !ok || s.Name != "Test" {
		t.Errorf("StrategyByID(1) = %+v, %v", s, ok)
	}
	if _, ok := cfg.StrategyByID("99"); ok {
		t.Error("unknown id must not resolve")
	}
}
