package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ServerPort != "8081" {
		t.Errorf("ServerPort = %q, want 8081", cfg.ServerPort)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.DefaultBranch != "0001" {
		t.Errorf("DefaultBranch = %q, want 0001", cfg.DefaultBranch)
	}
	if cfg.DailyWithdrawalLimit != "2000" {
		t.Errorf("DailyWithdrawalLimit = %q, want 2000", cfg.DailyWithdrawalLimit)
	}
	if _, err := decimal.NewFromString(cfg.DailyWithdrawalLimit); err != nil {
		t.Errorf("default limit must parse as a decimal: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/bank")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DAILY_WITHDRAWAL_LIMIT", "3500.50")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost:5432/bank" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	limit, err := decimal.NewFromString(cfg.DailyWithdrawalLimit)
	if err != nil {
		t.Fatalf("limit did not parse: %v", err)
	}
	if !limit.Equal(decimal.RequireFromString("3500.50")) {
		t.Errorf("DailyWithdrawalLimit = %s, want 3500.50", limit)
	}
}
