package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JUDGE_ADDRESS", "0xA54ABd42b11B7C97538CAD7C6A2820419ddF703E")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Env = %s, want development", cfg.Env)
	}
	if cfg.Exchange.Pair != "ETHUSDT" {
		t.Errorf("Exchange.Pair = %s, want ETHUSDT", cfg.Exchange.Pair)
	}
	if cfg.Database.MaxConnLifetime != time.Hour {
		t.Errorf("MaxConnLifetime = %v, want 1h", cfg.Database.MaxConnLifetime)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should be disabled by default")
	}
}

func TestLoadRequiresJudgeAddress(t *testing.T) {
	t.Setenv("JUDGE_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JUDGE_ADDRESS")
	}
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	t.Setenv("JUDGE_ADDRESS", "0xA54ABd42b11B7C97538CAD7C6A2820419ddF703E")
	t.Setenv("ENV", "sandbox")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown ENV")
	}
}
