package config

import (
	"testing"

	"crypto-weather/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CG_API_TIER", "")
	t.Setenv("CG_API_KEY", "")
	t.Setenv("TRACKED_ASSETS", "")
	t.Setenv("UPDATE_INTERVAL_MINS", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("THEME", "")
	t.Setenv("NOTIFICATIONS_ENABLED", "")

	cfg := Load()
	if cfg.CoinGeckoAPITier != domain.TierDemo {
		t.Fatalf("expected demo tier default, got %s", cfg.CoinGeckoAPITier)
	}
	if len(cfg.TrackedAssets) != len(domain.DefaultTrackedAssets) {
		t.Fatalf("expected default tracked assets, got %v", cfg.TrackedAssets)
	}
	if cfg.UpdateIntervalMins != 15 {
		t.Fatalf("expected default interval 15, got %d", cfg.UpdateIntervalMins)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("expected default gemini model, got %s", cfg.GeminiModel)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.Theme != "dark" || !cfg.NotificationsEnabled {
		t.Fatalf("unexpected display defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("CG_API_TIER", "pro")
	t.Setenv("CG_API_KEY", "cg-key")
	t.Setenv("TRACKED_ASSETS", "bitcoin, solana ,")
	t.Setenv("UPDATE_INTERVAL_MINS", "30")
	t.Setenv("NOTIFICATIONS_ENABLED", "false")

	cfg := Load()
	if cfg.CoinGeckoAPITier != domain.TierPro || cfg.CoinGeckoAPIKey != "cg-key" {
		t.Fatalf("unexpected coingecko config: %+v", cfg)
	}
	if len(cfg.TrackedAssets) != 2 || cfg.TrackedAssets[0] != "bitcoin" || cfg.TrackedAssets[1] != "solana" {
		t.Fatalf("unexpected tracked assets: %v", cfg.TrackedAssets)
	}
	if cfg.UpdateIntervalMins != 30 {
		t.Fatalf("expected interval 30, got %d", cfg.UpdateIntervalMins)
	}
	if cfg.NotificationsEnabled {
		t.Fatal("expected notifications disabled")
	}

	t.Setenv("UPDATE_INTERVAL_MINS", "bad")
	cfg = Load()
	if cfg.UpdateIntervalMins != 15 {
		t.Fatalf("invalid interval should fall back to default, got %d", cfg.UpdateIntervalMins)
	}
}

func TestLoadRejectsUnknownTier(t *testing.T) {
	t.Setenv("CG_API_TIER", "enterprise")
	cfg := Load()
	if cfg.CoinGeckoAPITier != domain.TierDemo {
		t.Fatalf("unknown tier should fall back to demo, got %s", cfg.CoinGeckoAPITier)
	}
}

func TestSettingsProjection(t *testing.T) {
	t.Setenv("CG_API_TIER", "pro")
	t.Setenv("CG_API_KEY", "cg-key")
	t.Setenv("TRACKED_ASSETS", "bitcoin")
	t.Setenv("THEME", "light")

	s := Load().Settings()
	if s.APITier != domain.TierPro || s.APIKey != "cg-key" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if len(s.TrackedAssets) != 1 || s.TrackedAssets[0] != "bitcoin" {
		t.Fatalf("unexpected tracked assets: %v", s.TrackedAssets)
	}
	if s.Theme != "light" {
		t.Fatalf("unexpected theme: %s", s.Theme)
	}
}
