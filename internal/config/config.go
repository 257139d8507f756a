package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"crypto-weather/internal/domain"
)

type Config struct {
	CoinGeckoAPITier   domain.APITier
	CoinGeckoAPIKey    string
	TrackedAssets      []string
	UpdateIntervalMins int

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int

	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	APIAuthKey string

	Theme                string
	NotificationsEnabled bool

	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoAPIKey:  os.Getenv("CG_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIAuthKey:       os.Getenv("API_AUTH_KEY"),
	}

	cfg.CoinGeckoAPITier = domain.APITier(strings.ToLower(strings.TrimSpace(os.Getenv("CG_API_TIER"))))
	if cfg.CoinGeckoAPITier == "" {
		cfg.CoinGeckoAPITier = domain.TierDemo
	}
	if !cfg.CoinGeckoAPITier.IsValid() {
		log.Printf("Warning: unsupported CG_API_TIER=%q, defaulting to demo", cfg.CoinGeckoAPITier)
		cfg.CoinGeckoAPITier = domain.TierDemo
	}

	if v := strings.TrimSpace(os.Getenv("TRACKED_ASSETS")); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.TrackedAssets = append(cfg.TrackedAssets, id)
			}
		}
	}
	if len(cfg.TrackedAssets) == 0 {
		cfg.TrackedAssets = append([]string(nil), domain.DefaultTrackedAssets...)
	}

	cfg.UpdateIntervalMins = 15
	if v := strings.TrimSpace(os.Getenv("UPDATE_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UpdateIntervalMins = n
		}
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set, AI forecasts stay off until a key is saved in settings")
	}
	cfg.GeminiModel = strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-1.5-flash"
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	cfg.AdvisorMaxHistory = 20
	if v := os.Getenv("ADVISOR_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorMaxHistory = n
		}
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, settings will not persist")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.Theme = strings.TrimSpace(os.Getenv("THEME"))
	if cfg.Theme == "" {
		cfg.Theme = "dark"
	}

	cfg.NotificationsEnabled = true
	if v := strings.TrimSpace(os.Getenv("NOTIFICATIONS_ENABLED")); v != "" {
		cfg.NotificationsEnabled = strings.EqualFold(v, "true")
	}

	cfg.SSHPort = 23234
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/crypto_weather_ed25519"
	}

	return cfg
}

// Settings projects the environment config onto the persisted preference
// shape, used as the seed row and as the fallback when no store exists.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		APITier:              c.CoinGeckoAPITier,
		APIKey:               c.CoinGeckoAPIKey,
		TrackedAssets:        append([]string(nil), c.TrackedAssets...),
		GenerativeAPIKey:     c.GeminiAPIKey,
		NotificationsEnabled: c.NotificationsEnabled,
		UpdateIntervalMins:   c.UpdateIntervalMins,
		Theme:                c.Theme,
	}
}
