package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	// Summarization is optional: an empty API key disables the OpenAI call
	// and every summary falls back to a truncated commit message.
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	SummaryTimeout time.Duration

	// Reminder delivery is optional as well.
	TelegramToken    string
	ReminderInterval time.Duration
}

// Load reads configuration from the environment (and an optional .env file)
// with sane defaults.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := Config{
		AppPort:          envOr("APP_PORT", "3001"),
		DatabaseURL:      envOr("DATABASE_URL", "commit_tracker.db"),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    envOr("OPENAI_BASE_URL", ""),
		SummaryTimeout:   time.Duration(envIntOr("SUMMARY_TIMEOUT_SECONDS", 10)) * time.Second,
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReminderInterval: time.Duration(envIntOr("REMINDER_INTERVAL_MINUTES", 15)) * time.Minute,
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
