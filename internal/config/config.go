// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	// SiteOrigin is the origin relative detail URLs are resolved against.
	SiteOrigin string
	// DefaultSearchURL is used when /watch is called without a URL.
	DefaultSearchURL string

	PollInterval      time.Duration
	MinResendInterval time.Duration
	InitialLookback   time.Duration
	// TimeOffset corrects the time-of-day shown on listing cards to true
	// local time.
	TimeOffset    time.Duration
	MessagePacing time.Duration
	SendTimeout   time.Duration
	RetentionAge  time.Duration
}

// Load reads configuration from the environment, consulting a .env file
// first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOr("DATABASE_PATH", "./data/bot.db"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		SiteOrigin:       envOr("SITE_ORIGIN", "https://www.olx.pl"),
		DefaultSearchURL: os.Getenv("DEFAULT_SEARCH_URL"),
	}

	var err error
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL_SECONDS", time.Second, 60); err != nil {
		return nil, err
	}
	if cfg.MinResendInterval, err = envDuration("MIN_RESEND_INTERVAL_SECONDS", time.Second, 300); err != nil {
		return nil, err
	}
	if cfg.InitialLookback, err = envDuration("INITIAL_LOOKBACK_MINUTES", time.Minute, 60); err != nil {
		return nil, err
	}
	if cfg.TimeOffset, err = envDuration("TIME_OFFSET_HOURS", time.Hour, 1); err != nil {
		return nil, err
	}
	if cfg.MessagePacing, err = envDuration("MESSAGE_PACING_MS", time.Millisecond, 500); err != nil {
		return nil, err
	}
	if cfg.SendTimeout, err = envDuration("SEND_TIMEOUT_SECONDS", time.Second, 30); err != nil {
		return nil, err
	}
	if cfg.RetentionAge, err = envDuration("RETENTION_DAYS", 24*time.Hour, 7); err != nil {
		return nil, err
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	return cfg, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, unit time.Duration, def int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * unit, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return time.Duration(n) * unit, nil
}
