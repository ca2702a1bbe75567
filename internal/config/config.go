package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken       string `envconfig:"TELEGRAM_TOKEN"`
	DatabaseURL         string `envconfig:"DATABASE_URL" default:"daily_planner.db"`
	ReportIntervalHours int    `envconfig:"REPORT_INTERVAL_HOURS" default:"5"`
	DailyReportAt       string `envconfig:"DAILY_REPORT_AT"`

	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"5s"`
	RewardPoints      int           `envconfig:"REWARD_POINTS" default:"20"`
	SoonMinutes       int           `envconfig:"SOON_MINUTES" default:"15"`
	Timezone          string        `envconfig:"TIMEZONE" default:"Local"`

	LLMAPIKey  string        `envconfig:"LLM_API_KEY"`
	LLMBaseURL string        `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	LLMModel   string        `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`
	LLMTimeout time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`

	MetricsAddr string `envconfig:"METRICS_ADDR"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_planner.db"
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ReconcileInterval < time.Second {
		return fmt.Errorf("RECONCILE_INTERVAL must be at least 1s, got %s", c.ReconcileInterval)
	}
	if c.ReportIntervalHours < 0 {
		return fmt.Errorf("REPORT_INTERVAL_HOURS must not be negative")
	}
	if c.RewardPoints <= 0 {
		return fmt.Errorf("REWARD_POINTS must be positive")
	}
	if c.DailyReportAt != "" && !validClock(c.DailyReportAt) {
		return fmt.Errorf("DAILY_REPORT_AT must be HH:MM, got %q", c.DailyReportAt)
	}
	if c.SoonMinutes <= 0 {
		return fmt.Errorf("SOON_MINUTES must be positive, got %d", c.SoonMinutes)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireTelegram checks the settings needed to run the bot.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	return nil
}

// ReportInterval is the period between agenda reports; zero disables them.
func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalHours) * time.Hour
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LLMEnabled reports whether the coach and auto-scheduler can be used.
func (c Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLMAPIKey) != ""
}

func validClock(value string) bool {
	t, err := time.Parse("15:04", value)
	return err == nil && t.Format("15:04") == value
}
