package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wordreminder/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	BotToken string         `mapstructure:"bot_token"`
	Env      string         `mapstructure:"env"`
	LogLevel string         `mapstructure:"log_level"`
	Timezone string         `mapstructure:"timezone"`
	Database DatabaseConfig `mapstructure:"database"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ReminderConfig holds default reminder times and the spacing of the last stages
type ReminderConfig struct {
	DefaultMorning  string `mapstructure:"default_morning"`
	DefaultEvening  string `mapstructure:"default_evening"`
	FourthAfterDays int    `mapstructure:"fourth_after_days"`
	FifthAfterDays  int    `mapstructure:"fifth_after_days"`
}

// NotifierConfig holds outbound message limits
type NotifierConfig struct {
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

// CleanupConfig controls the nightly checkpoint prune
type CleanupConfig struct {
	Schedule  string        `mapstructure:"schedule"`
	Retention time.Duration `mapstructure:"retention"`
}

// env var names for every key
var envBindings = map[string]string{
	"bot_token":                  "BOT_TOKEN",
	"env":                        "APP_ENV",
	"log_level":                  "LOG_LEVEL",
	"timezone":                   "TIMEZONE",
	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.name":              "DB_NAME",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"reminder.default_morning":   "REMINDER_DEFAULT_MORNING",
	"reminder.default_evening":   "REMINDER_DEFAULT_EVENING",
	"reminder.fourth_after_days": "REMINDER_FOURTH_AFTER_DAYS",
	"reminder.fifth_after_days":  "REMINDER_FIFTH_AFTER_DAYS",
	"notifier.max_retries":       "NOTIFIER_MAX_RETRIES",
	"notifier.retry_delay":       "NOTIFIER_RETRY_DELAY",
	"notifier.rate_per_second":   "NOTIFIER_RATE_PER_SECOND",
	"notifier.burst":             "NOTIFIER_BURST",
	"cleanup.schedule":           "CLEANUP_SCHEDULE",
	"cleanup.retention":          "CLEANUP_RETENTION",
}

// Load reads configuration from .env, an optional config/config.yaml and environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "Local")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "wordreminder")
	v.SetDefault("database.user", "wordreminder")
	v.SetDefault("reminder.default_morning", domain.DefaultMorning.String())
	v.SetDefault("reminder.default_evening", domain.DefaultEvening.String())
	v.SetDefault("reminder.fourth_after_days", domain.DefaultSchedulePolicy().FourthAfterDays)
	v.SetDefault("reminder.fifth_after_days", domain.DefaultSchedulePolicy().FifthAfterDays)
	v.SetDefault("notifier.max_retries", 3)
	v.SetDefault("notifier.retry_delay", "1s")
	v.SetDefault("notifier.rate_per_second", 25.0)
	v.SetDefault("notifier.burst", 5)
	v.SetDefault("cleanup.schedule", "0 3 * * *")
	v.SetDefault("cleanup.retention", "168h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.DefaultSettings(); err != nil {
		return err
	}
	if err := c.SchedulePolicy().Validate(); err != nil {
		return fmt.Errorf("invalid reminder spacing: %w", err)
	}
	if c.Notifier.MaxRetries < 1 {
		return fmt.Errorf("NOTIFIER_MAX_RETRIES must be at least 1")
	}
	if c.Notifier.RatePerSecond <= 0 || c.Notifier.Burst < 1 {
		return fmt.Errorf("notifier rate limit must be positive")
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// Location returns the time zone reminder times are interpreted in
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultSettings returns reminder times for users who never set their own
func (c *Config) DefaultSettings() (domain.ReminderSettings, error) {
	morning, err := domain.ParseClock(c.Reminder.DefaultMorning)
	if err != nil {
		return domain.ReminderSettings{}, fmt.Errorf("invalid default morning time: %w", err)
	}
	evening, err := domain.ParseClock(c.Reminder.DefaultEvening)
	if err != nil {
		return domain.ReminderSettings{}, fmt.Errorf("invalid default evening time: %w", err)
	}
	return domain.ReminderSettings{Morning: morning, Evening: evening}, nil
}

// SchedulePolicy returns the spacing of the fourth and fifth quiz
func (c *Config) SchedulePolicy() domain.SchedulePolicy {
	return domain.SchedulePolicy{
		FourthAfterDays: c.Reminder.FourthAfterDays,
		FifthAfterDays:  c.Reminder.FifthAfterDays,
	}
}
