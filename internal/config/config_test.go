package config

import (
	"testing"
	"time"

	"wordreminder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every bound variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("DB_PASSWORD", "test_db_password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "wordreminder", cfg.Database.Name)
	assert.Equal(t, "wordreminder", cfg.Database.User)
	assert.Equal(t, domain.DefaultSchedulePolicy(), cfg.SchedulePolicy())
	assert.Equal(t, 3, cfg.Notifier.MaxRetries)
	assert.Equal(t, time.Second, cfg.Notifier.RetryDelay)
	assert.Equal(t, "0 3 * * *", cfg.Cleanup.Schedule)
	assert.Equal(t, 168*time.Hour, cfg.Cleanup.Retention)

	defaults, err := cfg.DefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMorning, defaults.Morning)
	assert.Equal(t, domain.DefaultEvening, defaults.Evening)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("DB_PASSWORD", "test_db_password")
	t.Setenv("DB_HOST", "db")
	t.Setenv("TIMEZONE", "Europe/Moscow")
	t.Setenv("REMINDER_DEFAULT_MORNING", "7:30")
	t.Setenv("REMINDER_FOURTH_AFTER_DAYS", "2")
	t.Setenv("REMINDER_FIFTH_AFTER_DAYS", "7")
	t.Setenv("NOTIFIER_MAX_RETRIES", "5")
	t.Setenv("NOTIFIER_RETRY_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, domain.SchedulePolicy{FourthAfterDays: 2, FifthAfterDays: 7}, cfg.SchedulePolicy())
	assert.Equal(t, 5, cfg.Notifier.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Notifier.RetryDelay)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())

	defaults, err := cfg.DefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, domain.Clock{Hour: 7, Minute: 30}, defaults.Morning)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{
			name:        "missing bot token",
			env:         map[string]string{"DB_PASSWORD": "pass"},
			errContains: "BOT_TOKEN",
		},
		{
			name:        "missing db password",
			env:         map[string]string{"BOT_TOKEN": "token"},
			errContains: "DB_PASSWORD",
		},
		{
			name: "bad timezone",
			env: map[string]string{
				"BOT_TOKEN": "token", "DB_PASSWORD": "pass",
				"TIMEZONE": "Mars/Olympus",
			},
			errContains: "timezone",
		},
		{
			name: "bad default evening",
			env: map[string]string{
				"BOT_TOKEN": "token", "DB_PASSWORD": "pass",
				"REMINDER_DEFAULT_EVENING": "25:00",
			},
			errContains: "evening",
		},
		{
			name: "fifth not after fourth",
			env: map[string]string{
				"BOT_TOKEN": "token", "DB_PASSWORD": "pass",
				"REMINDER_FOURTH_AFTER_DAYS": "3", "REMINDER_FIFTH_AFTER_DAYS": "3",
			},
			errContains: "spacing",
		},
		{
			name: "zero retries",
			env: map[string]string{
				"BOT_TOKEN": "token", "DB_PASSWORD": "pass",
				"NOTIFIER_MAX_RETRIES": "0",
			},
			errContains: "NOTIFIER_MAX_RETRIES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
