package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wordreminder/internal/domain"
)

// SettingsRepo implements repository.SettingsRepository
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// SetReminderTimes stores reminder times, replacing previous ones
func (r *SettingsRepo) SetReminderTimes(ctx context.Context, settings domain.ReminderSettings) error {
	query := `
		INSERT INTO user_settings (user_id, morning_time, evening_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET morning_time = EXCLUDED.morning_time,
		              evening_time = EXCLUDED.evening_time,
		              updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, settings.UserID, settings.Morning.String(), settings.Evening.String())
	return err
}

// GetReminderTimes returns user's reminder times or nil if not set
func (r *SettingsRepo) GetReminderTimes(ctx context.Context, userID int64) (*domain.ReminderSettings, error) {
	var morning, evening string
	query := `SELECT morning_time, evening_time FROM user_settings WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&morning, &evening)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	settings := &domain.ReminderSettings{UserID: userID}
	if settings.Morning, err = domain.ParseClock(morning); err != nil {
		return nil, fmt.Errorf("stored morning time: %w", err)
	}
	if settings.Evening, err = domain.ParseClock(evening); err != nil {
		return nil, fmt.Errorf("stored evening time: %w", err)
	}

	return settings, nil
}
