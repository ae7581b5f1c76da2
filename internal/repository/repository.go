package repository

import (
	"context"
	"time"

	"wordreminder/internal/domain"

	"github.com/google/uuid"
)

// WordRepository defines dictionary operations
type WordRepository interface {
	AddWord(ctx context.Context, userID int64, word string) error
	WordExists(ctx context.Context, userID int64, word string) (bool, error)
	UpdateTranslation(ctx context.Context, userID int64, word, translation string) error
	GetWordWithoutTranslation(ctx context.Context, userID int64) (string, bool, error)
	GetUserDictionary(ctx context.Context, userID int64) ([]domain.Word, error)
	DeleteWord(ctx context.Context, userID int64, word string) (bool, error)
}

// SettingsRepository defines reminder time operations
type SettingsRepository interface {
	SetReminderTimes(ctx context.Context, settings domain.ReminderSettings) error
	// GetReminderTimes returns nil when the user never configured reminders
	GetReminderTimes(ctx context.Context, userID int64) (*domain.ReminderSettings, error)
}

// ChainRepository persists reminder chain checkpoints
type ChainRepository interface {
	Save(ctx context.Context, cp domain.ChainCheckpoint) error
	Delete(ctx context.Context, userID int64, chainID uuid.UUID) error
	List(ctx context.Context) ([]domain.ChainCheckpoint, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
