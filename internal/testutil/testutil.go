package testutil

import (
	"time"

	"wordreminder/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestWord creates a test word; an empty translation means untranslated
func NewTestWord(userID int64, word, translation string) domain.Word {
	w := domain.Word{
		UserID:    userID,
		Word:      word,
		CreatedAt: time.Now(),
	}
	if translation != "" {
		w.Translation = &translation
	}
	return w
}

// NewTestSettings creates reminder settings from HH:MM strings
func NewTestSettings(userID int64, morning, evening string) domain.ReminderSettings {
	return domain.ReminderSettings{
		UserID:  userID,
		Morning: domain.MustParseClock(morning),
		Evening: domain.MustParseClock(evening),
	}
}
