package service

import (
	"context"
	"fmt"

	"wordreminder/internal/domain"
	"wordreminder/internal/repository"

	"go.uber.org/zap"
)

// SettingsService drives the reminder time dialog and resolves user's times
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	sessions     SessionStore
	defaults     domain.ReminderSettings
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service.
// defaults are used for users who never set their times.
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	sessions SessionStore,
	defaults domain.ReminderSettings,
	logger *zap.Logger,
) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		sessions:     sessions,
		defaults:     defaults,
		logger:       logger,
	}
}

// BeginOnboarding asks the user for the morning time next
func (s *SettingsService) BeginOnboarding(userID int64) {
	s.sessions.Update(userID, func(sess *domain.Session) {
		sess.State = domain.StateAwaitingMorningTime
		sess.PendingMorning = nil
	})
}

// SubmitMorning parses the morning time and advances to the evening step.
// On malformed input the state is left as is.
func (s *SettingsService) SubmitMorning(userID int64, text string) (domain.Clock, error) {
	morning, err := domain.ParseClock(text)
	if err != nil {
		return domain.Clock{}, err
	}

	s.sessions.Update(userID, func(sess *domain.Session) {
		sess.PendingMorning = &morning
		sess.State = domain.StateAwaitingEveningTime
	})
	return morning, nil
}

// SubmitEvening parses the evening time, stores both times and ends the dialog
func (s *SettingsService) SubmitEvening(ctx context.Context, userID int64, text string) (domain.ReminderSettings, error) {
	evening, err := domain.ParseClock(text)
	if err != nil {
		return domain.ReminderSettings{}, err
	}

	pending := s.sessions.Get(userID).PendingMorning
	morning := s.defaults.Morning
	if pending != nil {
		morning = *pending
	}

	settings := domain.ReminderSettings{UserID: userID, Morning: morning, Evening: evening}
	if err := s.settingsRepo.SetReminderTimes(ctx, settings); err != nil {
		return domain.ReminderSettings{}, fmt.Errorf("save reminder times: %w", err)
	}

	// A quiz or a restarted dialog that arrived during the save keeps its state
	s.sessions.Update(userID, func(sess *domain.Session) {
		cached := settings
		sess.Settings = &cached
		if sess.State == domain.StateAwaitingEveningTime && samePending(sess.PendingMorning, pending) {
			sess.ResetConversation()
		}
	})

	s.logger.Info("Reminder times set",
		zap.Int64("user_id", userID),
		zap.String("morning", morning.String()),
		zap.String("evening", evening.String()),
	)

	return settings, nil
}

// ReminderTimes returns user's times from the session cache, the store,
// or the defaults, in that order
func (s *SettingsService) ReminderTimes(ctx context.Context, userID int64) (domain.ReminderSettings, error) {
	if cached := s.sessions.Get(userID).Settings; cached != nil {
		return *cached, nil
	}

	stored, err := s.settingsRepo.GetReminderTimes(ctx, userID)
	if err != nil {
		return domain.ReminderSettings{}, fmt.Errorf("get reminder times: %w", err)
	}

	settings := s.defaults
	settings.UserID = userID
	if stored != nil {
		settings = *stored
		s.sessions.Update(userID, func(sess *domain.Session) {
			cached := settings
			sess.Settings = &cached
		})
	}

	return settings, nil
}

func samePending(a, b *domain.Clock) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
