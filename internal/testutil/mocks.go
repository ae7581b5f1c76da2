package testutil

import (
	"context"
	"time"

	"wordreminder/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockWordRepository is a mock for WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) AddWord(ctx context.Context, userID int64, word string) error {
	args := m.Called(ctx, userID, word)
	return args.Error(0)
}

func (m *MockWordRepository) WordExists(ctx context.Context, userID int64, word string) (bool, error) {
	args := m.Called(ctx, userID, word)
	return args.Bool(0), args.Error(1)
}

func (m *MockWordRepository) UpdateTranslation(ctx context.Context, userID int64, word, translation string) error {
	args := m.Called(ctx, userID, word, translation)
	return args.Error(0)
}

func (m *MockWordRepository) GetWordWithoutTranslation(ctx context.Context, userID int64) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockWordRepository) GetUserDictionary(ctx context.Context, userID int64) ([]domain.Word, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Word), args.Error(1)
}

func (m *MockWordRepository) DeleteWord(ctx context.Context, userID int64, word string) (bool, error) {
	args := m.Called(ctx, userID, word)
	return args.Bool(0), args.Error(1)
}

// MockSettingsRepository is a mock for SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) SetReminderTimes(ctx context.Context, settings domain.ReminderSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) GetReminderTimes(ctx context.Context, userID int64) (*domain.ReminderSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReminderSettings), args.Error(1)
}

// MockChainRepository is a mock for ChainRepository
type MockChainRepository struct {
	mock.Mock
}

func (m *MockChainRepository) Save(ctx context.Context, cp domain.ChainCheckpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockChainRepository) Delete(ctx context.Context, userID int64, chainID uuid.UUID) error {
	args := m.Called(ctx, userID, chainID)
	return args.Error(0)
}

func (m *MockChainRepository) List(ctx context.Context) ([]domain.ChainCheckpoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChainCheckpoint), args.Error(1)
}

func (m *MockChainRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier is a mock for Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendMessage(ctx context.Context, userID int64, text string, format domain.Format) error {
	args := m.Called(ctx, userID, text, format)
	return args.Error(0)
}

// MockScheduler is a mock for ReminderScheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(userID int64, pair domain.WordPair) bool {
	args := m.Called(userID, pair)
	return args.Bool(0)
}

func (m *MockScheduler) Cancel(userID int64) bool {
	args := m.Called(userID)
	return args.Bool(0)
}
