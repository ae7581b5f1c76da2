package service

import (
	"context"

	"wordreminder/internal/domain"
)

// Notifier delivers outbound messages to a user
type Notifier interface {
	SendMessage(ctx context.Context, userID int64, text string, format domain.Format) error
}

// SessionStore holds per-user conversation state
type SessionStore interface {
	Get(userID int64) *domain.Session
	State(userID int64) domain.UserState
	SetState(userID int64, state domain.UserState)
	Update(userID int64, fn func(*domain.Session)) *domain.Session
	Reset(userID int64)
}

// ReminderScheduler runs reminder chains
type ReminderScheduler interface {
	// Schedule queues the pair and starts a chain if none is running
	Schedule(userID int64, pair domain.WordPair) bool
	// Cancel stops user's chain, if any
	Cancel(userID int64) bool
}
