package domain

import "github.com/google/uuid"

// UserState represents user's current interaction state
type UserState string

const (
	StateIdle                   UserState = "idle"
	StateAwaitingMorningTime    UserState = "awaiting_morning_time"
	StateAwaitingEveningTime    UserState = "awaiting_evening_time"
	StateAwaitingReminderAnswer UserState = "awaiting_reminder_answer"
	StateAwaitingWordDeletion   UserState = "awaiting_word_for_deletion"
)

// Session holds in-memory per-user conversation data.
// It lives as long as the process does.
type Session struct {
	State UserState

	// PendingMorning keeps the morning time between the two onboarding steps
	PendingMorning *Clock
	// Settings caches the user's reminder times once known
	Settings *ReminderSettings

	// Backlog is the ordered list of pairs waiting for the next quiz
	Backlog []WordPair
	// CorrectAnswers are the translations of the most recently dispatched quiz
	CorrectAnswers []string

	// ReminderSent is set while a reminder chain is running for the user
	ReminderSent bool
	ChainID      uuid.UUID
}

// NewSession returns an idle session
func NewSession() *Session {
	return &Session{State: StateIdle}
}

// Clone returns a deep copy so callers can read it without holding locks
func (s *Session) Clone() *Session {
	c := *s
	if s.PendingMorning != nil {
		m := *s.PendingMorning
		c.PendingMorning = &m
	}
	if s.Settings != nil {
		st := *s.Settings
		c.Settings = &st
	}
	c.Backlog = append([]WordPair(nil), s.Backlog...)
	c.CorrectAnswers = append([]string(nil), s.CorrectAnswers...)
	return &c
}

// AddToBacklog appends the pair unless an identical pair is queued already
func (s *Session) AddToBacklog(p WordPair) bool {
	for _, existing := range s.Backlog {
		if existing == p {
			return false
		}
	}
	s.Backlog = append(s.Backlog, p)
	return true
}

// RemoveFromBacklog drops every queued pair for the word
func (s *Session) RemoveFromBacklog(word string) bool {
	kept := s.Backlog[:0]
	removed := false
	for _, p := range s.Backlog {
		if p.Word == word {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	s.Backlog = kept
	return removed
}

// ResetConversation returns the dialog to idle. Reminder chain data is kept.
func (s *Session) ResetConversation() {
	s.State = StateIdle
	s.PendingMorning = nil
	s.CorrectAnswers = nil
}
