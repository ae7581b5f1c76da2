package session

import (
	"sync"

	"wordreminder/internal/domain"
)

// Store keeps per-user sessions in memory. Sessions are lost on restart.
type Store struct {
	sessions map[int64]*domain.Session
	mu       sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*domain.Session)}
}

// Get returns a snapshot of user's session
func (s *Store) Get(userID int64) *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[userID]
	if !exists {
		return domain.NewSession()
	}
	return sess.Clone()
}

// State returns user's current conversation state
func (s *Store) State(userID int64) domain.UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, exists := s.sessions[userID]; exists {
		return sess.State
	}
	return domain.StateIdle
}

// SetState sets user's conversation state
func (s *Store) SetState(userID int64, state domain.UserState) {
	s.Update(userID, func(sess *domain.Session) {
		sess.State = state
	})
}

// Update applies fn to user's session atomically and returns the result snapshot.
// fn must not call back into the store.
func (s *Store) Update(userID int64, fn func(*domain.Session)) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[userID]
	if !exists {
		sess = domain.NewSession()
		s.sessions[userID] = sess
	}
	fn(sess)
	return sess.Clone()
}

// Reset returns user's conversation to idle, keeping reminder data
func (s *Store) Reset(userID int64) {
	s.Update(userID, func(sess *domain.Session) {
		sess.ResetConversation()
	})
}

// Clear forgets everything about the user
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
