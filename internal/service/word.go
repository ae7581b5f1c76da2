package service

import (
	"context"
	"fmt"
	"strings"

	"wordreminder/internal/domain"
	"wordreminder/internal/repository"

	"go.uber.org/zap"
)

// SubmitKind tells how a plain text message was interpreted
type SubmitKind int

const (
	SubmitWordAdded SubmitKind = iota + 1
	SubmitTranslationAdded
)

// SubmitResult describes the outcome of Submit
type SubmitResult struct {
	Kind        SubmitKind
	Word        string
	Translation string
	// ChainStarted is true when the translation started a new reminder chain
	ChainStarted bool
}

// WordService handles dictionary intake
type WordService struct {
	wordRepo  repository.WordRepository
	sessions  SessionStore
	scheduler ReminderScheduler
	logger    *zap.Logger
}

// NewWordService creates a new word service
func NewWordService(
	wordRepo repository.WordRepository,
	sessions SessionStore,
	scheduler ReminderScheduler,
	logger *zap.Logger,
) *WordService {
	return &WordService{
		wordRepo:  wordRepo,
		sessions:  sessions,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Submit interprets plain text from the user.
// If the user has an untranslated word, text is its translation and
// reminders are scheduled. Otherwise text is a new word.
func (s *WordService) Submit(ctx context.Context, userID int64, text string) (SubmitResult, error) {
	text = normalize(text)
	if text == "" {
		return SubmitResult{}, domain.ErrEmptyInput
	}

	pending, found, err := s.wordRepo.GetWordWithoutTranslation(ctx, userID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get untranslated word: %w", err)
	}

	if found {
		if err := s.wordRepo.UpdateTranslation(ctx, userID, pending, text); err != nil {
			return SubmitResult{}, fmt.Errorf("update translation: %w", err)
		}

		started := s.scheduler.Schedule(userID, domain.WordPair{Word: pending, Translation: text})

		s.logger.Info("Translation saved",
			zap.Int64("user_id", userID),
			zap.String("word", pending),
			zap.Bool("chain_started", started),
		)

		return SubmitResult{
			Kind:         SubmitTranslationAdded,
			Word:         pending,
			Translation:  text,
			ChainStarted: started,
		}, nil
	}

	exists, err := s.wordRepo.WordExists(ctx, userID, text)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("check word exists: %w", err)
	}
	if exists {
		return SubmitResult{}, domain.ErrDuplicateWord
	}

	if err := s.wordRepo.AddWord(ctx, userID, text); err != nil {
		return SubmitResult{}, fmt.Errorf("add word: %w", err)
	}

	return SubmitResult{Kind: SubmitWordAdded, Word: text}, nil
}

// Delete removes a word from the dictionary and from the pending backlog.
// A running chain left with nothing to ask is cancelled.
func (s *WordService) Delete(ctx context.Context, userID int64, word string) error {
	word = normalize(word)
	if word == "" {
		return domain.ErrEmptyInput
	}

	deleted, err := s.wordRepo.DeleteWord(ctx, userID, word)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if !deleted {
		return domain.ErrWordNotFound
	}

	sess := s.sessions.Update(userID, func(sess *domain.Session) {
		sess.RemoveFromBacklog(word)
	})

	if sess.ReminderSent && len(sess.Backlog) == 0 {
		if s.scheduler.Cancel(userID) {
			s.logger.Info("Reminder chain cancelled, backlog is empty", zap.Int64("user_id", userID))
		}
	}

	return nil
}

// Dictionary returns all words of the user
func (s *WordService) Dictionary(ctx context.Context, userID int64) ([]domain.Word, error) {
	words, err := s.wordRepo.GetUserDictionary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get dictionary: %w", err)
	}
	return words, nil
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
