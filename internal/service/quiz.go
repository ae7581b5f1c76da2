package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"wordreminder/internal/domain"

	"go.uber.org/zap"
)

const quizHeader = "Как переводятся эти слова? Ответьте переводом на каждое слово на отдельной строке:"

// QuizService sends quizzes and grades the answers
type QuizService struct {
	notifier Notifier
	sessions SessionStore
	logger   *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(notifier Notifier, sessions SessionStore, logger *zap.Logger) *QuizService {
	return &QuizService{
		notifier: notifier,
		sessions: sessions,
		logger:   logger,
	}
}

// Dispatch sends the whole backlog as one numbered quiz and waits for the answer.
// The answers are in place before the quiz goes out, so a fast reply is
// graded against them. If sending fails, the previous dialog is restored.
// An empty backlog sends nothing.
func (s *QuizService) Dispatch(ctx context.Context, userID int64, backlog []domain.WordPair) error {
	if len(backlog) == 0 {
		return nil
	}

	answers := make([]string, len(backlog))
	for i, p := range backlog {
		answers[i] = p.Translation
	}

	var prevState domain.UserState
	var prevAnswers []string
	s.sessions.Update(userID, func(sess *domain.Session) {
		prevState = sess.State
		prevAnswers = sess.CorrectAnswers
		sess.CorrectAnswers = answers
		sess.State = domain.StateAwaitingReminderAnswer
	})

	if err := s.notifier.SendMessage(ctx, userID, FormatQuiz(backlog), domain.FormatPlain); err != nil {
		s.sessions.Update(userID, func(sess *domain.Session) {
			// the dialog moved on meanwhile
			if sess.State != domain.StateAwaitingReminderAnswer || !slices.Equal(sess.CorrectAnswers, answers) {
				return
			}
			sess.State = prevState
			sess.CorrectAnswers = prevAnswers
		})
		return fmt.Errorf("send quiz: %w", err)
	}

	s.logger.Info("Quiz dispatched",
		zap.Int64("user_id", userID),
		zap.Int("words", len(backlog)),
	)
	return nil
}

// Answer grades user's reply to the last quiz.
// On ErrIncompleteAnswer the user stays in the answering state.
func (s *QuizService) Answer(userID int64, text string) (domain.GradeReport, error) {
	var report domain.GradeReport
	var err error
	s.sessions.Update(userID, func(sess *domain.Session) {
		report, err = Grade(text, sess.CorrectAnswers)
		if err == nil {
			sess.ResetConversation()
		}
	})
	if err != nil {
		return domain.GradeReport{}, err
	}

	s.logger.Info("Quiz graded",
		zap.Int64("user_id", userID),
		zap.Int("correct", report.CorrectCount()),
		zap.Int("total", len(report.Verdicts)),
	)
	return report, nil
}

// FormatQuiz renders the backlog as a numbered list of words
func FormatQuiz(backlog []domain.WordPair) string {
	var b strings.Builder
	b.WriteString(quizHeader)
	for i, p := range backlog {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Word)
	}
	return b.String()
}

// Grade compares answer lines with the expected translations by position.
// Comparison ignores case and surrounding whitespace. Extra lines are ignored.
func Grade(raw string, correct []string) (domain.GradeReport, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) < len(correct) {
		return domain.GradeReport{}, domain.ErrIncompleteAnswer
	}

	report := domain.GradeReport{Verdicts: make([]domain.AnswerVerdict, len(correct))}
	for i, expected := range correct {
		answer := strings.TrimSpace(lines[i])
		report.Verdicts[i] = domain.AnswerVerdict{
			Position: i + 1,
			Answer:   answer,
			Expected: expected,
			Correct:  strings.EqualFold(answer, strings.TrimSpace(expected)),
		}
	}
	return report, nil
}
