package service

import (
	"context"
	"fmt"
	"testing"

	"wordreminder/internal/domain"
	"wordreminder/internal/session"
	"wordreminder/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testBacklog = []domain.WordPair{
	{Word: "gato", Translation: "cat"},
	{Word: "perro", Translation: "dog"},
}

func TestFormatQuiz(t *testing.T) {
	text := FormatQuiz(testBacklog)

	assert.Equal(t, quizHeader+"\n1. gato\n2. perro", text)
}

func TestQuizService_Dispatch(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	notifier.On("SendMessage", mock.Anything, int64(123), FormatQuiz(testBacklog), domain.FormatPlain).Return(nil)

	err := service.Dispatch(context.Background(), 123, testBacklog)

	assert.NoError(t, err)
	sess := sessions.Get(123)
	assert.Equal(t, domain.StateAwaitingReminderAnswer, sess.State)
	assert.Equal(t, []string{"cat", "dog"}, sess.CorrectAnswers)
	notifier.AssertExpectations(t)
}

func TestQuizService_Dispatch_EmptyBacklog(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	err := service.Dispatch(context.Background(), 123, nil)

	assert.NoError(t, err)
	assert.Equal(t, domain.StateIdle, sessions.State(123))
	notifier.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuizService_Dispatch_SendError(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	notifier.On("SendMessage", mock.Anything, int64(123), mock.Anything, mock.Anything).Return(fmt.Errorf("network down"))

	err := service.Dispatch(context.Background(), 123, testBacklog)

	assert.Error(t, err)
	assert.Equal(t, domain.StateIdle, sessions.State(123))
	assert.Empty(t, sessions.Get(123).CorrectAnswers)
}

func TestQuizService_Dispatch_AnswersSetBeforeSend(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	var stateDuringSend domain.UserState
	var answersDuringSend []string
	notifier.On("SendMessage", mock.Anything, int64(123), mock.Anything, domain.FormatPlain).
		Run(func(args mock.Arguments) {
			sess := sessions.Get(123)
			stateDuringSend = sess.State
			answersDuringSend = sess.CorrectAnswers
		}).
		Return(nil)

	err := service.Dispatch(context.Background(), 123, testBacklog)

	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingReminderAnswer, stateDuringSend)
	assert.Equal(t, []string{"cat", "dog"}, answersDuringSend)
}

func TestQuizService_Dispatch_SendErrorRestoresDialog(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	sessions.SetState(123, domain.StateAwaitingWordDeletion)
	notifier.On("SendMessage", mock.Anything, int64(123), mock.Anything, mock.Anything).Return(fmt.Errorf("network down"))

	err := service.Dispatch(context.Background(), 123, testBacklog)

	assert.Error(t, err)
	assert.Equal(t, domain.StateAwaitingWordDeletion, sessions.State(123))
	assert.Empty(t, sessions.Get(123).CorrectAnswers)
}

func TestQuizService_Dispatch_SendErrorAfterReply(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	sessions := session.NewStore()
	service := NewQuizService(notifier, sessions, testutil.NewTestLogger())

	sessions.SetState(123, domain.StateAwaitingWordDeletion)
	// the reply is graded before the send reports its failure
	notifier.On("SendMessage", mock.Anything, int64(123), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			_, err := service.Answer(123, "cat\ndog")
			assert.NoError(t, err)
		}).
		Return(fmt.Errorf("timeout"))

	err := service.Dispatch(context.Background(), 123, testBacklog)

	assert.Error(t, err)
	assert.Equal(t, domain.StateIdle, sessions.State(123))
	assert.Empty(t, sessions.Get(123).CorrectAnswers)
}

func TestGrade(t *testing.T) {
	correct := []string{"cat", "dog"}

	tests := []struct {
		name          string
		raw           string
		expected      []bool
		expectedError error
	}{
		{name: "all correct", raw: "cat\ndog", expected: []bool{true, true}},
		{name: "second wrong", raw: "cat\ncat", expected: []bool{true, false}},
		{name: "case and spaces ignored", raw: "  CAT \nDog  ", expected: []bool{true, true}},
		{name: "windows line endings", raw: "cat\r\ndog\r\n", expected: []bool{true, true}},
		{name: "extra lines ignored", raw: "cat\ndog\nbird\nfish", expected: []bool{true, true}},
		{name: "too few lines", raw: "cat", expectedError: domain.ErrIncompleteAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Grade(tt.raw, correct)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Len(t, report.Verdicts, len(tt.expected))
			for i, ok := range tt.expected {
				assert.Equal(t, ok, report.Verdicts[i].Correct, "line %d", i+1)
				assert.Equal(t, i+1, report.Verdicts[i].Position)
				assert.Equal(t, correct[i], report.Verdicts[i].Expected)
			}
		})
	}
}

func TestGrade_ExpectedWithTrailingSpace(t *testing.T) {
	report, err := Grade("Apple", []string{"apple "})

	require.NoError(t, err)
	assert.True(t, report.Verdicts[0].Correct)
}

func TestGrade_IncorrectCarriesExpected(t *testing.T) {
	report, err := Grade("cat\ncat", []string{"cat", "dog"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.CorrectCount())
	assert.Equal(t, domain.AnswerVerdict{Position: 2, Answer: "cat", Expected: "dog", Correct: false}, report.Verdicts[1])
}

func TestQuizService_Answer(t *testing.T) {
	sessions := session.NewStore()
	sessions.Update(123, func(s *domain.Session) {
		s.State = domain.StateAwaitingReminderAnswer
		s.CorrectAnswers = []string{"cat", "dog"}
		s.ReminderSent = true
		s.Backlog = append(s.Backlog, testBacklog...)
	})
	service := NewQuizService(new(testutil.MockNotifier), sessions, testutil.NewTestLogger())

	report, err := service.Answer(123, "cat\nDOG")

	assert.NoError(t, err)
	assert.Equal(t, 2, report.CorrectCount())

	sess := sessions.Get(123)
	assert.Equal(t, domain.StateIdle, sess.State)
	assert.Empty(t, sess.CorrectAnswers)
	assert.True(t, sess.ReminderSent)
	assert.Len(t, sess.Backlog, 2)
}

func TestQuizService_Answer_IncompleteKeepsState(t *testing.T) {
	sessions := session.NewStore()
	sessions.Update(123, func(s *domain.Session) {
		s.State = domain.StateAwaitingReminderAnswer
		s.CorrectAnswers = []string{"cat", "dog"}
	})
	service := NewQuizService(new(testutil.MockNotifier), sessions, testutil.NewTestLogger())

	_, err := service.Answer(123, "cat")

	assert.ErrorIs(t, err, domain.ErrIncompleteAnswer)
	sess := sessions.Get(123)
	assert.Equal(t, domain.StateAwaitingReminderAnswer, sess.State)
	assert.Equal(t, []string{"cat", "dog"}, sess.CorrectAnswers)
}

// interleavingStore runs after once, right after the first session access
type interleavingStore struct {
	*session.Store
	after func()
}

func (s *interleavingStore) fire() {
	if f := s.after; f != nil {
		s.after = nil
		f()
	}
}

func (s *interleavingStore) Get(userID int64) *domain.Session {
	sess := s.Store.Get(userID)
	s.fire()
	return sess
}

func (s *interleavingStore) Update(userID int64, fn func(*domain.Session)) *domain.Session {
	sess := s.Store.Update(userID, fn)
	s.fire()
	return sess
}

func (s *interleavingStore) Reset(userID int64) {
	s.Store.Reset(userID)
	s.fire()
}

func TestQuizService_Answer_KeepsQuizDeliveredMeanwhile(t *testing.T) {
	notifier := new(testutil.MockNotifier)
	store := &interleavingStore{Store: session.NewStore()}
	store.Store.Update(123, func(s *domain.Session) {
		s.State = domain.StateAwaitingReminderAnswer
		s.CorrectAnswers = []string{"cat", "dog"}
	})
	service := NewQuizService(notifier, store, testutil.NewTestLogger())

	next := []domain.WordPair{{Word: "pez", Translation: "fish"}}
	notifier.On("SendMessage", mock.Anything, int64(123), FormatQuiz(next), domain.FormatPlain).Return(nil)
	store.after = func() {
		require.NoError(t, service.Dispatch(context.Background(), 123, next))
	}

	report, err := service.Answer(123, "cat\ndog")

	require.NoError(t, err)
	assert.Equal(t, 2, report.CorrectCount())
	sess := store.Store.Get(123)
	assert.Equal(t, domain.StateAwaitingReminderAnswer, sess.State)
	assert.Equal(t, []string{"fish"}, sess.CorrectAnswers)
	notifier.AssertExpectations(t)
}
