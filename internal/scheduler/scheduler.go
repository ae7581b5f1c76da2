package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordreminder/internal/domain"
	"wordreminder/internal/repository"
)

// Dispatcher sends one quiz with the given backlog
type Dispatcher interface {
	Dispatch(ctx context.Context, userID int64, backlog []domain.WordPair) error
}

// SettingsProvider resolves user's reminder times
type SettingsProvider interface {
	ReminderTimes(ctx context.Context, userID int64) (domain.ReminderSettings, error)
}

// SessionStore is the part of the session store the scheduler needs
type SessionStore interface {
	Get(userID int64) *domain.Session
	Update(userID int64, fn func(*domain.Session)) *domain.Session
}

// Clock abstracts time so chains can be tested without waiting days
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ChainInfo describes a running chain
type ChainInfo struct {
	ChainID   uuid.UUID
	UserID    int64
	NextStage int
	NextAt    time.Time
}

// Scheduler supervises reminder chains, at most one per user.
// Chains of different users run independently of each other.
type Scheduler struct {
	sessions    SessionStore
	dispatcher  Dispatcher
	settings    SettingsProvider
	checkpoints repository.ChainRepository
	policy      domain.SchedulePolicy
	location    *time.Location
	clock       Clock
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	chains map[int64]*chain
}

type chain struct {
	id     uuid.UUID
	userID int64
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	timeline  domain.Timeline
	nextStage int
	closed    bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocation sets the time zone the morning and evening times refer to
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.location = loc }
}

// New creates a scheduler
func New(
	sessions SessionStore,
	dispatcher Dispatcher,
	settings SettingsProvider,
	checkpoints repository.ChainRepository,
	policy domain.SchedulePolicy,
	logger *zap.Logger,
	opts ...Option,
) (*Scheduler, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule policy: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		sessions:    sessions,
		dispatcher:  dispatcher,
		settings:    settings,
		checkpoints: checkpoints,
		policy:      policy,
		location:    time.Local,
		clock:       realClock{},
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		chains:      make(map[int64]*chain),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule queues the pair for user's quizzes. If no chain is running for
// the user, a new one is started and true is returned. It never blocks on
// the chain itself.
func (s *Scheduler) Schedule(userID int64, pair domain.WordPair) bool {
	chainID := uuid.New()
	started := false

	sess := s.sessions.Update(userID, func(sess *domain.Session) {
		sess.AddToBacklog(pair)
		if sess.ReminderSent {
			return
		}
		sess.ReminderSent = true
		sess.ChainID = chainID
		started = true
	})

	if !started {
		s.refreshCheckpoint(userID, sess.Backlog)
		return false
	}

	c := s.register(chainID, userID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.start(c)
	}()

	return true
}

// Cancel stops user's chain and forgets its backlog and checkpoint
func (s *Scheduler) Cancel(userID int64) bool {
	s.mu.Lock()
	c, ok := s.chains[userID]
	if ok {
		delete(s.chains, userID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	c.cancel()
	s.finish(c, "cancelled")
	return true
}

// Active lists the running chains
func (s *Scheduler) Active() []ChainInfo {
	s.mu.Lock()
	running := make([]*chain, 0, len(s.chains))
	for _, c := range s.chains {
		running = append(running, c)
	}
	s.mu.Unlock()

	infos := make([]ChainInfo, 0, len(running))
	for _, c := range running {
		c.mu.Lock()
		info := ChainInfo{ChainID: c.id, UserID: c.userID, NextStage: c.nextStage}
		if c.nextStage < len(c.timeline) {
			info.NextAt = c.timeline[c.nextStage]
		}
		c.mu.Unlock()
		infos = append(infos, info)
	}
	return infos
}

// Resume restarts chains from stored checkpoints. Stages missed while
// the process was down collapse into one immediate quiz.
func (s *Scheduler) Resume(ctx context.Context) (int, error) {
	checkpoints, err := s.checkpoints.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list checkpoints: %w", err)
	}

	now := s.clock.Now()
	resumed := 0
	for _, cp := range checkpoints {
		if cp.Finished() || len(cp.Backlog) == 0 {
			if err := s.checkpoints.Delete(ctx, cp.UserID, cp.ChainID); err != nil {
				s.logger.Warn("Failed to delete finished checkpoint", zap.Int64("user_id", cp.UserID), zap.Error(err))
			}
			continue
		}

		adopted := false
		s.sessions.Update(cp.UserID, func(sess *domain.Session) {
			if sess.ReminderSent {
				return
			}
			for _, p := range cp.Backlog {
				sess.AddToBacklog(p)
			}
			sess.ReminderSent = true
			sess.ChainID = cp.ChainID
			adopted = true
		})
		if !adopted {
			continue
		}

		c := s.register(cp.ChainID, cp.UserID)
		stage := cp.ResumeStage(now)
		c.mu.Lock()
		c.timeline = cp.Timeline
		c.nextStage = stage
		c.mu.Unlock()

		s.logger.Info("Reminder chain resumed",
			zap.Int64("user_id", cp.UserID),
			zap.String("chain_id", cp.ChainID.String()),
			zap.Int("stage", stage+1),
		)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(c)
		}()
		resumed++
	}

	return resumed, nil
}

// Stop cancels every chain, keeping checkpoints for Resume, and waits
// for the chain goroutines to exit
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until all chain goroutines have exited
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Run resumes stored chains and stops all chains when ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	n, err := s.Resume(ctx)
	if err != nil {
		s.logger.Error("Failed to resume reminder chains", zap.Error(err))
	} else {
		s.logger.Info("Reminder scheduler started", zap.Int("resumed", n))
	}

	<-ctx.Done()

	s.Stop()
	s.logger.Info("Reminder scheduler stopped")
	return nil
}

func (s *Scheduler) register(id uuid.UUID, userID int64) *chain {
	ctx, cancel := context.WithCancel(s.ctx)
	c := &chain{id: id, userID: userID, ctx: ctx, cancel: cancel}

	s.mu.Lock()
	s.chains[userID] = c
	s.mu.Unlock()
	return c
}
