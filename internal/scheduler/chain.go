package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordreminder/internal/domain"
)

const checkpointTimeout = 5 * time.Second

// start computes the timeline of a new chain and runs it
func (s *Scheduler) start(c *chain) {
	settings, err := s.settings.ReminderTimes(c.ctx, c.userID)
	if err != nil {
		s.logger.Warn("Failed to get reminder times, using defaults",
			zap.Int64("user_id", c.userID),
			zap.Error(err),
		)
		settings = domain.ReminderSettings{UserID: c.userID, Morning: domain.DefaultMorning, Evening: domain.DefaultEvening}
	}

	timeline := domain.BuildTimeline(s.clock.Now().In(s.location), settings, s.policy)

	c.mu.Lock()
	c.timeline = timeline
	c.nextStage = 0
	c.mu.Unlock()

	s.logger.Info("Reminder chain started",
		zap.Int64("user_id", c.userID),
		zap.String("chain_id", c.id.String()),
		zap.Time("first", timeline[0]),
		zap.Time("last", timeline[len(timeline)-1]),
	)

	s.saveCheckpoint(c)
	s.run(c)
}

// run delivers the remaining stages of the chain. A failed delivery is
// logged and the chain moves on to the next stage.
func (s *Scheduler) run(c *chain) {
	for {
		c.mu.Lock()
		if c.nextStage >= len(c.timeline) {
			c.mu.Unlock()
			break
		}
		stage := c.nextStage
		at := c.timeline[stage]
		c.mu.Unlock()

		wait := at.Sub(s.clock.Now())
		if wait < 0 {
			wait = 0
		}
		if err := s.clock.Sleep(c.ctx, wait); err != nil {
			return
		}

		backlog := s.sessions.Get(c.userID).Backlog
		err := s.dispatcher.Dispatch(c.ctx, c.userID, backlog)
		if err != nil {
			// interrupted deliveries are repeated after Resume
			if c.ctx.Err() != nil {
				return
			}
			s.logger.Error("Failed to deliver reminder",
				zap.Int64("user_id", c.userID),
				zap.Int("stage", stage+1),
				zap.Error(err),
			)
		}

		c.mu.Lock()
		c.nextStage = stage + 1
		c.mu.Unlock()

		if stage+1 < len(c.timeline) {
			s.saveCheckpoint(c)
			if c.ctx.Err() != nil {
				return
			}
		}
	}

	s.mu.Lock()
	current, ok := s.chains[c.userID]
	if ok && current == c {
		delete(s.chains, c.userID)
	}
	s.mu.Unlock()

	if ok && current == c {
		s.finish(c, "completed")
	}
}

// finish clears the chain's flag and backlog and removes its checkpoint
func (s *Scheduler) finish(c *chain, reason string) {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	s.sessions.Update(c.userID, func(sess *domain.Session) {
		if sess.ChainID != c.id {
			return
		}
		sess.ReminderSent = false
		sess.Backlog = nil
		sess.ChainID = uuid.Nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()
	if err := s.checkpoints.Delete(ctx, c.userID, c.id); err != nil {
		s.logger.Warn("Failed to delete chain checkpoint", zap.Int64("user_id", c.userID), zap.Error(err))
	}

	s.logger.Info("Reminder chain finished",
		zap.Int64("user_id", c.userID),
		zap.String("chain_id", c.id.String()),
		zap.String("reason", reason),
	)
}

// saveCheckpoint persists the chain's progress with the current backlog.
// It holds the chain lock so a finished chain is never written back.
func (s *Scheduler) saveCheckpoint(c *chain) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || len(c.timeline) == 0 {
		return
	}

	cp := domain.ChainCheckpoint{
		ChainID:   c.id,
		UserID:    c.userID,
		Timeline:  c.timeline,
		NextStage: c.nextStage,
		Backlog:   s.sessions.Get(c.userID).Backlog,
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()
	if err := s.checkpoints.Save(ctx, cp); err != nil {
		s.logger.Warn("Failed to save chain checkpoint",
			zap.Int64("user_id", c.userID),
			zap.Int("next_stage", c.nextStage),
			zap.Error(err),
		)
	}
}

// refreshCheckpoint stores a grown backlog of an already running chain
func (s *Scheduler) refreshCheckpoint(userID int64, backlog []domain.WordPair) {
	s.mu.Lock()
	c, ok := s.chains[userID]
	s.mu.Unlock()

	if !ok {
		return
	}
	s.logger.Debug("Backlog extended for running chain",
		zap.Int64("user_id", userID),
		zap.Int("words", len(backlog)),
	)
	s.saveCheckpoint(c)
}
