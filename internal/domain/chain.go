package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChainCheckpoint is the persisted progress of a running reminder chain
type ChainCheckpoint struct {
	ChainID   uuid.UUID
	UserID    int64
	Timeline  Timeline
	NextStage int
	Backlog   []WordPair
	UpdatedAt time.Time
}

// Finished reports whether every stage has been delivered
func (c ChainCheckpoint) Finished() bool {
	return c.NextStage >= len(c.Timeline)
}

// ResumeStage returns the stage a restarted chain should continue from.
// Stages missed while the process was down collapse into the latest one,
// which is delivered right away.
func (c ChainCheckpoint) ResumeStage(now time.Time) int {
	next := c.Timeline.Next(now)
	if next > c.NextStage {
		// at least one stage is overdue
		return next - 1
	}
	return c.NextStage
}
