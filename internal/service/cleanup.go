package service

import (
	"context"
	"time"

	"wordreminder/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupService removes reminder chain checkpoints nobody will resume
type CleanupService struct {
	chainRepo repository.ChainRepository
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewCleanupService creates a new cleanup service.
// Checkpoints whose last reminder is older than retention are removed.
func NewCleanupService(chainRepo repository.ChainRepository, retention time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		chainRepo: chainRepo,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

// CleanupStaleChains removes finished and outdated chain checkpoints
func (s *CleanupService) CleanupStaleChains(ctx context.Context) error {
	before := s.now().Add(-s.retention)

	s.logger.Info("Starting cleanup of stale reminder chains", zap.Time("before", before))

	removed, err := s.chainRepo.DeleteStale(ctx, before)
	if err != nil {
		s.logger.Error("Failed to cleanup stale reminder chains", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("removed", removed))
	return nil
}

// Run executes the cleanup on the cron spec until ctx is done
func (s *CleanupService) Run(ctx context.Context, spec string) error {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := s.CleanupStaleChains(ctx); err != nil {
			s.logger.Error("Scheduled cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	s.logger.Info("Cleanup job scheduled", zap.String("spec", spec))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("Cleanup job stopped")
	return nil
}
