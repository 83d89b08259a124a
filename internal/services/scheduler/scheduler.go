// Package scheduler runs the periodic cache sweep that removes expired
// provider responses from storage.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/alphalens/internal/interfaces"
)

// DefaultSweepSchedule runs the sweep every five minutes.
const DefaultSweepSchedule = "*/5 * * * *"

// Service owns the cron instance driving cache maintenance.
type Service struct {
	cache   interfaces.ProviderCache
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	running bool
}

// NewService creates the sweep scheduler.
func NewService(cache interfaces.ProviderCache, logger arbor.ILogger) *Service {
	return &Service{
		cache:  cache,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the sweep on the given cron expression and starts the
// scheduler. An empty expression uses the default five-minute schedule.
func (s *Service) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		cronExpr = DefaultSweepSchedule
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runSweep); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", cronExpr).Msg("Cache sweep scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for an in-flight sweep to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("Cache sweep scheduler stopped")
}

// SweepNow triggers one sweep immediately, outside the schedule.
func (s *Service) SweepNow(ctx context.Context) (int, error) {
	return s.cache.Sweep(ctx)
}

func (s *Service) runSweep() {
	removed, err := s.cache.Sweep(context.Background())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache sweep failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Cache sweep removed expired entries")
	} else {
		s.logger.Debug().Msg("Cache sweep found no expired entries")
	}
}
