package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
)

// sweepTimeout bounds a single expiry sweep.
const sweepTimeout = 2 * time.Minute

// Sweeper runs one expiry sweep.
type Sweeper interface {
	Sweep(ctx context.Context) (models.ExpiryReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler evaluating cfg.CronSchedule in
// cfg.Timezone.
func NewScheduler(cfg config.ExpiryConfig, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(config.Location(cfg.Timezone))),
		sweeper:  sweeper,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(cfg.CronSchedule, s.runSweep); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("expiry_schedule", s.schedule))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns when the sweep runs next; zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runSweep() {
	s.logger.Info("running expiry sweep")
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
	}
}
