package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers the retention sweep on a cron expression with seconds.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  *Sweeper
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewScheduler builds a scheduler. SkipIfStillRunning keeps sweeps serial.
func NewScheduler(sweeper *Sweeper, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron:     c,
		sweeper:  sweeper,
		schedule: schedule,
		timeout:  30 * time.Minute,
		logger:   logger,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.sweeper == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("retention scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts scheduling and returns a context that is done once a running
// sweep has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	report := s.sweeper.Run(ctx)
	if report.Failed() {
		s.logger.Warn("retention sweep finished with failures", zap.Int("failed_tables", len(report.Failures)))
	}
}
