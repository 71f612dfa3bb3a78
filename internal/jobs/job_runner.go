package jobs

import (
	"context"
	"time"

	"mutuelle-membership/internal/config"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
	"mutuelle-membership/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	requests repository.RequestRepository
	notifier service.NotificationService
	config   *config.Config
	now      func() time.Time
	timeout  time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(requests repository.RequestRepository, notifier service.NotificationService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		requests: requests,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
		timeout:  5 * time.Minute,
	}
}

// Config exposes the configuration used to schedule jobs
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := jr.now()
	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.NotifyStaleCorrectionCodes()
	jr.LogRequestStatistics()
}
