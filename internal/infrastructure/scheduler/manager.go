// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	"github.com/tourbook/tourbook/internal/shared/biztime"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

const (
	defaultReleaseInterval = 15 * time.Minute
	// upper bound for one release pass; each reservation costs one REST call
	releaseJobTimeout = 10 * time.Minute
)

// ReleaseJob releases preauthorizations held longer than the hold window.
type ReleaseJob interface {
	Execute(ctx context.Context) (*usecases.ReleaseStaleAuthorizationsResult, error)
}

// SchedulerManager owns the gocron scheduler for background payment jobs.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a SchedulerManager running in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterReleaseJob registers the stale-authorization release job. It runs
// once immediately and then every interval; a slow pass delays the next one
// instead of overlapping it.
func (m *SchedulerManager) RegisterReleaseJob(job ReleaseJob, interval time.Duration) error {
	if job == nil {
		return errors.New("release job is required")
	}
	if interval <= 0 {
		interval = defaultReleaseInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseJobTimeout)
			defer cancel()
			m.releaseStaleAuthorizations(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payment", "release"),
		gocron.WithName("release-stale-authorizations"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered release job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) releaseStaleAuthorizations(ctx context.Context, job ReleaseJob) {
	m.logger.Debugw("release of stale authorizations started")

	startTime := biztime.NowUTC()
	result, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to release stale authorizations",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Scanned == 0 {
		m.logger.Debugw("no stale authorizations to release",
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("stale authorizations processed",
		"scanned", result.Scanned,
		"released", result.Released,
		"failed", result.Failed,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete and stops the scheduler.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
