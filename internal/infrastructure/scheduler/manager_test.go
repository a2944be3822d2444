package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) Fatal(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}

type mockReleaseJob struct {
	calls atomic.Int32
	err   error
}

func (m *mockReleaseJob) Execute(ctx context.Context) (*usecases.ReleaseStaleAuthorizationsResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &usecases.ReleaseStaleAuthorizationsResult{Scanned: 2, Released: 1, Failed: 1}, nil
}

func TestSchedulerManager_RunsReleaseJobImmediately(t *testing.T) {
	m, err := NewSchedulerManager(newNopLogger())
	require.NoError(t, err)

	job := &mockReleaseJob{}
	require.NoError(t, m.RegisterReleaseJob(job, time.Hour))
	require.Len(t, m.Jobs(), 1)
	assert.Equal(t, "release-stale-authorizations", m.Jobs()[0].Name())

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	require.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	assert.NoError(t, m.Stop())
}

func TestSchedulerManager_JobErrorDoesNotStopScheduler(t *testing.T) {
	m, err := NewSchedulerManager(newNopLogger())
	require.NoError(t, err)

	job := &mockReleaseJob{err: errors.New("database unavailable")}
	require.NoError(t, m.RegisterReleaseJob(job, time.Hour))

	m.Start()
	require.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

func TestSchedulerManager_RegisterReleaseJobRequiresJob(t *testing.T) {
	m, err := NewSchedulerManager(newNopLogger())
	require.NoError(t, err)

	assert.Error(t, m.RegisterReleaseJob(nil, time.Minute))
}
