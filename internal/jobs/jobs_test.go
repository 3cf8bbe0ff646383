package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crumbhouse/bakery-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDispatcher struct {
	mu        sync.Mutex
	limits    []int
	lowStock  int
	dispatchE error
}

func (f *fakeDispatcher) DispatchPending(_ context.Context, limit int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return 2, 1, f.dispatchE
}

func (f *fakeDispatcher) QueueLowStockAlerts(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lowStock++
	return 3, nil
}

func TestNotificationDispatchJob_UsesBatchSize(t *testing.T) {
	d := &fakeDispatcher{}
	jobs.NewNotificationDispatchJob(d, 25, time.Second, zap.NewNop()).Run()
	jobs.NewNotificationDispatchJob(d, 0, time.Second, zap.NewNop()).Run()

	assert.Equal(t, []int{25, 50}, d.limits)
}

func TestNotificationDispatchJob_ErrorDoesNotPanic(t *testing.T) {
	d := &fakeDispatcher{dispatchE: errors.New("smtp down")}
	assert.NotPanics(t, jobs.NewNotificationDispatchJob(d, 10, time.Second, zap.NewNop()).Run)
}

func TestLowStockScanJob_Run(t *testing.T) {
	d := &fakeDispatcher{}
	jobs.NewLowStockScanJob(d, time.Second, zap.NewNop()).Run()
	assert.Equal(t, 1, d.lowStock)
}

func TestScheduler_AddRemoveJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob(jobs.NotificationDispatchJobName, "0 */1 * * * *", func() {}))
	require.NoError(t, s.AddJob(jobs.LowStockScanJobName, "0 0 6 * * *", func() {}))
	assert.Error(t, s.AddJob(jobs.LowStockScanJobName, "@hourly", func() {}))
	assert.Error(t, s.AddJob("broken", "not a cron", func() {}))

	assert.Equal(t, []string{jobs.LowStockScanJobName, jobs.NotificationDispatchJobName}, s.JobNames())

	require.NoError(t, s.RemoveJob(jobs.LowStockScanJobName))
	assert.Error(t, s.RemoveJob(jobs.LowStockScanJobName))
	assert.Equal(t, []string{jobs.NotificationDispatchJobName}, s.JobNames())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
