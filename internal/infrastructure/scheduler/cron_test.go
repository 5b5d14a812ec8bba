package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(time.UTC, quietLogger())
	assert.Error(t, s.AddJob("not a cron", "bad", func(time.Time) {}))
	assert.Error(t, s.AddJob("0 9 * * MON", "nil", nil))
	assert.NoError(t, s.AddJob("0 9 * * MON", "weekly", func(time.Time) {}))
	assert.NoError(t, s.AddJob("0 */2 * * *", "collect", func(time.Time) {}))
}

func TestJobsRunUntilStopped(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	var runs atomic.Int32
	var seen atomic.Value
	s := NewCronScheduler(loc, quietLogger())
	require.NoError(t, s.AddJob("@every 1s", "tick", func(at time.Time) {
		seen.Store(at.Location().String())
		runs.Add(1)
	}))
	require.NoError(t, s.AddJob("@every 1s", "boom", func(time.Time) { panic("job exploded") }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "Europe/Berlin", seen.Load())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx))

	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestStopWaitsForRunningJobAfterCancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool
	s := NewCronScheduler(time.UTC, quietLogger())
	require.NoError(t, s.AddJob("@every 1s", "slow", func(time.Time) {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-release
	}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not start")
	}

	// Cancelling ctx stops dispatching; later Stop calls must still wait.
	cancel()
	short, shortCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer shortCancel()
	assert.ErrorIs(t, s.Stop(short), context.DeadlineExceeded)

	close(release)
	long, longCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer longCancel()
	assert.NoError(t, s.Stop(long))
}
