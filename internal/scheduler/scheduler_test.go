package scheduler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopRunner struct{}

func (nopRunner) RefreshAll(ctx context.Context) error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduleRefreshInvalidExpression(t *testing.T) {
	s := NewScheduler(nopRunner{}, testLogger())
	assert.Error(t, s.ScheduleRefresh("not a cron expression"))
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(nopRunner{}, testLogger())
	assert.Error(t, s.Start())
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(nopRunner{}, testLogger())
	require.NoError(t, s.ScheduleRefresh("*/2 * * * *"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(), "double start should fail")
	assert.False(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(), "stop is idempotent")
}

func TestScheduleIntervalClampsFloor(t *testing.T) {
	s := NewScheduler(nopRunner{}, testLogger())
	// sub-second intervals are clamped rather than rejected
	require.NoError(t, s.ScheduleInterval(1))
	require.NoError(t, s.ScheduleInterval(30))
}
