package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/pkg/logging"
	"github.com/snow-ghost/guesser/pkg/metrics"
)

func newObserved(t *testing.T) (*Telemetry, *metrics.SolverMetrics, *observer.ObservedLogs) {
	t.Helper()
	zc, logs := observer.New(zapcore.DebugLevel)
	m := metrics.NewSolverMetrics(prometheus.NewRegistry())
	return New(logging.New(zap.New(zc)), m, nil), m, logs
}

func TestRun_SolvedRecordsEverything(t *testing.T) {
	tel, m, logs := newObserved(t)

	_, run := tel.StartRun(context.Background(), "genetic")
	require.NotEmpty(t, run.ID)

	run.Generation(14, 0, 0.1)
	run.Generation(14, 0, 0.2)
	run.LockIn(3, 3, 40, 0.25)
	run.End(core.Solution{Guess: "secret", Attempts: 55}, 55, nil)

	assert.Equal(t, 2, run.Generations())
	assert.Equal(t, 1, run.LockIns())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("genetic", metrics.StatusSolved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockInsTotal))

	completed := logs.FilterMessage("solve completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, run.ID, fields["run_id"])
	assert.Equal(t, "genetic", fields["solver"])
	assert.EqualValues(t, 55, fields["attempts"])
	assert.EqualValues(t, 2, fields["generations"])
	assert.EqualValues(t, 1, fields["lock_ins"])

	assert.Equal(t, 2, logs.FilterMessage("generation evaluated").Len())
	assert.Equal(t, 1, logs.FilterMessage("prefix locked in").Len())
}

func TestRun_EndStatus(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status string
	}{
		{"cancelled", fmt.Errorf("stopped: %w", context.Canceled), metrics.StatusAborted},
		{"deadline", context.DeadlineExceeded, metrics.StatusAborted},
		{"failure", errors.New("boom"), metrics.StatusFailed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tel, m, logs := newObserved(t)
			_, run := tel.StartRun(context.Background(), "hillclimb")
			run.End(core.Solution{}, 7, tc.err)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("hillclimb", tc.status)))
			assert.Equal(t, 0.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("hillclimb", metrics.StatusSolved)))

			aborted := logs.FilterMessage("solve aborted").All()
			require.Len(t, aborted, 1)
			assert.Equal(t, zapcore.WarnLevel, aborted[0].Level)
		})
	}
}

func TestNop(t *testing.T) {
	tel := NewNop()
	assert.Nil(t, tel.Metrics())
	require.NotNil(t, tel.Logger())

	_, run := tel.StartRun(context.Background(), "random")
	run.Generation(1, 0, 0)
	run.LockIn(1, 1, 1, 0)
	run.End(core.Solution{Guess: "a", Attempts: 1}, 1, nil)
	assert.Equal(t, 1, run.LockIns())
}
