package progress

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestPrometheusSinkCounters feeds a run's worth of events through the sink
// and checks the exported collector values.
func TestPrometheusSinkCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	iteration := sampleEvent(StageIteration)
	iteration.Leaves = 12
	iteration.Pending = 3

	done := sampleEvent(StageRunDone)
	done.Leaves = 30
	done.Pending = 0
	done.Dur = 2 * time.Second

	records := sampleEvent(StageRecordsDone)
	records.Records = 25

	batch := []Event{
		sampleEvent(StageRunStart),
		iteration,
		sampleEvent(StagePageError),
		sampleEvent(StagePageError),
		done,
		records,
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.iterations))
	require.Equal(t, 30.0, testutil.ToFloat64(sink.leavesFound))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.pendingLinks))
	require.Equal(t, 2.0, testutil.ToFloat64(sink.pageErrors))
	require.Equal(t, 25.0, testutil.ToFloat64(sink.recordsClosed))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted.WithLabelValues("success")))
}

// TestPrometheusSinkTruncatedRun checks a run that stops at the ceiling is
// labeled as truncated.
func TestPrometheusSinkTruncatedRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	done := sampleEvent(StageRunDone)
	done.Note = "iteration ceiling reached"
	require.NoError(t, sink.Consume(context.Background(), []Event{done}))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted.WithLabelValues("truncated")))
}

// TestPrometheusSinkDoubleRegister ensures registering twice against one
// registry fails loudly instead of silently double-counting.
func TestPrometheusSinkDoubleRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}
