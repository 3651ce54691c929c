package tracing_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe/tracing"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := tracing.NewTest()
	rec.Trace("one", "a", "A", time.Millisecond)
	rec.Trace("two", "A", "AB", 2*time.Millisecond)

	assert.Equal(t, 2, rec.Count())
	assert.Equal(t, []string{"one", "two"}, rec.Steps())
	assert.Equal(t, "one", rec.First().Label)
	assert.Equal(t, "two", rec.Last().Label)
	assert.Equal(t, "AB", rec.Last().After)

	rec.Reset()
	assert.Equal(t, 0, rec.Count())
	assert.Equal(t, tracing.TraceEvent{}, rec.First())
}

func TestPerformanceAggregates(t *testing.T) {
	t.Parallel()

	perf := tracing.NewPerformance()
	perf.Trace("step", nil, nil, 10*time.Millisecond)
	perf.Trace("step", nil, nil, 30*time.Millisecond)
	perf.Trace("other", nil, nil, 5*time.Millisecond)

	report := perf.Report()
	require.Len(t, report, 2)

	stats := report["step"]
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 40*time.Millisecond, stats.Total)
	assert.Equal(t, 10*time.Millisecond, stats.Min)
	assert.Equal(t, 30*time.Millisecond, stats.Max)
	assert.Equal(t, 20*time.Millisecond, stats.Average())

	perf.Reset()
	assert.Empty(t, perf.Report())
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	first := tracing.NewTest()
	second := tracing.NewTest()

	multi := tracing.Multi(first, second)
	multi.Trace("step", "b", "a", time.Millisecond)

	assert.Equal(t, 1, first.Count())
	assert.Equal(t, 1, second.Count())
}

func TestLoggingTracer(t *testing.T) {
	t.Parallel()

	// The logging tracer only needs to not interfere; content is zap's
	// concern.
	tracer := tracing.NewLogging(zap.NewNop())
	tracer.Trace("step", "before", "after", time.Millisecond)
}

func TestMetricsRegistersAndObserves(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics, err := tracing.NewMetrics(reg, "flowpipe")
	require.NoError(t, err)

	metrics.Trace("validate", nil, nil, 25*time.Millisecond)
	metrics.Trace("validate", nil, nil, 35*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}

	assert.True(t, names["flowpipe_step_duration_seconds"])
	assert.True(t, names["flowpipe_step_executions_total"])
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := tracing.NewMetrics(reg, "flowpipe")
	require.NoError(t, err)

	_, err = tracing.NewMetrics(reg, "flowpipe")
	assert.Error(t, err)
}
