package tracing

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// Metrics exposes step executions as Prometheus metrics: a histogram of step
// durations and a counter of invocations, both labelled by step.
type Metrics struct {
	durations *prometheus.HistogramVec
	total     *prometheus.CounterVec
}

// NewMetrics creates the metrics tracer and registers its collectors on reg.
// A duplicate registration surfaces as an error instead of a panic.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of pipeline step executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_executions_total",
			Help:      "Number of pipeline step executions.",
		}, []string{"step"}),
	}

	if err := reg.Register(m.durations); err != nil {
		return nil, errors.Wrap(err, "unable to register step duration histogram")
	}

	if err := reg.Register(m.total); err != nil {
		return nil, errors.Wrap(err, "unable to register step execution counter")
	}

	return m, nil
}

// Trace implements flowpipe.Tracer.
func (m *Metrics) Trace(label string, before, after any, d time.Duration) {
	m.durations.WithLabelValues(label).Observe(d.Seconds())
	m.total.WithLabelValues(label).Inc()
}

var _ flowpipe.Tracer = (*Metrics)(nil)
