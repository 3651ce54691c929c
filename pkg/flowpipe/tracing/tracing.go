// Package tracing provides implementations of the flowpipe Tracer contract:
// structured logging, in-memory recording for tests, per-step performance
// aggregation and Prometheus metrics.
package tracing

import (
	"time"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

type multiTracer struct {
	tracers []flowpipe.Tracer
}

func (m *multiTracer) Trace(label string, before, after any, d time.Duration) {
	for _, t := range m.tracers {
		t.Trace(label, before, after, d)
	}
}

// Multi fans every trace out to all given tracers in order.
func Multi(tracers ...flowpipe.Tracer) flowpipe.Tracer {
	return &multiTracer{tracers: tracers}
}
