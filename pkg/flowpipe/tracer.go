package flowpipe

import "time"

// Tracer observes step executions. Trace is invoked once per step invocation,
// unconditionally when a tracer is attached, with the payload before the call,
// the payload (or short-circuit result) after it, and the wall-clock duration.
//
// Tracing must not alter the result being propagated; a tracer that panics or
// misbehaves is a defect in the tracer, the engine does not guard against it.
type Tracer interface {
	Trace(label string, before, after any, d time.Duration)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(label string, before, after any, d time.Duration)

// Trace implements Tracer.
func (f TracerFunc) Trace(label string, before, after any, d time.Duration) {
	f(label, before, after, d)
}
