package tracing

import (
	"sync"
	"time"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// TraceEvent is one recorded step invocation.
type TraceEvent struct {
	Label    string
	Before   any
	After    any
	Duration time.Duration
}

// Recorder keeps every trace in memory for assertions. It is safe to share
// across concurrent pipeline runs.
type Recorder struct {
	mu     sync.Mutex
	events []TraceEvent
}

// NewTest creates an empty recorder.
func NewTest() *Recorder {
	return &Recorder{}
}

// Trace implements flowpipe.Tracer.
func (r *Recorder) Trace(label string, before, after any, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, TraceEvent{Label: label, Before: before, After: after, Duration: d})
}

// Events returns a copy of the recorded events in invocation order.
func (r *Recorder) Events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TraceEvent, len(r.events))
	copy(out, r.events)

	return out
}

// Steps returns the recorded labels in invocation order.
func (r *Recorder) Steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Label
	}

	return out
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}

// First returns the earliest event; the zero event when nothing was recorded.
func (r *Recorder) First() TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return TraceEvent{}
	}

	return r.events[0]
}

// Last returns the most recent event; the zero event when nothing was
// recorded.
func (r *Recorder) Last() TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return TraceEvent{}
	}

	return r.events[len(r.events)-1]
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ flowpipe.Tracer = (*Recorder)(nil)
