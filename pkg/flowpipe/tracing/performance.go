package tracing

import (
	"sync"
	"time"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// Stats aggregates durations for one step label.
type Stats struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average returns the mean duration, 0 when nothing was recorded.
func (s Stats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Count)
}

// Performance aggregates step durations per label across runs.
type Performance struct {
	mu    sync.Mutex
	stats map[string]Stats
}

// NewPerformance creates an empty aggregating tracer.
func NewPerformance() *Performance {
	return &Performance{stats: make(map[string]Stats)}
}

// Trace implements flowpipe.Tracer.
func (p *Performance) Trace(label string, before, after any, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats[label]
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
	p.stats[label] = s
}

// Report returns a snapshot of the aggregated stats per label.
func (p *Performance) Report() map[string]Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]Stats, len(p.stats))
	for label, s := range p.stats {
		out[label] = s
	}

	return out
}

// Reset drops all aggregated stats.
func (p *Performance) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = make(map[string]Stats)
}

var _ flowpipe.Tracer = (*Performance)(nil)
