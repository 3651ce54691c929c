package tracing

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// Logging traces every step invocation as a structured log entry.
type Logging struct {
	log *zap.SugaredLogger
}

// NewLogging creates a logging tracer on top of a zap logger.
func NewLogging(logger *zap.Logger) *Logging {
	return &Logging{log: logger.Sugar()}
}

// Trace implements flowpipe.Tracer.
func (t *Logging) Trace(label string, before, after any, d time.Duration) {
	t.log.Debugw("step executed",
		"step", label,
		"duration", d,
		"before", fmt.Sprintf("%T", before),
		"after", fmt.Sprintf("%T", after),
	)
}

var _ flowpipe.Tracer = (*Logging)(nil)
