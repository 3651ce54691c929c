package flowpipe

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FlowContext is the per-pipeline execution record: a unique run identifier
// plus free-form tags and metadata that steps may use for side-channel
// bookkeeping unrelated to the payload. It is created with the pipeline and
// discarded with it; nothing is persisted.
type FlowContext struct {
	id string

	mu   sync.Mutex
	tags map[string]string
	meta map[string]any
}

// NewFlowContext creates a fresh context with a random run identifier.
func NewFlowContext() *FlowContext {
	return &FlowContext{
		id:   uuid.NewString(),
		tags: make(map[string]string),
		meta: make(map[string]any),
	}
}

// ID returns the unique run identifier.
func (fc *FlowContext) ID() string { return fc.id }

// SetTag records a tag. Steps may call this concurrently with tracers reading
// the tag set, so access is guarded.
func (fc *FlowContext) SetTag(key, value string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.tags[key] = value
}

// Tag returns the value for key and whether it was set.
func (fc *FlowContext) Tag(key string) (string, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	v, ok := fc.tags[key]

	return v, ok
}

// Tags returns a copy of the tag set.
func (fc *FlowContext) Tags() map[string]string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make(map[string]string, len(fc.tags))
	for k, v := range fc.tags {
		out[k] = v
	}

	return out
}

// SetMeta records a metadata entry.
func (fc *FlowContext) SetMeta(key string, value any) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.meta[key] = value
}

// Meta returns the metadata entry for key and whether it was set.
func (fc *FlowContext) Meta(key string) (any, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	v, ok := fc.meta[key]

	return v, ok
}

type flowContextKey struct{}

func withFlowContext(ctx context.Context, fc *FlowContext) context.Context {
	return context.WithValue(ctx, flowContextKey{}, fc)
}

// ContextFrom returns the FlowContext of the pipeline run the given context
// belongs to, or nil when the context does not come from a pipeline run.
func ContextFrom(ctx context.Context) *FlowContext {
	fc, _ := ctx.Value(flowContextKey{}).(*FlowContext)

	return fc
}
