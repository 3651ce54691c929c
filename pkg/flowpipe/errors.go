package flowpipe

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrStepMustBeSet     = errors.New("step must be set")
	ErrConditionMustSet  = errors.New("condition must be set")
	ErrPipelineRunning   = errors.New("pipeline is running")
	ErrBatchSize         = errors.New("batch size must be greater than 0")
	ErrBatchPayload      = errors.New("batch payload must be a slice")
	ErrCacheKeyFn        = errors.New("cache key function must be set")
	ErrRateLimitPerSec   = errors.New("rate limit per second must be greater than 0")
	ErrTransformMustSet  = errors.New("transform function must be set")
	ErrValidationMessage = errors.New("payload validation failed")
)

// ResolutionError reports a step reference that could not be turned into a
// usable Step. It is only ever produced while building a pipeline, never at
// run time.
type ResolutionError struct {
	Ref    any
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve step reference %v: %s", e.Ref, e.Reason)
}

func newResolutionError(ref any, format string, args ...any) *ResolutionError {
	return &ResolutionError{Ref: ref, Reason: fmt.Sprintf(format, args...)}
}

// StepExecutionError wraps an error raised by a step's own logic during
// Handle, keeping the label of the step that failed.
type StepExecutionError struct {
	Label string
	Err   error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Label, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// GroupNotFoundError reports a group reference that does not exist in the
// registry. The registry itself returns an empty sequence for unknown names;
// group steps turn that into this error after checking Has.
type GroupNotFoundError struct {
	Name string
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("group %q is not registered", e.Name)
}

// RateLimitExceededError is returned by a rate-limit step in error mode when
// the bucket has no token available.
type RateLimitExceededError struct {
	Label string
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded at step %q", e.Label)
}
