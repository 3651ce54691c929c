package flowpipe

import "context"

// Next is the continuation of a pipeline: the rest of the chain starting just
// after the current step. A step resumes the chain by calling it, or
// short-circuits by returning without calling it.
type Next func(ctx context.Context, payload any) (any, error)

// Step is a unit of pipeline work. Handle receives the current payload and the
// continuation for the remainder of the chain and returns the value that
// becomes the payload seen by the caller.
//
// Steps must not keep mutable state across invocations; configuration captured
// at construction time is expected to be read-only.
type Step interface {
	Handle(ctx context.Context, payload any, next Next) (any, error)
}

// StepFunc adapts a plain function to the Step interface.
type StepFunc func(ctx context.Context, payload any, next Next) (any, error)

// Handle implements Step.
func (f StepFunc) Handle(ctx context.Context, payload any, next Next) (any, error) {
	return f(ctx, payload, next)
}

// Labeled is implemented by steps that carry their own human-readable
// identifier. The pipeline uses it for tracing; everything else falls back to
// a derived label.
type Labeled interface {
	Label() string
}

type labeledStep struct {
	label string
	step  Step
}

func (s *labeledStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	return s.step.Handle(ctx, payload, next)
}

func (s *labeledStep) Label() string { return s.label }

// Named attaches a label to a step for tracing purposes. The wrapped step is
// otherwise unchanged.
func Named(label string, step Step) Step {
	return &labeledStep{label: label, step: step}
}

// identity passes the payload through unchanged.
func identity(ctx context.Context, payload any) (any, error) {
	return payload, nil
}

// Identity returns a step that forwards the payload untouched.
func Identity() Step {
	return Named("identity", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		return next(ctx, payload)
	}))
}

// Tap runs fn for its side effects and forwards the payload unchanged. An
// error from fn stops the chain.
func Tap(fn func(ctx context.Context, payload any) error) Step {
	return Named("tap", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		if err := fn(ctx, payload); err != nil {
			return nil, err
		}

		return next(ctx, payload)
	}))
}
