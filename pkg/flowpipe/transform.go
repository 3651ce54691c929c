package flowpipe

import (
	"context"

	"github.com/pkg/errors"
)

// Transform returns a step that replaces the payload with fn's result and
// forwards it to the continuation.
func Transform(fn func(ctx context.Context, payload any) (any, error)) Step {
	return Named("transform", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		if fn == nil {
			return nil, ErrTransformMustSet
		}

		out, err := fn(ctx, payload)
		if err != nil {
			return nil, errors.Wrap(err, "unable to transform payload")
		}

		return next(ctx, out)
	}))
}

// TransformAs is Transform with compile-time payload shapes at the step
// boundary: the incoming payload must assert to In, the outgoing payload is
// whatever fn produces.
func TransformAs[In, Out any](fn func(ctx context.Context, in In) (Out, error)) Step {
	return Named("transform", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		in, ok := payload.(In)
		if !ok {
			return nil, errors.Errorf("unexpected payload type %T", payload)
		}

		out, err := fn(ctx, in)
		if err != nil {
			return nil, errors.Wrap(err, "unable to transform payload")
		}

		return next(ctx, out)
	}))
}
