package flowpipe

import (
	"context"

	"github.com/pkg/errors"
)

// ValidatePayload stops the chain with an error when pred rejects the
// payload; otherwise the payload is forwarded unchanged.
func ValidatePayload(pred func(payload any) bool, message string) Step {
	return Named("validate", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		if pred == nil {
			return nil, ErrConditionMustSet
		}

		if !pred(payload) {
			return nil, errors.Wrap(ErrValidationMessage, message)
		}

		return next(ctx, payload)
	}))
}

// Expect asserts that the payload has type T before it continues down the
// chain. A mismatch stops the chain with a descriptive error.
func Expect[T any]() Step {
	return Named("expect", StepFunc(func(ctx context.Context, payload any, next Next) (any, error) {
		var want T
		if _, ok := payload.(T); !ok {
			return nil, errors.Errorf("expected payload of type %T, got %T", want, payload)
		}

		return next(ctx, payload)
	}))
}
