package strategy

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// DefaultCeiling bounds the handler's retry loop when no explicit ceiling is
// configured. It is a safety net against misbehaving strategies, not a tuning
// knob; strategies are expected to stop requesting retries on their own.
const DefaultCeiling = 25

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCeiling sets the hard maximum number of attempts the handler tolerates
// before raising a MaxAttemptsExceededError.
func WithCeiling(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.ceiling = n
		}
	}
}

// Handler is the error-handler step: it wraps the rest of the chain in a
// bounded loop, consulting its strategy on every failure. On success the
// result returns immediately; recovery follows the strategy's decision.
type Handler struct {
	strategy Strategy
	ceiling  int
}

// NewHandler creates an error-handler step around strategy.
func NewHandler(strategy Strategy, opts ...HandlerOption) *Handler {
	h := &Handler{strategy: strategy, ceiling: DefaultCeiling}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle implements flowpipe.Step.
func (h *Handler) Handle(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
	attempt := 1
	working := payload
	acc := Context{}

	for {
		out, err := next(ctx, working)
		if err == nil {
			return out, nil
		}

		var abortErr *AbortError
		if errors.As(err, &abortErr) {
			// An inner handler gave up for good; do not reinterpret.
			return nil, err
		}

		result := h.strategy.Handle(err, working, attempt, acc)
		acc = acc.Merge(result.Ctx)

		switch result.Action {
		case ActionRetry:
			if attempt >= h.ceiling {
				return nil, &MaxAttemptsExceededError{Ceiling: h.ceiling, Attempts: attempt, Err: err}
			}

			attempt++
			working = result.Payload
			if result.Delay > 0 {
				if sleepErr := sleepContext(ctx, result.Delay); sleepErr != nil {
					return nil, sleepErr
				}
			}

		case ActionFallback, ActionCompensate:
			return result.Payload, nil

		case ActionFail:
			return nil, resultError(result, err)

		case ActionAbort:
			return nil, &AbortError{Err: resultError(result, err)}

		default:
			return nil, errors.Errorf("strategy returned unknown action %d", result.Action)
		}
	}
}

// Label implements flowpipe.Labeled.
func (h *Handler) Label() string { return "error-handler" }

func resultError(result Result, original error) error {
	if result.Err != nil {
		return result.Err
	}

	return original
}

// Protect guards a single step with a strategy: the step runs isolated in its
// own sub-chain, so a failure further down the pipeline is never attributed to
// it, and only the recovered result crosses into the outer continuation.
func Protect(step flowpipe.Step, strategy Strategy, opts ...HandlerOption) flowpipe.Step {
	handler := NewHandler(strategy, opts...)

	return flowpipe.Named("protect", flowpipe.StepFunc(func(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
		out, err := handler.Handle(ctx, payload, func(ctx context.Context, payload any) (any, error) {
			return step.Handle(ctx, payload, func(ctx context.Context, payload any) (any, error) {
				return payload, nil
			})
		})
		if err != nil {
			return nil, err
		}

		return next(ctx, out)
	}))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "interrupted while waiting to retry")
	case <-timer.C:
		return nil
	}
}
