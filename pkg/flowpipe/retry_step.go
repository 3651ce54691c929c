package flowpipe

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// RetryOption configures a retry step.
type RetryOption func(*retryStep)

// RetryIf restricts retrying to errors accepted by pred; everything else
// fails on the first occurrence.
func RetryIf(pred func(err error) bool) RetryOption {
	return func(s *retryStep) {
		s.shouldRetry = pred
	}
}

type retryStep struct {
	maxAttempts int
	delay       time.Duration
	shouldRetry func(err error) bool
}

func (s *retryStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		out, err := next(ctx, payload)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if s.shouldRetry != nil && !s.shouldRetry(err) {
			break
		}

		if attempt < s.maxAttempts && s.delay > 0 {
			if err := sleepContext(ctx, s.delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, errors.Wrapf(lastErr, "still failing after %d attempts", s.maxAttempts)
}

func (s *retryStep) Label() string { return "retry" }

// RetrySteps retries the rest of the chain up to maxAttempts times with a
// constant delay between attempts. It is the inline sibling of the strategy
// handler: no strategy consultation, no payload replacement, just bounded
// re-invocation of the continuation.
func RetrySteps(maxAttempts int, delay time.Duration, opts ...RetryOption) Step {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	step := &retryStep{maxAttempts: maxAttempts, delay: delay}
	for _, opt := range opts {
		opt(step)
	}

	return step
}

// sleepContext pauses for d or returns early with the context's error when it
// is cancelled first. With context.Background this is a plain sleep.
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
