package flowpipe

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitOption configures a rate-limit step.
type RateLimitOption func(*rateLimitStep)

// RateLimitWait makes the step block until a token is available instead of
// failing. The wait honours context cancellation.
func RateLimitWait() RateLimitOption {
	return func(s *rateLimitStep) {
		s.wait = true
	}
}

type rateLimitStep struct {
	limiter *rate.Limiter
	wait    bool
}

func (s *rateLimitStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	if s.wait {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "interrupted while waiting for rate limit")
		}

		return next(ctx, payload)
	}

	if !s.limiter.Allow() {
		return nil, &RateLimitExceededError{Label: s.Label()}
	}

	return next(ctx, payload)
}

func (s *rateLimitStep) Label() string { return "rate-limit" }

// RateLimit returns a step guarding the rest of the chain with a token
// bucket of perSecond tokens and the given burst. By default an exhausted
// bucket fails the step with a RateLimitExceededError; RateLimitWait switches
// to blocking until a token frees up.
//
// The bucket is shared across invocations of the same step value, which is
// what makes repeated runs of one pipeline rate-limited as a whole.
func RateLimit(perSecond float64, burst int, opts ...RateLimitOption) (Step, error) {
	if perSecond <= 0 {
		return nil, ErrRateLimitPerSec
	}

	if burst < 1 {
		burst = 1
	}

	step := &rateLimitStep{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
	for _, opt := range opts {
		opt(step)
	}

	return step, nil
}
