package strategy

import (
	"math"
	"time"
)

// DelayCalculator maps a 1-based attempt number to the pause before the next
// attempt.
type DelayCalculator func(attempt int) time.Duration

// ExponentialDelay grows the base delay by multiplier for every failed
// attempt: base × multiplier^(attempt−1).
func ExponentialDelay(base time.Duration, multiplier float64) DelayCalculator {
	return func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(multiplier, float64(attempt-1)))
	}
}

// LinearDelay adds a fixed increment for every failed attempt:
// base + increment × (attempt−1).
func LinearDelay(base, increment time.Duration) DelayCalculator {
	return func(attempt int) time.Duration {
		return base + increment*time.Duration(attempt-1)
	}
}

// RetryOption configures a retry strategy.
type RetryOption func(*retryStrategy)

// RetryOnlyIf restricts retrying to errors accepted by pred.
func RetryOnlyIf(pred func(err error) bool) RetryOption {
	return func(s *retryStrategy) {
		s.shouldRetry = pred
	}
}

// WithDelayCalculator replaces the constant base delay with a per-attempt
// calculation.
func WithDelayCalculator(calc DelayCalculator) RetryOption {
	return func(s *retryStrategy) {
		s.delayCalc = calc
	}
}

type retryStrategy struct {
	maxAttempts int
	baseDelay   time.Duration
	shouldRetry func(err error) bool
	delayCalc   DelayCalculator
}

func (s *retryStrategy) Handle(err error, payload any, attempt int, sc Context) Result {
	if attempt >= s.maxAttempts {
		return Fail(err, Context{"retry_exhausted": true, "attempts": attempt})
	}

	if s.shouldRetry != nil && !s.shouldRetry(err) {
		return Fail(err, Context{"retry_rejected": true})
	}

	delay := s.baseDelay
	if s.delayCalc != nil {
		delay = s.delayCalc(attempt)
	}

	return Retry(payload, delay, Context{"last_error": err.Error()})
}

// NewRetry creates a strategy that requests a retry while the attempt count
// is below maxAttempts and the optional predicate accepts the error, then
// fails with the original error. The payload is retried unchanged.
func NewRetry(maxAttempts int, baseDelay time.Duration, opts ...RetryOption) Strategy {
	s := &retryStrategy{maxAttempts: maxAttempts, baseDelay: baseDelay}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ExponentialBackoff is NewRetry with an exponential delay calculator.
func ExponentialBackoff(maxAttempts int, base time.Duration, multiplier float64, opts ...RetryOption) Strategy {
	opts = append(opts, WithDelayCalculator(ExponentialDelay(base, multiplier)))

	return NewRetry(maxAttempts, base, opts...)
}

// LinearBackoff is NewRetry with a linear delay calculator.
func LinearBackoff(maxAttempts int, base, increment time.Duration, opts ...RetryOption) Strategy {
	opts = append(opts, WithDelayCalculator(LinearDelay(base, increment)))

	return NewRetry(maxAttempts, base, opts...)
}
