package strategy

// FallbackHandler produces a replacement payload for a failed step.
type FallbackHandler func(payload any, err error) (any, error)

// FallbackOption configures a fallback strategy.
type FallbackOption func(*fallbackStrategy)

// FallbackOnlyIf restricts the fallback to errors accepted by pred.
func FallbackOnlyIf(pred func(err error) bool) FallbackOption {
	return func(s *fallbackStrategy) {
		s.shouldFallback = pred
	}
}

type fallbackStrategy struct {
	handler        FallbackHandler
	shouldFallback func(err error) bool
}

func (s *fallbackStrategy) Handle(err error, payload any, attempt int, sc Context) Result {
	if s.shouldFallback != nil && !s.shouldFallback(err) {
		return Fail(err, Context{"fallback_rejected": true})
	}

	replacement, handlerErr := s.handler(payload, err)
	if handlerErr != nil {
		// A failing fallback must never be silently swallowed.
		return Fail(handlerErr, Context{
			"fallback_failed": true,
			"original_error":  err.Error(),
		})
	}

	return Fallback(replacement, Context{
		"fallback_triggered": true,
		"fallback_reason":    err.Error(),
		"original_error":     err.Error(),
	})
}

// NewFallback creates a strategy that replaces the failed step's output with
// the handler's result. A handler failure surfaces as Fail carrying the
// handler's own error.
func NewFallback(handler FallbackHandler, opts ...FallbackOption) Strategy {
	s := &fallbackStrategy{handler: handler}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewDefaultFallback always replaces the failed step's output with value.
func NewDefaultFallback(value any) Strategy {
	return NewFallback(func(payload any, err error) (any, error) {
		return value, nil
	})
}
