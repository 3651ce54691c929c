package strategy

// CompensationHandler runs a custom recovery action for a failed step and
// returns the payload the chain continues with.
type CompensationHandler func(payload any, err error) (any, error)

// CompensationOption configures a compensation strategy.
type CompensationOption func(*compensationStrategy)

// CompensateOnlyIf restricts compensation to errors accepted by pred.
func CompensateOnlyIf(pred func(err error) bool) CompensationOption {
	return func(s *compensationStrategy) {
		s.shouldCompensate = pred
	}
}

type compensationStrategy struct {
	handler          CompensationHandler
	shouldCompensate func(err error) bool
}

func (s *compensationStrategy) Handle(err error, payload any, attempt int, sc Context) Result {
	if s.shouldCompensate != nil && !s.shouldCompensate(err) {
		return Fail(err, Context{"compensation_rejected": true})
	}

	replacement, handlerErr := s.handler(payload, err)
	if handlerErr != nil {
		// Same rule as fallback: a failing compensation surfaces, always.
		return Fail(handlerErr, Context{
			"compensation_failed": true,
			"original_error":      err.Error(),
		})
	}

	return Compensate(replacement, Context{
		"compensation_triggered": true,
		"compensation_reason":    err.Error(),
		"original_error":         err.Error(),
	})
}

// NewCompensation creates the compensating sibling of NewFallback: the
// handler undoes or repairs whatever the failed step left behind and its
// result becomes the step's output.
func NewCompensation(handler CompensationHandler, opts ...CompensationOption) Strategy {
	s := &compensationStrategy{handler: handler}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
