package strategy

type compositeStrategy struct {
	subs []Strategy
}

func (s *compositeStrategy) Handle(err error, payload any, attempt int, sc Context) Result {
	lastErr := err
	for _, sub := range s.subs {
		result := sub.Handle(err, payload, attempt, sc)
		if result.Action != ActionFail {
			// The first non-Fail decision wins and is returned as-is,
			// Abort included.
			return result
		}

		if result.Err != nil {
			lastErr = result.Err
		}
	}

	return Fail(lastErr, Context{"composite_exhausted": true})
}

// NewComposite chains strategies: each sub-strategy is consulted in order and
// the first whose result is not Fail decides. When every sub-strategy fails,
// the composite fails with the last error. A typical chain is
// NewComposite(NewRetry(...), NewDefaultFallback(...)): retry until exhausted,
// then fall back.
func NewComposite(subs ...Strategy) Strategy {
	return &compositeStrategy{subs: subs}
}
