package strategy_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe/strategy"
)

func TestCompositeFirstNonFailWins(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := strategy.NewComposite(
		strategy.NewRetry(2, 0),
		strategy.NewDefaultFallback("Y"),
	)

	// Attempt 1: retry still has budget, its decision wins.
	result := s.Handle(boom, "p", 1, nil)
	assert.Equal(t, strategy.ActionRetry, result.Action)

	// Attempt 2: retry is exhausted, the fallback takes over.
	result = s.Handle(boom, "p", 2, nil)
	assert.Equal(t, strategy.ActionFallback, result.Action)
	assert.Equal(t, "Y", result.Payload)
}

func TestCompositeAllFail(t *testing.T) {
	t.Parallel()

	first := errors.New("first")
	last := errors.New("last")
	s := strategy.NewComposite(
		strategy.StrategyFunc(func(err error, payload any, attempt int, sc strategy.Context) strategy.Result {
			return strategy.Fail(first, nil)
		}),
		strategy.StrategyFunc(func(err error, payload any, attempt int, sc strategy.Context) strategy.Result {
			return strategy.Fail(last, nil)
		}),
	)

	result := s.Handle(errors.New("original"), nil, 1, nil)
	assert.Equal(t, strategy.ActionFail, result.Action)
	assert.Equal(t, last, result.Err)
}

func TestCompositeAbortNotReinterpreted(t *testing.T) {
	t.Parallel()

	abortErr := errors.New("give up")
	s := strategy.NewComposite(
		strategy.StrategyFunc(func(err error, payload any, attempt int, sc strategy.Context) strategy.Result {
			return strategy.Abort(abortErr, nil)
		}),
		strategy.NewDefaultFallback("never"),
	)

	result := s.Handle(errors.New("boom"), nil, 1, nil)
	assert.Equal(t, strategy.ActionAbort, result.Action)
	assert.Equal(t, abortErr, result.Err)
}

func TestCompositeEmptyFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	result := strategy.NewComposite().Handle(boom, nil, 1, nil)
	assert.Equal(t, strategy.ActionFail, result.Action)
	assert.Equal(t, boom, result.Err)
}
