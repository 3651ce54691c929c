// Package strategy implements failure recovery for flowpipe chains.
//
// A Strategy is a pure decision function consulted when a step fails: given
// the error, the payload, the 1-based attempt number and the context
// accumulated across attempts, it returns a Result directing the handler to
// retry with a delay, substitute a fallback value, run a compensation, or
// propagate the failure. Strategies never catch errors or sleep themselves;
// the Handler step owns the bounded retry loop.
package strategy

import "time"

// Action is the kind of recovery a strategy decided on.
type Action int

const (
	// ActionRetry re-runs the wrapped continuation with the result payload
	// after the result delay.
	ActionRetry Action = iota
	// ActionFallback substitutes the result payload as the wrapped step's
	// output.
	ActionFallback
	// ActionCompensate is ActionFallback produced by a compensation handler;
	// the distinction matters to observers, not to the control flow.
	ActionCompensate
	// ActionFail propagates the carried error to the caller.
	ActionFail
	// ActionAbort propagates the carried error and forbids any further
	// recovery by outer handlers.
	ActionAbort
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionCompensate:
		return "compensate"
	case ActionFail:
		return "fail"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Context is the free-form diagnostic state accumulated across recovery
// attempts. Results carry deltas; the handler merges them.
type Context map[string]any

// Merge copies every entry of other into c, overwriting on conflict, and
// returns c. A nil receiver yields a fresh map.
func (c Context) Merge(other Context) Context {
	if c == nil {
		c = make(Context, len(other))
	}

	for k, v := range other {
		c[k] = v
	}

	return c
}

// Result is the tagged outcome of a strategy decision. Which fields are
// meaningful depends on Action: Payload and Delay for retry, Payload for
// fallback and compensate, Err for fail and abort. Ctx is merged into the
// handler's accumulated context in every case.
type Result struct {
	Action  Action
	Payload any
	Delay   time.Duration
	Err     error
	Ctx     Context
}

// Retry directs the handler to try again with payload after delay.
func Retry(payload any, delay time.Duration, ctx Context) Result {
	return Result{Action: ActionRetry, Payload: payload, Delay: delay, Ctx: ctx}
}

// Fallback directs the handler to return payload as the wrapped step's output.
func Fallback(payload any, ctx Context) Result {
	return Result{Action: ActionFallback, Payload: payload, Ctx: ctx}
}

// Compensate is Fallback produced by a custom recovery action.
func Compensate(payload any, ctx Context) Result {
	return Result{Action: ActionCompensate, Payload: payload, Ctx: ctx}
}

// Fail directs the handler to propagate err.
func Fail(err error, ctx Context) Result {
	return Result{Action: ActionFail, Err: err, Ctx: ctx}
}

// Abort directs the handler to propagate err and stop all further recovery,
// including by outer handlers.
func Abort(err error, ctx Context) Result {
	return Result{Action: ActionAbort, Err: err, Ctx: ctx}
}

// Strategy decides how to recover from a failed attempt. Implementations must
// be pure and statelessly reusable across invocations and pipelines; attempt
// is 1-based and equals the count of failed attempts so far.
type Strategy interface {
	Handle(err error, payload any, attempt int, sc Context) Result
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(err error, payload any, attempt int, sc Context) Result

// Handle implements Strategy.
func (f StrategyFunc) Handle(err error, payload any, attempt int, sc Context) Result {
	return f(err, payload, attempt, sc)
}
