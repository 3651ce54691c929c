package flowpipe

import "context"

// Condition decides whether a guarded step runs for a given payload.
type Condition interface {
	Evaluate(ctx context.Context, payload any) bool
}

// ConditionFunc adapts a predicate function to the Condition interface.
type ConditionFunc func(ctx context.Context, payload any) bool

// Evaluate implements Condition.
func (f ConditionFunc) Evaluate(ctx context.Context, payload any) bool {
	return f(ctx, payload)
}

type conditionalStep struct {
	label  string
	cond   Condition
	step   Step
	negate bool
}

func (s *conditionalStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	ok := s.cond.Evaluate(ctx, payload)
	if s.negate {
		ok = !ok
	}

	if !ok {
		// Skip the guarded step entirely; the payload crosses untouched.
		return next(ctx, payload)
	}

	// The guarded step receives the SAME outer continuation, so it decides
	// whether the rest of the parent chain runs.
	return s.step.Handle(ctx, payload, next)
}

func (s *conditionalStep) Label() string { return s.label }

// When runs step only when cond evaluates true; otherwise the payload is
// passed to the continuation unchanged.
func When(cond Condition, step Step) Step {
	return &conditionalStep{label: "when", cond: cond, step: step}
}

// Unless is When with the predicate inverted.
func Unless(cond Condition, step Step) Step {
	return &conditionalStep{label: "unless", cond: cond, step: step, negate: true}
}

type whenElseStep struct {
	cond     Condition
	thenStep Step
	elseStep Step
}

func (s *whenElseStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	if s.cond.Evaluate(ctx, payload) {
		return s.thenStep.Handle(ctx, payload, next)
	}

	return s.elseStep.Handle(ctx, payload, next)
}

func (s *whenElseStep) Label() string { return "when-else" }

// WhenElse picks one of two branches per payload. Wrap multi-step branches
// with Nested so that a short-circuit inside a branch stays inside it.
func WhenElse(cond Condition, thenStep, elseStep Step) Step {
	return &whenElseStep{cond: cond, thenStep: thenStep, elseStep: elseStep}
}
