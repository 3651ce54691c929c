package flowpipe

import (
	"context"

	"github.com/pkg/errors"
)

// runChain right-folds steps into a single continuation with an identity tail
// and runs it on payload. This is the same folding the pipeline core performs;
// nested and group steps reuse it so that a short-circuit inside the sub-chain
// stays local to the sub-chain.
func runChain(ctx context.Context, steps []Step, payload any) (any, error) {
	chain := Next(identity)
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		next := chain
		chain = func(ctx context.Context, payload any) (any, error) {
			return step.Handle(ctx, payload, next)
		}
	}

	return chain(ctx, payload)
}

type nestedStep struct {
	label string
	steps []Step
}

func (s *nestedStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	out, err := runChain(ctx, s.steps, payload)
	if err != nil {
		return nil, err
	}

	return next(ctx, out)
}

func (s *nestedStep) Label() string { return s.label }

// Nested builds a sub-pipeline from refs and exposes it as a single step: the
// sub-chain runs to completion on the incoming payload and only its final
// result crosses into the outer continuation. An inner step declining to call
// its continuation therefore ends the sub-chain, not the parent pipeline.
//
// An empty ref list behaves as identity. References are resolved once, here.
func Nested(refs ...any) (Step, error) {
	return NestedWith(defaultRegistry.Resolver(), refs...)
}

// NestedWith is Nested resolving through an explicit resolver.
func NestedWith(resolver *Resolver, refs ...any) (Step, error) {
	steps := make([]Step, 0, len(refs))
	for i, ref := range refs {
		step, err := resolver.Resolve(ref)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve nested step %d", i)
		}

		steps = append(steps, step)
	}

	return &nestedStep{label: "nested", steps: steps}, nil
}

type groupStep struct {
	name     string
	registry *GroupRegistry
}

func (s *groupStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	// Has distinguishes a missing group from a deliberately empty one, which
	// the registry's Get conflates.
	if !s.registry.Has(s.name) {
		return nil, &GroupNotFoundError{Name: s.name}
	}

	out, err := runChain(ctx, s.registry.Get(s.name), payload)
	if err != nil {
		return nil, err
	}

	return next(ctx, out)
}

func (s *groupStep) Label() string { return "group:" + s.name }

// Group returns a step that runs the named group's sequence and forwards the
// result to the outer continuation. The group is looked up at run time so a
// pipeline can be built before the registry is fully populated; a name that is
// still unknown when the step runs yields a GroupNotFoundError. An empty
// registered group acts as identity.
func Group(name string, registry *GroupRegistry) Step {
	if registry == nil {
		registry = defaultRegistry
	}

	return &groupStep{name: name, registry: registry}
}
