package definition

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// TransformFunc is a named payload transformation available to declarative
// definitions.
type TransformFunc func(ctx context.Context, payload any) (any, error)

// BuildOption configures a build.
type BuildOption func(*builder)

// WithRegistry sets the group registry the built pipeline resolves against.
// Flow-local groups are registered on it.
func WithRegistry(registry *flowpipe.GroupRegistry) BuildOption {
	return func(b *builder) {
		b.registry = registry
	}
}

// WithTracer attaches a tracer to the built pipeline.
func WithTracer(tracer flowpipe.Tracer) BuildOption {
	return func(b *builder) {
		b.tracer = tracer
	}
}

// WithTransform adds a named transform to the builder's table.
func WithTransform(name string, fn TransformFunc) BuildOption {
	return func(b *builder) {
		b.transforms[name] = fn
	}
}

type builder struct {
	registry   *flowpipe.GroupRegistry
	tracer     flowpipe.Tracer
	transforms map[string]TransformFunc
}

// Build turns a flow definition into a runnable pipeline: flow-local groups
// are registered, every step reference is resolved through the core resolver,
// and the declared send payload is attached. Resolution problems surface here
// as wrapped ResolutionErrors, never at run time.
func Build(flow *Flow, opts ...BuildOption) (*flowpipe.Pipeline, error) {
	b := &builder{transforms: make(map[string]TransformFunc)}
	for _, opt := range opts {
		opt(b)
	}

	if b.registry == nil {
		b.registry = flowpipe.DefaultRegistry()
	}

	for _, name := range flow.Groups.Order {
		refs, err := b.buildSteps(flow.Groups.Defs[name])
		if err != nil {
			return nil, errors.Wrapf(err, "unable to build group %q", name)
		}

		if err := b.registry.Register(name, refs...); err != nil {
			return nil, errors.Wrapf(err, "unable to register group %q", name)
		}
	}

	pipeOpts := []flowpipe.Option{
		flowpipe.WithName(flow.Name),
		flowpipe.WithRegistry(b.registry),
	}
	if b.tracer != nil {
		pipeOpts = append(pipeOpts, flowpipe.WithTracer(b.tracer))
	}

	pipe, err := flowpipe.New(pipeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	refs, err := b.buildSteps(flow.Steps)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build flow %q", flow.Name)
	}

	if err := pipe.Through(refs...); err != nil {
		return nil, errors.Wrapf(err, "unable to resolve flow %q", flow.Name)
	}

	if flow.Send != nil {
		pipe.Send(flow.Send)
	}

	return pipe, nil
}

func (b *builder) buildSteps(defs []StepDef) ([]any, error) {
	refs := make([]any, 0, len(defs))
	for i, def := range defs {
		ref, err := b.buildStep(def)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}

		refs = append(refs, ref)
	}

	return refs, nil
}

func (b *builder) buildStep(def StepDef) (any, error) {
	kind, err := def.Kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindStep:
		// Plain names go through the resolver untouched.
		return def.Step, nil
	case KindGroup:
		return flowpipe.Group(def.Group, b.registry), nil
	case KindNested:
		return b.buildNested(def.Nested)
	case KindCondition:
		return b.buildCondition(def)
	case KindTransform:
		fn, ok := b.transforms[def.Transform]
		if !ok {
			return nil, errors.Errorf("unknown transform %q", def.Transform)
		}

		return flowpipe.Named("transform:"+def.Transform, flowpipe.Transform(fn)), nil
	case KindRetry:
		return flowpipe.RetrySteps(def.Retry.MaxAttempts, def.Retry.Delay.Duration()), nil
	case KindRateLimit:
		opts := []flowpipe.RateLimitOption{}
		if def.RateLimit.Wait {
			opts = append(opts, flowpipe.RateLimitWait())
		}

		return flowpipe.RateLimit(def.RateLimit.PerSecond, def.RateLimit.Burst, opts...)
	case KindCache:
		return flowpipe.Cache(cacheKeyFn(def.Cache.Key), def.Cache.TTL.Duration())
	case KindBatch:
		return b.buildBatch(def.Batch)
	default:
		return nil, errors.Errorf("unsupported step kind %q", kind)
	}
}

func (b *builder) buildNested(defs []StepDef) (flowpipe.Step, error) {
	refs, err := b.buildSteps(defs)
	if err != nil {
		return nil, err
	}

	return flowpipe.NestedWith(b.registry.Resolver(), refs...)
}

func (b *builder) buildCondition(def StepDef) (flowpipe.Step, error) {
	cond := def.Condition.Condition()

	var thenStep, elseStep flowpipe.Step
	var err error

	if len(def.Then) > 0 {
		thenStep, err = b.buildNested(def.Then)
		if err != nil {
			return nil, errors.Wrap(err, "then branch")
		}
	}

	if len(def.Else) > 0 {
		elseStep, err = b.buildNested(def.Else)
		if err != nil {
			return nil, errors.Wrap(err, "else branch")
		}
	}

	switch {
	case thenStep != nil && elseStep != nil:
		return flowpipe.WhenElse(cond, thenStep, elseStep), nil
	case thenStep != nil:
		return flowpipe.When(cond, thenStep), nil
	case elseStep != nil:
		return flowpipe.Unless(cond, elseStep), nil
	default:
		return nil, errors.New("condition has neither a then nor an else branch")
	}
}

// buildBatch runs the batch's own sub-chain once per chunk, with the chunk as
// payload; the sub-chain must produce a slice again.
func (b *builder) buildBatch(def *BatchDef) (flowpipe.Step, error) {
	sub, err := b.buildNested(def.Steps)
	if err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, batch []any) ([]any, error) {
		if len(def.Steps) == 0 {
			return batch, nil
		}

		out, err := sub.Handle(ctx, batch, func(ctx context.Context, payload any) (any, error) {
			return payload, nil
		})
		if err != nil {
			return nil, err
		}

		items, ok := out.([]any)
		if !ok {
			return nil, errors.Errorf("batch steps must produce a slice, got %T", out)
		}

		return items, nil
	}

	return flowpipe.Batch(def.Size, handler)
}

func cacheKeyFn(field string) func(payload any) string {
	return func(payload any) string {
		if field == "" {
			return fmt.Sprint(payload)
		}

		if fields, ok := payload.(map[string]any); ok {
			return fmt.Sprint(fields[field])
		}

		return fmt.Sprint(payload)
	}
}
