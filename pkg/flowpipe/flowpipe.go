package flowpipe

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type pipelineState int

const (
	stateBuilding pipelineState = iota
	stateComposed
	stateRunning
	stateCompleted
	stateFailed
)

// Pipeline owns an ordered list of resolved steps, an initial payload and a
// per-run FlowContext. Steps execute in exactly the order given to Through;
// ThenReturn blocks until the whole chain, including nested sub-chains and any
// retry loops, completes or fails.
type Pipeline struct {
	name     string
	resolver *Resolver
	tracer   Tracer
	flowCtx  *FlowContext

	mu      sync.Mutex
	state   pipelineState
	steps   []resolvedStep
	payload any
}

type resolvedStep struct {
	label string
	step  Step
}

// Option configures a pipeline at construction time.
type Option func(*Pipeline) error

// WithName sets a name for the pipeline, recorded as a tag on its FlowContext.
func WithName(name string) Option {
	return func(p *Pipeline) error {
		p.name = name
		p.flowCtx.SetTag("flow", name)

		return nil
	}
}

// WithResolver sets the resolver used by Through.
func WithResolver(resolver *Resolver) Option {
	return func(p *Pipeline) error {
		if resolver == nil {
			return errors.New("resolver must be set")
		}
		p.resolver = resolver

		return nil
	}
}

// WithRegistry makes the pipeline resolve through the given registry's
// resolver.
func WithRegistry(registry *GroupRegistry) Option {
	return func(p *Pipeline) error {
		if registry == nil {
			return errors.New("registry must be set")
		}
		p.resolver = registry.Resolver()

		return nil
	}
}

// WithTracer attaches a tracer observing every step invocation.
func WithTracer(tracer Tracer) Option {
	return func(p *Pipeline) error {
		p.tracer = tracer

		return nil
	}
}

// New creates an empty pipeline. Without options it resolves against the
// process-wide default registry and runs untraced.
func New(opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		flowCtx: NewFlowContext(),
		state:   stateBuilding,
	}

	for _, opt := range opts {
		err := opt(pipe)
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	if pipe.resolver == nil {
		pipe.resolver = defaultRegistry.Resolver()
	}

	return pipe, nil
}

// Name returns the pipeline name, empty when none was set.
func (p *Pipeline) Name() string { return p.name }

// FlowContext returns the per-pipeline execution record.
func (p *Pipeline) FlowContext() *FlowContext { return p.flowCtx }

// Send sets the initial payload. Calling it again overwrites the previous
// value; the last call before execution wins.
func (p *Pipeline) Send(payload any) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payload = payload

	return p
}

// Through resolves every reference eagerly and stores the ordered step list,
// replacing any previous list. A reference that cannot be resolved surfaces
// here, at construction time, as a ResolutionError.
func (p *Pipeline) Through(refs ...any) error {
	steps := make([]resolvedStep, 0, len(refs))
	for i, ref := range refs {
		step, err := p.resolver.Resolve(ref)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve step %d", i)
		}

		steps = append(steps, resolvedStep{label: stepLabel(ref, step), step: step})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateRunning {
		return ErrPipelineRunning
	}

	p.steps = steps
	p.state = stateComposed

	return nil
}

// ThenReturn executes the composed chain on the initial payload and returns
// whatever the outermost step call produces. It may be called again; each call
// re-runs the same composed chain from the start.
func (p *Pipeline) ThenReturn(ctx context.Context) (any, error) {
	return p.Then(ctx, identity)
}

// Then executes the chain with dest as the final continuation. ThenReturn is
// Then with an identity destination.
func (p *Pipeline) Then(ctx context.Context, dest Next) (any, error) {
	p.mu.Lock()
	if p.state == stateRunning {
		p.mu.Unlock()

		return nil, ErrPipelineRunning
	}

	steps := p.steps
	payload := p.payload
	p.state = stateRunning
	p.mu.Unlock()

	chain := dest
	for i := len(steps) - 1; i >= 0; i-- {
		chain = p.wrap(steps[i], chain)
	}

	out, err := chain(withFlowContext(ctx, p.flowCtx), payload)

	p.mu.Lock()
	if err != nil {
		p.state = stateFailed
	} else {
		p.state = stateCompleted
	}
	p.mu.Unlock()

	return out, err
}

// wrap builds the continuation for one step: it invokes the step with the
// rest of the chain as next, attributes the first failure to the step's label
// and reports the invocation to the tracer.
//
// The trace fires the moment the step hands its payload to the continuation,
// so traces appear in declaration order and the after-payload is the step's
// own output, not the output of everything downstream. A step that
// short-circuits (or fails) traces when it returns instead, with its result
// as the after-payload.
func (p *Pipeline) wrap(rs resolvedStep, next Next) Next {
	return func(ctx context.Context, payload any) (any, error) {
		before := payload
		start := time.Now()
		traced := false

		tracedNext := func(ctx context.Context, forwarded any) (any, error) {
			// Tracing runs unconditionally when a tracer is attached and
			// must not alter the propagated result.
			if p.tracer != nil && !traced {
				traced = true
				p.tracer.Trace(rs.label, before, forwarded, time.Since(start))
			}

			return next(ctx, forwarded)
		}

		out, err := rs.step.Handle(ctx, payload, tracedNext)

		if p.tracer != nil && !traced {
			p.tracer.Trace(rs.label, before, out, time.Since(start))
		}

		if err != nil {
			var stepErr *StepExecutionError
			if errors.As(err, &stepErr) {
				// Already attributed by an inner step; propagate unchanged.
				return nil, err
			}

			return nil, &StepExecutionError{Label: rs.label, Err: err}
		}

		return out, nil
	}
}
