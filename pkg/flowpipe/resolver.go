package flowpipe

import (
	"context"
	"fmt"
	"sync"
)

// Resolver normalises heterogeneous step references into Steps. Accepted
// references are: an already-built Step (returned unchanged), a bare function
// with the Step signature, and a string naming either a registered group or a
// registered step type. Resolution is eager: it happens once while the
// pipeline's step list is built, never per invocation, so a bad reference
// fails at construction time with a ResolutionError.
type Resolver struct {
	registry *GroupRegistry

	mu        sync.RWMutex
	factories map[string]func() any
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverRegistry sets the group registry consulted for string
// references before the type table.
func WithResolverRegistry(reg *GroupRegistry) ResolverOption {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// NewResolver creates a resolver. Without options it resolves group references
// against the process-wide default registry.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{factories: make(map[string]func() any)}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = defaultRegistry
	}

	return r
}

// RegisterType adds a named step constructor to the resolver's type table.
// The factory's product must implement Step; a product that does not is
// reported as a ResolutionError when the name is resolved, never silently
// accepted.
func (r *Resolver) RegisterType(name string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// HasType reports whether name is present in the type table.
func (r *Resolver) HasType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]

	return ok
}

// Registry returns the group registry this resolver consults.
func (r *Resolver) Registry() *GroupRegistry { return r.registry }

// Resolve turns a step reference into a Step.
func (r *Resolver) Resolve(ref any) (Step, error) {
	switch v := ref.(type) {
	case nil:
		return nil, newResolutionError(ref, "reference is nil")
	case Step:
		return v, nil
	case func(ctx context.Context, payload any, next Next) (any, error):
		return StepFunc(v), nil
	case string:
		return r.resolveName(v)
	default:
		return nil, newResolutionError(ref, "unsupported reference kind %T", ref)
	}
}

func (r *Resolver) resolveName(name string) (Step, error) {
	// Group names shadow type names on purpose: a group is a deliberate,
	// registry-scoped definition.
	if r.registry != nil && r.registry.Has(name) {
		return Group(name, r.registry), nil
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, newResolutionError(name, "no group or step type registered under this name")
	}

	instance := factory()
	step, ok := instance.(Step)
	if !ok {
		return nil, newResolutionError(name, "registered type %T does not implement Handle", instance)
	}

	return Named(name, step), nil
}

// stepLabel derives the short human-readable identifier used for tracing.
func stepLabel(ref any, step Step) string {
	if labeled, ok := step.(Labeled); ok {
		return labeled.Label()
	}

	if name, ok := ref.(string); ok {
		return name
	}

	if _, ok := step.(StepFunc); ok {
		return "func"
	}

	return fmt.Sprintf("%T", step)
}
