package flowpipe

import (
	"sync"

	"github.com/pkg/errors"
)

// GroupRegistry maps names to pre-resolved step sequences. It is read-mostly
// process-wide state: populated once at startup, read by every pipeline run
// that references a group. All access is guarded so concurrent registration
// remains safe.
//
// Registering a name twice overwrites silently (last write wins); attach an
// OnReplace hook to surface re-registrations in tests or tooling. Get on an
// unknown name returns an empty sequence, the same as a legitimately empty
// group; callers that need to tell the two apart must check Has first.
type GroupRegistry struct {
	mu        sync.RWMutex
	groups    map[string][]Step
	onReplace func(name string)
	resolver  *Resolver
}

// NewGroupRegistry creates an empty registry. Steps registered on it are
// resolved through its own resolver, which in turn resolves group references
// against this registry.
func NewGroupRegistry() *GroupRegistry {
	reg := &GroupRegistry{groups: make(map[string][]Step)}
	reg.resolver = NewResolver(WithResolverRegistry(reg))

	return reg
}

var defaultRegistry *GroupRegistry

func init() { defaultRegistry = NewGroupRegistry() }

// DefaultRegistry returns the process-wide registry used when a pipeline or
// resolver is built without an explicit one. Prefer passing a registry
// explicitly; the default exists for ergonomic construction.
func DefaultRegistry() *GroupRegistry { return defaultRegistry }

// Register resolves every ref and stores the resolved sequence under name, so
// later retrieval never re-resolves. A previous registration under the same
// name is silently replaced.
func (r *GroupRegistry) Register(name string, refs ...any) error {
	steps := make([]Step, 0, len(refs))
	for i, ref := range refs {
		step, err := r.resolver.Resolve(ref)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve step %d of group %q", i, name)
		}

		steps = append(steps, step)
	}

	r.mu.Lock()
	_, replaced := r.groups[name]
	r.groups[name] = steps
	hook := r.onReplace
	r.mu.Unlock()

	if replaced && hook != nil {
		hook(name)
	}

	return nil
}

// Get returns the resolved sequence for name, or an empty sequence when the
// name is unknown.
func (r *GroupRegistry) Get(name string) []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.groups[name]
}

// Has reports whether name is registered, even as an empty group.
func (r *GroupRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[name]

	return ok
}

// All returns a copy of the name to sequence mapping.
func (r *GroupRegistry) All() map[string][]Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]Step, len(r.groups))
	for name, steps := range r.groups {
		out[name] = steps
	}

	return out
}

// Clear removes every registration. Intended for tests and tooling.
func (r *GroupRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = make(map[string][]Step)
}

// OnReplace installs a diagnostic hook called with the group name whenever a
// registration overwrites an existing one.
func (r *GroupRegistry) OnReplace(hook func(name string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReplace = hook
}

// Resolver returns the resolver bound to this registry.
func (r *GroupRegistry) Resolver() *Resolver { return r.resolver }
