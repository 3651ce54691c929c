package definition

import (
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/internal/store"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// ValidationResult is the outcome of linting one flow definition. It is
// immutable once constructed.
type ValidationResult struct {
	name     string
	errors   []string
	warnings []string
}

// NewValidationResult builds a result from copies of the given findings.
func NewValidationResult(name string, errs, warns []string) ValidationResult {
	return ValidationResult{
		name:     name,
		errors:   append([]string(nil), errs...),
		warnings: append([]string(nil), warns...),
	}
}

// Name returns the flow name the result belongs to.
func (r ValidationResult) Name() string { return r.name }

// Errors returns a copy of the error findings.
func (r ValidationResult) Errors() []string { return append([]string(nil), r.errors...) }

// Warnings returns a copy of the warning findings.
func (r ValidationResult) Warnings() []string { return append([]string(nil), r.warnings...) }

// IsValid reports whether the definition has no error-level findings.
func (r ValidationResult) IsValid() bool { return len(r.errors) == 0 }

// ValidateOption configures a validation run.
type ValidateOption func(*validator)

// WithResolver lets the validator check step and group names against what is
// actually registered. Without it, name checks are skipped.
func WithResolver(resolver *flowpipe.Resolver) ValidateOption {
	return func(v *validator) {
		v.resolver = resolver
	}
}

// WithTransformNames lets the validator check transform references against
// the builder's transform table.
func WithTransformNames(names ...string) ValidateOption {
	return func(v *validator) {
		v.transforms = make(map[string]struct{}, len(names))
		for _, name := range names {
			v.transforms[name] = struct{}{}
		}
	}
}

type validator struct {
	flow       *Flow
	resolver   *flowpipe.Resolver
	transforms map[string]struct{}
	errs       []string
	warns      []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warns = append(v.warns, fmt.Sprintf(format, args...))
}

// Validate lints a flow definition and returns every finding at once rather
// than stopping at the first problem.
func Validate(flow *Flow, opts ...ValidateOption) ValidationResult {
	v := &validator{flow: flow}
	for _, opt := range opts {
		opt(v)
	}

	if flow.Name == "" {
		v.errorf("flow name is missing")
	}

	if len(flow.Steps) == 0 {
		v.errorf("flow has no steps")
	}

	v.checkGroups()
	v.checkGroupCycles()
	for i, def := range flow.Steps {
		v.checkStep(fmt.Sprintf("steps[%d]", i), def)
	}

	return NewValidationResult(flow.Name, v.errs, v.warns)
}

func (v *validator) checkGroups() {
	for _, name := range v.flow.Groups.Duplicates() {
		v.warnf("group %q is defined more than once, the last definition wins", name)
	}

	for _, name := range v.flow.Groups.Order {
		steps := v.flow.Groups.Defs[name]
		if len(steps) == 0 {
			v.warnf("group %q is empty and will act as identity", name)
		}

		if v.resolver != nil && v.resolver.HasType(name) {
			v.warnf("group %q shadows a registered step type of the same name", name)
		}

		for i, def := range steps {
			v.checkStep(fmt.Sprintf("groups.%s[%d]", name, i), def)
		}
	}
}

// checkGroupCycles builds a directed graph of flow-local group references and
// reports every edge that would close a cycle.
func (v *validator) checkGroupCycles() {
	g := graph.NewWithStore(graph.StringHash, store.NewMemoryStore[string, string](), graph.Directed(), graph.PreventCycles())

	for _, name := range v.flow.Groups.Order {
		// AddVertex only fails on duplicates here, which Order excludes.
		_ = g.AddVertex(name)
	}

	for _, name := range v.flow.Groups.Order {
		for _, target := range v.groupRefs(v.flow.Groups.Defs[name]) {
			if _, ok := v.flow.Groups.Defs[target]; !ok {
				continue
			}

			err := g.AddEdge(name, target)
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				v.errorf("group %q references group %q, closing a reference cycle", name, target)
			}
		}
	}
}

// groupRefs collects the names of flow-local groups referenced by defs,
// including bare step names that happen to name a group.
func (v *validator) groupRefs(defs []StepDef) []string {
	var refs []string
	for _, def := range defs {
		if def.Group != "" {
			refs = append(refs, def.Group)
		}

		if def.Step != "" {
			if _, ok := v.flow.Groups.Defs[def.Step]; ok {
				refs = append(refs, def.Step)
			}
		}

		refs = append(refs, v.groupRefs(def.Nested)...)
		refs = append(refs, v.groupRefs(def.Then)...)
		refs = append(refs, v.groupRefs(def.Else)...)
		if def.Batch != nil {
			refs = append(refs, v.groupRefs(def.Batch.Steps)...)
		}
	}

	return refs
}

func (v *validator) checkStep(path string, def StepDef) {
	kind, err := def.Kind()
	if err != nil {
		v.errorf("%s: %v", path, err)

		return
	}

	switch kind {
	case KindStep:
		v.checkName(path, def.Step)
	case KindGroup:
		v.checkGroupRef(path, def.Group)
	case KindNested:
		if len(def.Nested) == 0 {
			v.errorf("%s: nested step has no steps", path)
		}
		for i, child := range def.Nested {
			v.checkStep(fmt.Sprintf("%s.nested[%d]", path, i), child)
		}
	case KindCondition:
		v.checkCondition(path, def)
	case KindTransform:
		if v.transforms != nil {
			if _, ok := v.transforms[def.Transform]; !ok {
				v.errorf("%s: unknown transform %q", path, def.Transform)
			}
		}
	case KindRetry:
		if def.Retry.MaxAttempts < 1 {
			v.errorf("%s: retry max_attempts must be at least 1", path)
		}
		if def.Retry.Delay < 0 {
			v.errorf("%s: retry delay must not be negative", path)
		}
	case KindRateLimit:
		if def.RateLimit.PerSecond <= 0 {
			v.errorf("%s: rate_limit per_second must be greater than 0", path)
		}
	case KindCache:
		if def.Cache.TTL <= 0 {
			v.errorf("%s: cache ttl must be greater than 0", path)
		}
	case KindBatch:
		if def.Batch.Size < 1 {
			v.errorf("%s: batch size must be at least 1", path)
		}
		for i, child := range def.Batch.Steps {
			v.checkStep(fmt.Sprintf("%s.batch[%d]", path, i), child)
		}
	}
}

func (v *validator) checkName(path, name string) {
	if _, ok := v.flow.Groups.Defs[name]; ok {
		return
	}

	if v.resolver == nil {
		return
	}

	if v.resolver.HasType(name) || v.resolver.Registry().Has(name) {
		return
	}

	v.errorf("%s: no step type or group registered under %q", path, name)
}

func (v *validator) checkGroupRef(path, name string) {
	if _, ok := v.flow.Groups.Defs[name]; ok {
		return
	}

	if v.resolver != nil && v.resolver.Registry().Has(name) {
		return
	}

	if v.resolver != nil {
		v.errorf("%s: unknown group %q", path, name)
	}
}

func (v *validator) checkCondition(path string, def StepDef) {
	cond := def.Condition
	if !KnownOperator(cond.Operator) {
		v.errorf("%s: unknown operator %q", path, cond.Operator)
	}

	if len(def.Then) == 0 && len(def.Else) == 0 {
		v.errorf("%s: condition has neither a then nor an else branch", path)
	}

	for i, child := range def.Then {
		v.checkStep(fmt.Sprintf("%s.then[%d]", path, i), child)
	}
	for i, child := range def.Else {
		v.checkStep(fmt.Sprintf("%s.else[%d]", path, i), child)
	}

	v.checkConstantBranches(path, def)
}

// checkConstantBranches warns when the first step's condition compares the
// flow's own constant send payload and one branch therefore can never run.
// Deeper conditions see payloads shaped by earlier steps and are not checked.
func (v *validator) checkConstantBranches(path string, def StepDef) {
	if path != "steps[0]" {
		return
	}

	cond := def.Condition
	if cond.Field != "" || v.flow.Send == nil {
		return
	}

	if cond.Operator != "equals" && cond.Operator != "not_equals" {
		return
	}

	switch v.flow.Send.(type) {
	case map[string]any, []any:
		return
	}

	if cond.evaluate(v.flow.Send) {
		if len(def.Else) > 0 {
			v.warnf("%s: condition is always true for the configured payload, else branch is unreachable", path)
		}
	} else if len(def.Then) > 0 {
		v.warnf("%s: condition is always false for the configured payload, then branch is unreachable", path)
	}
}
