package definition_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

func loadFlow(t *testing.T, doc string) *definition.Flow {
	t.Helper()

	flow, err := definition.Load(strings.NewReader(doc))
	require.NoError(t, err)

	return flow
}

func testResolver(t *testing.T) *flowpipe.Resolver {
	t.Helper()

	reg := flowpipe.NewGroupRegistry()
	resolver := reg.Resolver()
	resolver.RegisterType("known", func() any { return flowpipe.Identity() })

	return resolver
}

func TestValidateCleanFlow(t *testing.T) {
	t.Parallel()

	flow := loadFlow(t, `
flow: clean
groups:
  g:
    - known
steps:
  - known
  - group: g
`)

	result := definition.Validate(flow, definition.WithResolver(testResolver(t)))
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors())
	assert.Empty(t, result.Warnings())
	assert.Equal(t, "clean", result.Name())
}

func TestValidateStructuralErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		doc  string
		want string
	}{
		"missing name": {
			doc:  "steps:\n  - known\n",
			want: "flow name is missing",
		},
		"no steps": {
			doc:  "flow: f\n",
			want: "flow has no steps",
		},
		"unknown step": {
			doc:  "flow: f\nsteps:\n  - mystery\n",
			want: "no step type or group registered",
		},
		"unknown group": {
			doc:  "flow: f\nsteps:\n  - group: ghost\n",
			want: "unknown group",
		},
		"unknown operator": {
			doc:  "flow: f\nsteps:\n  - condition: { operator: matches, value: x }\n    then: [known]\n",
			want: "unknown operator",
		},
		"empty nested": {
			doc:  "flow: f\nsteps:\n  - nested: []\n",
			want: "nested step has no steps",
		},
		"condition without branches": {
			doc:  "flow: f\nsteps:\n  - condition: { operator: truthy }\n",
			want: "neither a then nor an else branch",
		},
		"bad retry": {
			doc:  "flow: f\nsteps:\n  - retry: { max_attempts: 0 }\n",
			want: "max_attempts must be at least 1",
		},
		"bad rate limit": {
			doc:  "flow: f\nsteps:\n  - rate_limit: { per_second: 0 }\n",
			want: "per_second must be greater than 0",
		},
		"bad cache": {
			doc:  "flow: f\nsteps:\n  - cache: { key: k }\n",
			want: "ttl must be greater than 0",
		},
		"bad batch": {
			doc:  "flow: f\nsteps:\n  - batch: { size: 0 }\n",
			want: "size must be at least 1",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flow := loadFlow(t, tc.doc)
			result := definition.Validate(flow, definition.WithResolver(testResolver(t)))
			require.False(t, result.IsValid())
			assert.Contains(t, strings.Join(result.Errors(), "\n"), tc.want)
		})
	}
}

func TestValidateUnknownTransform(t *testing.T) {
	t.Parallel()

	flow := loadFlow(t, "flow: f\nsteps:\n  - transform: mystery\n")
	result := definition.Validate(flow, definition.WithTransformNames("uppercase"))
	require.False(t, result.IsValid())
	assert.Contains(t, result.Errors()[0], `unknown transform "mystery"`)
}

func TestValidateGroupCycle(t *testing.T) {
	t.Parallel()

	flow := loadFlow(t, `
flow: cyclic
groups:
  a:
    - group: b
  b:
    - group: a
steps:
  - group: a
`)

	result := definition.Validate(flow)
	require.False(t, result.IsValid())
	assert.Contains(t, strings.Join(result.Errors(), "\n"), "reference cycle")
}

func TestValidateWarnings(t *testing.T) {
	t.Parallel()

	flow := loadFlow(t, `
flow: warny
groups:
  empty_one: []
  known:
    - identity
steps:
  - group: empty_one
`)

	reg := flowpipe.NewGroupRegistry()
	resolver := reg.Resolver()
	resolver.RegisterType("known", func() any { return flowpipe.Identity() })
	resolver.RegisterType("identity", func() any { return flowpipe.Identity() })

	result := definition.Validate(flow, definition.WithResolver(resolver))
	assert.True(t, result.IsValid())

	joined := strings.Join(result.Warnings(), "\n")
	assert.Contains(t, joined, `group "empty_one" is empty`)
	assert.Contains(t, joined, `group "known" shadows a registered step type`)
}

func TestValidateUnreachableBranch(t *testing.T) {
	t.Parallel()

	flow := loadFlow(t, `
flow: constant
send: "BE"
steps:
  - condition: { operator: equals, value: "BE" }
    then: [known]
    else: [known]
`)

	result := definition.Validate(flow, definition.WithResolver(testResolver(t)))
	assert.True(t, result.IsValid())
	assert.Contains(t, strings.Join(result.Warnings(), "\n"), "else branch is unreachable")
}

func TestValidationResultImmutable(t *testing.T) {
	t.Parallel()

	errs := []string{"bad"}
	result := definition.NewValidationResult("f", errs, nil)
	errs[0] = "mutated"

	assert.Equal(t, []string{"bad"}, result.Errors())
	got := result.Errors()
	got[0] = "mutated again"
	assert.Equal(t, []string{"bad"}, result.Errors())
	assert.False(t, result.IsValid())
}
