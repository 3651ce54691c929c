package flowpipe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

type doublerStep struct{}

func (doublerStep) Handle(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
	n, _ := payload.(int)

	return next(ctx, n*2)
}

type notAStep struct{}

func TestResolverAcceptsStepUnchanged(t *testing.T) {
	t.Parallel()

	resolver := flowpipe.NewResolver()
	original := upperStep(t)

	step, err := resolver.Resolve(original)
	require.NoError(t, err)
	assert.Equal(t, original, step)
}

func TestResolverAcceptsFunction(t *testing.T) {
	t.Parallel()

	resolver := flowpipe.NewResolver()
	step, err := resolver.Resolve(func(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
		return next(ctx, payload)
	})
	require.NoError(t, err)
	require.NotNil(t, step)

	got, err := step.Handle(context.Background(), "v", func(ctx context.Context, payload any) (any, error) {
		return payload, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestResolverRegisteredType(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	resolver := reg.Resolver()
	resolver.RegisterType("doubler", func() any { return doublerStep{} })

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through("doubler"))

	got, err := pipe.Send(21).ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestResolverGroupNameWinsOverType(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	resolver := reg.Resolver()
	resolver.RegisterType("shared", func() any { return doublerStep{} })
	require.NoError(t, reg.Register("shared", upperStep(t)))

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through("shared"))

	got, err := pipe.Send("name").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NAME", got)
}

func TestResolverFailures(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	resolver := reg.Resolver()
	resolver.RegisterType("broken", func() any { return notAStep{} })

	tcs := map[string]struct {
		ref any
	}{
		"unknown name":      {ref: "missing"},
		"wrong capability":  {ref: "broken"},
		"nil reference":     {ref: nil},
		"unsupported value": {ref: map[string]string{}},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := resolver.Resolve(tc.ref)
			require.Error(t, err)

			var resErr *flowpipe.ResolutionError
			assert.ErrorAs(t, err, &resErr)
		})
	}
}
