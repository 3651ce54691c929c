package flowpipe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

func TestGroupRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("format", upperStep(t), appendStep(t, "!")))

	assert.True(t, reg.Has("format"))
	assert.Len(t, reg.Get("format"), 2)
	assert.Len(t, reg.All(), 1)
}

func TestGroupRegistryUnknownNameIsEmpty(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	assert.False(t, reg.Has("missing"))
	assert.Empty(t, reg.Get("missing"))
}

func TestGroupRegistryOverwriteSignalsHook(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()

	var replaced []string
	reg.OnReplace(func(name string) {
		replaced = append(replaced, name)
	})

	require.NoError(t, reg.Register("g", upperStep(t)))
	require.NoError(t, reg.Register("g", appendStep(t, "!")))

	assert.Equal(t, []string{"g"}, replaced)
	assert.Len(t, reg.Get("g"), 1)
}

func TestGroupRegistryClear(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("g", upperStep(t)))
	reg.Clear()

	assert.False(t, reg.Has("g"))
	assert.Empty(t, reg.All())
}

func TestGroupStepRunsSequence(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("format", upperStep(t), appendStep(t, "!")))

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through("format", appendStep(t, "?")))

	got, err := pipe.Send("hey").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HEY!?", got)
}

func TestGroupResolutionIdempotent(t *testing.T) {
	t.Parallel()

	// Resolving the same group twice must yield step-for-step identical
	// behaviour for identical input.
	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("format", upperStep(t), appendStep(t, "!")))

	for i := 0; i < 2; i++ {
		pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
		require.NoError(t, err)
		require.NoError(t, pipe.Through("format"))

		got, err := pipe.Send("same input").ThenReturn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "SAME INPUT!", got)
	}
}

func TestGroupStepMissingGroup(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	step := flowpipe.Group("ghost", reg)

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through(step))

	_, err = pipe.Send("x").ThenReturn(context.Background())
	require.Error(t, err)

	var notFound *flowpipe.GroupNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestGroupStepEmptyGroupIsIdentity(t *testing.T) {
	t.Parallel()

	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("empty"))

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through("empty", appendStep(t, "!")))

	got, err := pipe.Send("pass").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pass!", got)
}

func TestGroupInternalShortCircuitStaysLocal(t *testing.T) {
	t.Parallel()

	var calls []string
	reg := flowpipe.NewGroupRegistry()
	require.NoError(t, reg.Register("stopper", shortCircuitStep(t, "held")))

	pipe, err := flowpipe.New(flowpipe.WithRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, pipe.Through("stopper", recordStep(t, "after-group", &calls)))

	got, err := pipe.Send("x").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "held", got)
	assert.Equal(t, []string{"after-group"}, calls)
}
