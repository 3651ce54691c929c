package flowpipe_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe/tracing"
)

func TestPipelineDeclaredOrder(t *testing.T) {
	t.Parallel()

	pipe, err := flowpipe.New()
	require.NoError(t, err)

	err = pipe.Through(upperStep(t), appendStep(t, " WORLD"))
	require.NoError(t, err)

	got, err := pipe.Send("hello").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", got)
}

func TestPipelineTraceSequence(t *testing.T) {
	t.Parallel()

	recorder := tracing.NewTest()
	pipe, err := flowpipe.New(flowpipe.WithTracer(recorder))
	require.NoError(t, err)

	err = pipe.Through(upperStep(t), appendStep(t, "!"), appendStep(t, "?"))
	require.NoError(t, err)

	_, err = pipe.Send("hey").ThenReturn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, recorder.Count())
	assert.Equal(t, []string{"uppercase", "append", "append"}, recorder.Steps())
	assert.Equal(t, "hey", recorder.First().Before)
	assert.Equal(t, "HEY", recorder.First().After)
	assert.Equal(t, "HEY!?", recorder.Last().After)
}

func TestPipelineSendOverwrites(t *testing.T) {
	t.Parallel()

	pipe, err := flowpipe.New()
	require.NoError(t, err)

	err = pipe.Through(upperStep(t))
	require.NoError(t, err)

	got, err := pipe.Send("first").Send("second").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SECOND", got)
}

func TestPipelineThroughOverwrites(t *testing.T) {
	t.Parallel()

	pipe, err := flowpipe.New()
	require.NoError(t, err)

	require.NoError(t, pipe.Through(upperStep(t), appendStep(t, "!")))
	require.NoError(t, pipe.Through(appendStep(t, "?")))

	got, err := pipe.Send("hello").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello?", got)
}

func TestPipelineRerun(t *testing.T) {
	t.Parallel()

	pipe, err := flowpipe.New()
	require.NoError(t, err)
	require.NoError(t, pipe.Through(upperStep(t)))

	got, err := pipe.Send("one").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ONE", got)

	got, err = pipe.Send("two").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TWO", got)
}

func TestPipelineResolutionFailsEarly(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		ref any
	}{
		"unknown name": {ref: "no_such_step"},
		"nil":          {ref: nil},
		"wrong kind":   {ref: 42},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe, err := flowpipe.New()
			require.NoError(t, err)

			err = pipe.Through(tc.ref)
			require.Error(t, err)

			var resErr *flowpipe.ResolutionError
			assert.True(t, errors.As(err, &resErr))
		})
	}
}

func TestPipelineShortCircuit(t *testing.T) {
	t.Parallel()

	var calls []string
	pipe, err := flowpipe.New()
	require.NoError(t, err)

	err = pipe.Through(
		recordStep(t, "first", &calls),
		shortCircuitStep(t, "stopped"),
		recordStep(t, "never", &calls),
	)
	require.NoError(t, err)

	got, err := pipe.Send("x").ThenReturn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stopped", got)
	assert.Equal(t, []string{"first"}, calls)
}

func TestPipelineStepErrorCarriesLabel(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	pipe, err := flowpipe.New()
	require.NoError(t, err)

	err = pipe.Through(
		upperStep(t),
		flowpipe.Named("exploder", flowpipe.StepFunc(func(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
			return nil, boom
		})),
	)
	require.NoError(t, err)

	_, err = pipe.Send("in").ThenReturn(context.Background())
	require.Error(t, err)

	var stepErr *flowpipe.StepExecutionError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "exploder", stepErr.Label)
	assert.True(t, errors.Is(err, boom))
}

func TestPipelineFlowContext(t *testing.T) {
	t.Parallel()

	pipe, err := flowpipe.New(flowpipe.WithName("orders"))
	require.NoError(t, err)

	err = pipe.Through(flowpipe.Tap(func(ctx context.Context, payload any) error {
		fc := flowpipe.ContextFrom(ctx)
		require.NotNil(t, fc)
		fc.SetTag("seen", "yes")
		fc.SetMeta("payload", payload)

		return nil
	}))
	require.NoError(t, err)

	_, err = pipe.Send("p").ThenReturn(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, pipe.FlowContext().ID())

	tag, ok := pipe.FlowContext().Tag("seen")
	require.True(t, ok)
	assert.Equal(t, "yes", tag)

	name, ok := pipe.FlowContext().Tag("flow")
	require.True(t, ok)
	assert.Equal(t, "orders", name)

	meta, ok := pipe.FlowContext().Meta("payload")
	require.True(t, ok)
	assert.Equal(t, "p", meta)
}
