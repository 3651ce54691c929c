package flowpipe_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

func upperStep(t *testing.T) flowpipe.Step {
	t.Helper()

	return flowpipe.Named("uppercase", flowpipe.Transform(func(ctx context.Context, payload any) (any, error) {
		return strings.ToUpper(fmt.Sprint(payload)), nil
	}))
}

func appendStep(t *testing.T, suffix string) flowpipe.Step {
	t.Helper()

	return flowpipe.Named("append", flowpipe.Transform(func(ctx context.Context, payload any) (any, error) {
		return fmt.Sprint(payload) + suffix, nil
	}))
}

func shortCircuitStep(t *testing.T, result any) flowpipe.Step {
	t.Helper()

	return flowpipe.Named("short-circuit", flowpipe.StepFunc(func(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
		return result, nil
	}))
}

func recordStep(t *testing.T, name string, calls *[]string) flowpipe.Step {
	t.Helper()

	return flowpipe.Named(name, flowpipe.StepFunc(func(ctx context.Context, payload any, next flowpipe.Next) (any, error) {
		*calls = append(*calls, name)

		return next(ctx, payload)
	}))
}
