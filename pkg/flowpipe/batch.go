package flowpipe

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
)

type batchStep struct {
	size    int
	handler func(ctx context.Context, batch []any) ([]any, error)
}

func (s *batchStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	items, err := sliceItems(payload)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(items))
	for start := 0; start < len(items); start += s.size {
		end := start + s.size
		if end > len(items) {
			end = len(items)
		}

		processed, err := s.handler(ctx, items[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "unable to process batch starting at element %d", start)
		}

		out = append(out, processed...)
	}

	// The combined result crosses into the continuation exactly once.
	return next(ctx, out)
}

func (s *batchStep) Label() string { return "batch" }

// Batch splits a slice payload into chunks of at most size elements, runs
// handler once per chunk in order, concatenates the chunk outputs and forwards
// the combined slice to the continuation. A payload of 5 elements with size 2
// yields chunks of 2, 2 and 1.
func Batch(size int, handler func(ctx context.Context, batch []any) ([]any, error)) (Step, error) {
	if size < 1 {
		return nil, ErrBatchSize
	}

	if handler == nil {
		return nil, ErrStepMustBeSet
	}

	return &batchStep{size: size, handler: handler}, nil
}

// sliceItems normalises any slice or array payload into []any.
func sliceItems(payload any) ([]any, error) {
	if items, ok := payload.([]any); ok {
		return items, nil
	}

	v := reflect.ValueOf(payload)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return nil, errors.Wrapf(ErrBatchPayload, "got %T", payload)
	}

	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}

	return items, nil
}
