package export

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent storage calls per batch.
const DefaultParallelism = 4

// ErrAllItemsFailed is returned when a non-empty batch produced zero
// successful items. Partial failure is reported through the per-item
// results, not through this error.
var ErrAllItemsFailed = errors.New("export: all items failed")

// ItemResult records the outcome for one batch item.
type ItemResult[T any] struct {
	Item T
	Err  error
}

type options struct {
	parallelism int
}

// Option configures a batch run.
type Option func(*options)

// WithParallelism bounds concurrent workers. Non-positive values fall
// back to DefaultParallelism.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// Run applies fn to every item with bounded parallelism. A single
// item's failure never aborts the batch: its error is collected and the
// rest proceed. Context cancellation stops launching new items and
// marks the remainder with the context error.
//
// The returned slice is index-aligned with items. The batch-level error
// is ErrAllItemsFailed only when nothing succeeded, so callers can
// archive what they got and report the rest.
func Run[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error, opts ...Option) ([]ItemResult[T], error) {
	o := &options{parallelism: DefaultParallelism}
	for _, opt := range opts {
		opt(o)
	}

	results := make([]ItemResult[T], len(items))
	if len(items) == 0 {
		return results, nil
	}

	g := &errgroup.Group{}
	g.SetLimit(o.parallelism)

	for i, item := range items {
		results[i].Item = item
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return results, ErrAllItemsFailed
	}
	return results, nil
}

// Failed filters the results down to the items that did not complete.
func Failed[T any](results []ItemResult[T]) []ItemResult[T] {
	var out []ItemResult[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
