package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// Parallel runs fns concurrently and returns their results in order. The
// typed context values current on the caller are attached in every
// goroutine. The first error cancels the context passed to the others.
//
//	echoes, err := Parallel(ctx,
//	    func(ctx context.Context) (*domain.Echo, error) { return primary.Echo(ctx) },
//	    func(ctx context.Context) (*domain.Echo, error) { return replica.Echo(ctx) },
//	)
func Parallel[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	return ParallelLimit(ctx, -1, fns...)
}

// ParallelLimit is Parallel with at most limit functions running at once.
// A negative limit means no bound.
func ParallelLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	snapshot := typedctx.CaptureAll()
	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			var err error

			snapshot.Run(func() { results[i], err = fn(ctx) })

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parallel execution failed: %w", err)
	}

	return results, nil
}
