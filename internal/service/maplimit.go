package service

import (
	"context"

	"github.com/cloo-solutions/askd/internal/domain"
	"golang.org/x/sync/errgroup"
)

// MapLimit runs worker over every item with at most limit invocations in
// flight at once. Results land at the item's original index regardless of
// completion order. The first worker error fails the whole call; workers
// already started may finish in the background but their results are
// discarded.
func MapLimit[T, R any](ctx context.Context, items []T, limit int, worker func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if limit < 1 {
		return nil, domain.ErrInvalidConcurrencyLimit
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := worker(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
