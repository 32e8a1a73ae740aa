package column

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapReduceChunked partitions [0, length) into numWorkers contiguous
// ranges, runs mapFn over each range concurrently via an errgroup, and
// folds the partial results with reduceFn in range order. This is the
// "optional parallel column operations (map/reduce/filter with chunked
// ranges)" worker pool named in spec §5, generalized from teacher's
// per-group worker-pool pattern (RefreshScheduler uses the same shape
// for models instead of row ranges).
func (c *Column) MapReduceChunked(ctx context.Context, numWorkers int, mapFn func(start, end int) (any, error), reduceFn func(acc, partial any) any) (any, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if c.length == 0 {
		return nil, nil
	}
	if numWorkers > c.length {
		numWorkers = c.length
	}

	chunkSize := (c.length + numWorkers - 1) / numWorkers
	partials := make([]any, numWorkers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		w := w
		start := w * chunkSize
		end := start + chunkSize
		if end > c.length {
			end = c.length
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			partial, err := mapFn(start, end)
			if err != nil {
				return err
			}
			partials[w] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var acc any
	for _, p := range partials {
		if p == nil {
			continue
		}
		acc = reduceFn(acc, p)
	}
	return acc, nil
}
