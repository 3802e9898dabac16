// Package concurrent runs one pipeline stage over independent units on a
// bounded worker pool and returns the results in input order.
package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fjacquet/moneyview/internal/logging"
)

// DefaultSequentialThreshold is the unit count below which a stage runs
// inline instead of starting workers.
const DefaultSequentialThreshold = 64

// Processor holds the pool settings shared by all stages.
type Processor struct {
	logger      logging.Logger
	workerCount int
	threshold   int
}

// NewProcessor creates a pool. workers <= 0 means one per CPU; threshold < 0
// means DefaultSequentialThreshold.
func NewProcessor(logger logging.Logger, workers, threshold int) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if threshold < 0 {
		threshold = DefaultSequentialThreshold
	}
	return &Processor{
		logger:      logging.OrDefault(logger),
		workerCount: workers,
		threshold:   threshold,
	}
}

// Workers returns the pool size.
func (p *Processor) Workers() int {
	return p.workerCount
}

type indexed[T any] struct {
	index int
	item  T
}

// Map applies fn to every item and returns the results in input order. fn
// must not touch shared mutable state. The stage stops at the first
// cancellation of ctx and returns ctx's error.
func Map[T, R any](ctx context.Context, p *Processor, stage string, items []T, fn func(T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, ctx.Err()
	}

	if len(items) < p.threshold || p.workerCount == 1 {
		for i := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = fn(items[i])
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan indexed[T], p.workerCount)

	g.Go(func() error {
		defer close(jobs)
		for i := range items {
			select {
			case jobs <- indexed[T]{index: i, item: items[i]}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < p.workerCount; w++ {
		g.Go(func() error {
			for job := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				// Each worker writes only its own indices.
				results[job.index] = fn(job.item)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("Concurrent stage completed",
		logging.Field{Key: logging.FieldStage, Value: stage},
		logging.Field{Key: logging.FieldCount, Value: len(items)},
		logging.Field{Key: logging.FieldWorkers, Value: p.workerCount})

	return results, nil
}
