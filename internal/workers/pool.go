package workers

import (
	"context"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
)

// DefaultMaxWorkers is used when a pool is created with a non-positive size
const DefaultMaxWorkers = 4

// WorkerPool bounds the number of concurrently running workers
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorkerPool creates a new worker pool with the specified maximum workers
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Size returns the maximum number of concurrent workers
func (wp *WorkerPool) Size() int {
	return wp.maxWorkers
}

// Acquire acquires a worker slot, blocking if all workers are busy
func (wp *WorkerPool) Acquire(ctx context.Context) error {
	select {
	case wp.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a worker slot, allowing another worker to proceed
func (wp *WorkerPool) Release() {
	<-wp.semaphore
}

// ParallelProcess runs processFn for every item on at most maxWorkers
// goroutines. Results keep the order of items. The first error (by
// completion) is returned and the results are discarded.
func ParallelProcess[T any, R any](
	ctx context.Context,
	maxWorkers int,
	items []T,
	log logger.Logger,
	processFn func(context.Context, int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	wp := NewWorkerPool(maxWorkers)
	results := make([]R, len(items))

	type result struct {
		index int
		value R
		err   error
	}
	resultChan := make(chan result, len(items))

	spawned := 0
	var spawnErr error
	for i, item := range items {
		if err := wp.Acquire(ctx); err != nil {
			// Context cancelled, stop spawning new workers
			spawnErr = err
			break
		}
		spawned++

		go func(idx int, itm T) {
			defer wp.Release()

			select {
			case <-ctx.Done():
				var zero R
				resultChan <- result{index: idx, value: zero, err: ctx.Err()}
				return
			default:
			}

			val, err := processFn(ctx, idx, itm)
			resultChan <- result{index: idx, value: val, err: err}
		}(i, item)
	}

	var firstError error
	for range spawned {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = res.err
		}
		results[res.index] = res.value
	}

	if firstError == nil {
		firstError = spawnErr
	}
	if firstError != nil {
		log.Debug("Parallel processing stopped after %d of %d items: %v", spawned, len(items), firstError)
		return nil, firstError
	}

	return results, nil
}
