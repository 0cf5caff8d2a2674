package pipeline

import (
	"context"
	"runtime"
	"sync"
)

type Task[T, R any] func(ctx context.Context, item T) (R, error)

type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Ordered runs task over items on a fixed pool of workers and returns one
// Result per processed item, in input order. Once ctx is done no further
// items are dispatched; results of the items already processed are returned
// together with ctx.Err().
func Ordered[T, R any](ctx context.Context, items []T, workers int, task Task[T, R]) ([]Result[R], error) {
	if len(items) == 0 || task == nil {
		return nil, ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[R], len(items))
	processed := make([]bool, len(items))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := task(ctx, items[i])
				results[i] = Result[R]{Index: i, Value: v, Err: err}
				processed[i] = true
			}
		}()
	}

feed:
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]Result[R], 0, len(items))
	for i := range results {
		if processed[i] {
			out = append(out, results[i])
		}
	}
	return out, ctx.Err()
}
