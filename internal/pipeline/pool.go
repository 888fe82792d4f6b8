package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/metrics"
)

// PoolSize bounds a batch phase's parallelism by the worker cap, the CPU
// count and the number of items.
func PoolSize(items int) int {
	size := config.MaxWorkerCount
	if n := runtime.NumCPU(); n < size {
		size = n
	}
	if items < size {
		size = items
	}
	if size < 1 {
		size = 1
	}
	return size
}

type indexed[T any] struct {
	i    int
	item T
}

// RunBatch fans items out over a fixed worker pool and returns one result
// per item in input order. fn must not panic; failures belong in the result
// type.
func RunBatch[In any, Out any](ctx context.Context, items []In, workers int, fn func(context.Context, In) Out) []Out {
	results := make([]Out, len(items))
	if len(items) == 0 {
		return results
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan indexed[In])
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				metrics.ActiveWorkers.Inc()
				results[job.i] = fn(ctx, job.item)
				metrics.ActiveWorkers.Dec()
			}
		}()
	}

	for i, item := range items {
		jobs <- indexed[In]{i: i, item: item}
	}
	close(jobs)
	wg.Wait()

	return results
}
