// Package batch runs one job per input file on a bounded worker pool.
package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Result is the outcome of one job. Results keep the order of the jobs.
type Result[T any] struct {
	Job      T
	Err      error
	Duration time.Duration
}

// Run calls fn for every job using at most workers goroutines. A failing job
// does not stop the others. Jobs not started before ctx is done get ctx.Err().
func Run[T any](ctx context.Context, jobs []T, workers int, fn func(context.Context, T) error) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}
	workers = max(1, min(workers, len(jobs)))

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = run(ctx, jobs[i], fn)
			}
		}()
	}

	for i := range jobs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}

func run[T any](ctx context.Context, job T, fn func(context.Context, T) error) Result[T] {
	r := Result[T]{Job: job}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}
	start := time.Now()
	r.Err = fn(ctx, job)
	r.Duration = time.Since(start)
	return r
}

// Errors combines the errors of all failed results, or returns nil.
func Errors[T any](results []Result[T]) error {
	var err error
	for _, r := range results {
		err = multierr.Append(err, r.Err)
	}
	return err
}

// Failed counts the results that carry an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
