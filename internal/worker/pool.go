package worker

import (
	"context"
	"sync"
)

// Pool runs indexed tasks with a bounded number of workers. Results are
// correlated back to their input index by the task itself, not discovered
// via completion order.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool's concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes fn(ctx, i) for every i in [0, n). The first task error
// cancels the remaining tasks and is returned. Tasks write their output into
// their own pre-allocated slot; Run itself holds no results.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indices := make(chan int)
	errCh := make(chan error, 1)

	workers := p.workers
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := fn(ctx, i); err != nil {
					select {
					case errCh <- err:
						cancel() // Stop feeding remaining tasks
					default:
					}
					return
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
	}
	return ctx.Err()
}
