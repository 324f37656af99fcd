// Package worker bounds how many pipeline invocations run at once so
// request goroutines cannot oversubscribe the CPU with decode and
// transform work.
package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool dispatches CPU-bound jobs with a fixed concurrency limit.
// Invocations are independent: each job owns its input and output, so
// no coordination beyond the slot count is needed.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool with the given number of slots. A size below 1
// defaults to GOMAXPROCS.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn once a slot is free and returns its result. Waiting for a
// slot and waiting for the result are both cancellable through ctx; a
// job abandoned by cancellation finishes in the background and its
// result is discarded, which is safe because jobs have no side effects.
func (p *Pool) Do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer p.sem.Release(1)
		data, err := fn()
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.data, r.err
	}
}
