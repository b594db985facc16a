package encoder

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool runs codec work on background goroutines, at most a fixed number
// at a time.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool with the given number of workers. Zero or
// fewer means runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

type result struct {
	data []byte
	err  error
}

// Encode waits for a free worker and encodes samples with codec.
//
// If ctx ends first Encode returns ctx.Err(); an encode already running
// finishes in the background and releases its worker.
func (p *Pool) Encode(ctx context.Context, codec Codec, samples Samples) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	done := make(chan result, 1)
	go func() {
		defer p.sem.Release(1)
		data, err := codec.Encode(samples)
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
