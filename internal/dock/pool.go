package dock

import "context"

// WorkerPool limits concurrent record-store requests across all databases.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a new worker pool with the given size.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 4
	}
	return &WorkerPool{
		sem: make(chan struct{}, size),
	}
}

// Acquire blocks until a worker slot is available.
func (p *WorkerPool) Acquire() {
	p.sem <- struct{}{}
}

// Release returns a worker slot to the pool.
func (p *WorkerPool) Release() {
	<-p.sem
}

// RunContext executes fn with the pool semaphore held, respecting context
// cancellation. Returns ctx.Err() if ctx is cancelled while waiting.
func (p *WorkerPool) RunContext(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
		defer p.Release()
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
