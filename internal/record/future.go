package record

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future is a resolve-once execution promise. It is attached to a record
// before being awaited so that every concurrent request for the same module
// identity joins the same in-flight execution.
type Future struct {
	done    chan struct{}
	once    sync.Once
	settled atomic.Bool
	value   any
	err     error
}

// NewFuture returns an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future. Second and later calls are ignored.
func (f *Future) Resolve(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		f.settled.Store(true)
		close(f.done)
	})
}

// Await blocks until the future settles or the context is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the future has resolved, successfully or not.
func (f *Future) Settled() bool {
	return f.settled.Load()
}
