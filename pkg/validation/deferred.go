package validation

import (
	"context"
	"sync"
)

// Deferred is a validator result that arrives later. Validators return it
// when they need to wait on I/O; the validator merges its value once resolved.
type Deferred struct {
	once   sync.Once
	done   chan struct{}
	result any
}

// NewDeferred returns an unresolved result.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// Defer runs fn on its own goroutine and resolves with its return value. A
// panic in fn resolves to nil.
func Defer(fn func() any) *Deferred {
	d := NewDeferred()
	go func() {
		var result any
		defer func() {
			if recover() != nil {
				result = nil
			}
			d.Resolve(result)
		}()
		result = fn()
	}()
	return d
}

// Resolve sets the result. Only the first call has an effect.
func (d *Deferred) Resolve(result any) {
	d.once.Do(func() {
		d.result = result
		close(d.done)
	})
}

// Done is closed once the result is available.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the result is available or ctx is done.
func (d *Deferred) Wait(ctx context.Context) (any, error) {
	select {
	case <-d.done:
		return d.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
