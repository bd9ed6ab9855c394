// Package fetch provides the remote-fetch primitive the views use to load
// server data: one call per invocation, wholesale replacement of data, and
// suppression of superseded or post-teardown results.
package fetch

import (
	"context"
	"sync"
)

// State is the observable triple of a Resource.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Result is produced by a completed call. Apply it to the owning Resource.
type Result[T any] struct {
	Key  string
	gen  uint64
	data T
	err  error
}

// Resource tracks one remotely loaded value.
//
// Start registers a new call and returns the function that performs it; the
// caller decides where the function runs (a goroutine, a tea.Cmd). Apply
// records the outcome only if the call is still current.
type Resource[T any] struct {
	mu     sync.Mutex
	parent context.Context
	stop   context.CancelFunc
	state  State[T]
	key    string
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// New returns a Resource whose calls are bound to parent. initial is the
// value of Data until the first successful call.
func New[T any](parent context.Context, initial T) *Resource[T] {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := context.WithCancel(parent)
	return &Resource[T]{parent: ctx, stop: stop, state: State[T]{Data: initial}}
}

// State returns the current triple.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Key returns the key (usually the URL) of the latest call.
func (r *Resource[T]) Key() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// Start supersedes any in-flight call, marks the resource loading, and
// returns the function performing fn. The returned function blocks.
// After Close, Start returns nil.
func (r *Resource[T]) Start(key string, fn func(ctx context.Context) (T, error)) func() Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel
	r.key = key
	r.state.Loading = true
	r.state.Err = nil

	return func() Result[T] {
		defer cancel()
		data, err := fn(ctx)
		return Result[T]{Key: key, gen: gen, data: data, err: err}
	}
}

// StartIfChanged is Start, but only when key differs from the latest call.
func (r *Resource[T]) StartIfChanged(key string, fn func(ctx context.Context) (T, error)) func() Result[T] {
	r.mu.Lock()
	same := r.gen > 0 && r.key == key
	r.mu.Unlock()
	if same {
		return nil
	}
	return r.Start(key, fn)
}

// Apply records res if it belongs to the latest call and the resource is
// still open. It reports whether the state changed.
func (r *Resource[T]) Apply(res Result[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || res.gen != r.gen {
		return false
	}
	r.state.Loading = false
	r.cancel = nil
	if res.err != nil {
		r.state.Err = res.err
		return true
	}
	r.state.Data = res.data
	r.state.Err = nil
	return true
}

// Load runs a call synchronously and applies its result.
func (r *Resource[T]) Load(key string, fn func(ctx context.Context) (T, error)) State[T] {
	if run := r.Start(key, fn); run != nil {
		r.Apply(run())
	}
	return r.State()
}

// Close cancels the in-flight call; later results are dropped.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.state.Loading = false
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.stop()
}
