package box

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Future holds the eventual outcome of a callback-style operation.
type Future struct {
	done chan struct{}
	once sync.Once
	body json.RawMessage
	err  error
}

// NewFuture returns a Future and the Callback that completes it.
// Only the first invocation of the Callback is recorded.
func NewFuture() (*Future, Callback) {
	f := &Future{done: make(chan struct{})}
	return f, f.complete
}

func (f *Future) complete(err error, body json.RawMessage) {
	f.once.Do(func() {
		f.err = err
		f.body = body
		close(f.done)
	})
}

// Done is closed once the operation has completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation completes or ctx is done.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.body, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await starts an operation through issue and waits for its callback.
func Await(ctx context.Context, issue func(cb Callback)) (json.RawMessage, error) {
	f, cb := NewFuture()
	issue(cb)
	return f.Wait(ctx)
}

// Decode unmarshals a response body into a new T. An empty body, as returned
// by deletions, yields nil without error.
func Decode[T any](body json.RawMessage) (*T, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &v, nil
}
