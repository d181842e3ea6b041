package async

import (
	"context"
	"fmt"
)

// Future holds the eventual result of a background operation.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Go runs fn in a new goroutine and returns its Future.
// A panic in fn is recovered and surfaces as the Future's error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("async: panic: %v", r)
			}
		}()
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation finishes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome if complete; ok is false while still running.
func (f *Future[T]) Result() (result T, err error, ok bool) {
	select {
	case <-f.done:
		return f.result, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// WaitAll awaits every future in order and returns their results.
// The first error encountered is returned alongside the results gathered so far.
func WaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	if len(futures) == 0 {
		return nil, ErrNoFutures
	}
	results := make([]T, 0, len(futures))
	for _, f := range futures {
		r, err := f.Await(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
