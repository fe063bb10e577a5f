package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async operation timed out")
	// ErrNoFutures is returned when WaitAny is called with no futures.
	ErrNoFutures = errors.New("no futures provided")
)

// Future represents the result of an asynchronous computation.
type Future[T any] struct {
	value T
	err   error
	once  sync.Once
	done  chan struct{}
}

// Await waits for the asynchronous function to complete and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout elapses first it returns ErrTimeout; the underlying work keeps
// running and a later Await still yields its result.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn on a new goroutine and returns a Future for its result.
// If ctx is already cancelled the future completes immediately with the
// context's error, without invoking fn.
func Async[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		value, err := fn(ctx, param)

		// Use sync.Once to prevent race conditions on multiple goroutine completions
		f.once.Do(func() {
			f.value = value
			f.err = err
		})
	}()

	return f
}

// WaitAll waits for all futures to complete and returns their results in
// order. The first error encountered is returned alongside the partial slice.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	results := make([]T, 0, len(futures))
	for _, future := range futures {
		value, err := future.Await()
		if err != nil {
			return results, err
		}
		results = append(results, value)
	}
	return results, nil
}

// WaitAny waits for any future to complete and returns its index, value and error.
// Note: this spawns one goroutine per future; all of them finish naturally
// once their futures complete.
func WaitAny[T any](futures ...*Future[T]) (int, T, error) {
	var zero T
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	type completion struct {
		index int
		value T
		err   error
	}
	done := make(chan completion)

	for i, future := range futures {
		go func(index int, f *Future[T]) {
			value, err := f.Await()
			select {
			case done <- completion{index, value, err}:
			default:
				// Prevents blocking when multiple futures complete simultaneously
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}
