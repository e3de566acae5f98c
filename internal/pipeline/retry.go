package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxAttempts is the default number of model calls per inference, first
// attempt included.
const MaxAttempts = 3

// ErrInferenceUnavailable means no attempt produced a result and none
// reported an error either.
var ErrInferenceUnavailable = errors.New("inference unavailable")

// ExhaustedError wraps the last failure once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("inference failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// RetryOutcome is the result of one bounded inference call.
type RetryOutcome[T any] struct {
	Value     T
	Attempts  int
	Err       error
	Succeeded bool
}

// Result converts the outcome into a value and the terminal error, if any.
func (o RetryOutcome[T]) Result() (T, error) {
	if o.Succeeded {
		return o.Value, nil
	}
	var zero T
	if o.Err == nil {
		return zero, ErrInferenceUnavailable
	}
	if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
		return zero, o.Err
	}
	return zero, &ExhaustedError{Attempts: o.Attempts, Err: o.Err}
}

// retry calls fn sequentially until it succeeds or maxAttempts calls have
// failed. onFailure sees every failed attempt (1-indexed). A cancelled ctx
// ends the loop early with ctx's error recorded.
func retry[T any](ctx context.Context, maxAttempts int, delay time.Duration, fn func(context.Context) (T, error), onFailure func(attempt int, err error)) RetryOutcome[T] {
	var out RetryOutcome[T]
	for out.Attempts < maxAttempts {
		v, err := fn(ctx)
		out.Attempts++
		if err == nil {
			out.Value = v
			out.Err = nil
			out.Succeeded = true
			return out
		}
		out.Err = err
		if onFailure != nil {
			onFailure(out.Attempts, err)
		}
		if ctx.Err() != nil {
			out.Err = ctx.Err()
			return out
		}
		if delay > 0 && out.Attempts < maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				out.Err = ctx.Err()
				return out
			}
		}
	}
	return out
}
