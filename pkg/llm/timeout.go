package llm

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("Timeout")

// WithTimeout runs fn and returns whichever comes first: its result or
// ErrTimeout after d. The context handed to fn is cancelled once WithTimeout
// returns, so an abandoned call stops as soon as the SDK notices.
// A non-positive d disables the timer.
func WithTimeout(ctx context.Context, d time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if d <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := fn(callCtx)
		done <- result{text: text, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.text, r.err
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
