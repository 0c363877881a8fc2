package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestWithTimeoutReturnsResult(t *testing.T) {
	text, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "done", nil
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, "done", text)
}

func TestWithTimeoutPropagatesError(t *testing.T) {
	want := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "", want
	})

	assert.Equal(t, want, err)
}

func TestWithTimeoutExpires(t *testing.T) {
	cancelled := make(chan struct{})

	start := time.Now()
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	})

	assert.Equal(t, ErrTimeout, err)
	assert.Equal(t, "Timeout", err.Error())
	assert.Equal(t, true, time.Since(start) < time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("call context was not cancelled after timeout")
	}
}

func TestWithTimeoutDisabled(t *testing.T) {
	text, err := WithTimeout(context.Background(), 0, func(ctx context.Context) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "slow but fine", nil
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, "slow but fine", text)
}
