package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsWithoutRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), DefaultRetryConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 1.5}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("fatal")
	calls := 0
	cfg := RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Retryable:    func(err error) bool { return !errors.Is(err, sentinel) },
	}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}
	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errors.New("always fails")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	ctx := context.Background()
	failing := func(ctx context.Context) error { return errors.New("boom") }

	require.Error(t, cb.Do(ctx, failing))
	require.Error(t, cb.Do(ctx, failing))
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Do(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Millisecond})
	ctx := context.Background()

	require.Error(t, cb.Do(ctx, func(ctx context.Context) error { return errors.New("boom") }))
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, cb.Do(ctx, func(ctx context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}
