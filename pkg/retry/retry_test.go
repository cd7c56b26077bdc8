package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/menu-admin/pkg/retry"
)

var errTemporary = errors.New("temporary")

func TestDo(t *testing.T) {
	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(time.Millisecond),
		}, func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.Config{
			MaxAttempts: 2,
			Backoff:     retry.LinearBackoff(time.Millisecond),
		}, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 2, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.Config{
			MaxAttempts: 5,
			ShouldRetry: func(err error) bool {
				return !errors.Is(err, errTemporary)
			},
		}, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 1, calls)
	})

	t.Run("Permanent", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.Config{MaxAttempts: 5}, func() error {
			calls++
			return retry.Permanent(errTemporary)
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.True(t, retry.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := retry.Do(ctx, retry.Config{}, func() error {
			t.Fatal("must not be called")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		err := retry.Do(ctx, retry.Config{
			MaxAttempts: 10,
			Backoff:     retry.LinearBackoff(time.Second),
		}, func() error {
			return errTemporary
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, errTemporary)
	})
}

func TestDoWithResult(t *testing.T) {
	v, err := retry.DoWithResult(t.Context(), retry.Config{}, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestMaxDelay(t *testing.T) {
	start := time.Now()
	var calls int
	err := retry.Do(t.Context(), retry.Config{
		MaxAttempts: 3,
		Backoff:     retry.LinearBackoff(time.Hour),
		MaxDelay:    time.Millisecond,
	}, func() error {
		calls++
		return errTemporary
	})
	assert.ErrorIs(t, err, errTemporary)
	assert.Equal(t, 3, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(10 * time.Millisecond)
	for attempt := 1; attempt <= 4; attempt++ {
		base := time.Duration(1<<attempt) * 10 * time.Millisecond
		d := b(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}
