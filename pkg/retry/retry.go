// Package retry runs startup probes against brokers and databases until
// they answer.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultDelay = 100 * time.Millisecond

type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

type Config struct {
	MaxAttempts int
	Backoff     Backoff
	// MaxDelay caps a single wait, zero means no cap.
	MaxDelay    time.Duration
	ShouldRetry ShouldRetry
}

func (c *Config) normalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff(defaultDelay)
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = notPermanent
	}
}

func (c *Config) wait(attempt int) time.Duration {
	d := c.Backoff(attempt)
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }

func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so that the default policy stops retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

func notPermanent(err error) bool {
	return !IsPermanent(err)
}

// ExponentialBackoff doubles the delay on every attempt and adds up to
// half of it as jitter.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := (1 << attempt) * delay
		half := int64(base / 2)
		if half <= 0 {
			return base
		}
		return base + time.Duration(rand.Int64N(half)+1)
	}
}

func LinearBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, c Config, fn func() error) error {
	_, err := DoWithResult(ctx, c, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func DoWithResult[T any](
	ctx context.Context, c Config, fn func() (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.normalize()
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var err error
	for attempt := 1; ; attempt++ {
		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if attempt == c.MaxAttempts || !c.ShouldRetry(err) {
			return zero, err
		}

		timer.Reset(c.wait(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
