// Package retry provides bounded retries with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int           // total attempts including the first; values below 1 mean 1
	InitialWait time.Duration // wait before the second attempt
	MaxWait     time.Duration // upper bound on a single wait
	Multiplier  float64       // backoff multiplier
	Jitter      float64       // jitter factor (0-1)
}

// DefaultConfig issues a single attempt. Callers opt in to retries by
// raising MaxAttempts.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 1,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// RetryableError marks an error as transient.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string {
	return e.Err.Error()
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps err so that Do tries again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var retryable RetryableError
	return errors.As(err, &retryable)
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned unwrapped from RetryableError.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that produce a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		if !IsRetryable(err) || attempt >= attempts {
			return zero, unwrap(err)
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}
}

// backoff returns the wait after the given (1-based) failed attempt.
func (cfg Config) backoff(attempt int) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(cfg.InitialWait) * math.Pow(mult, float64(attempt-1))
	if cfg.MaxWait > 0 && wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}
	if cfg.Jitter > 0 {
		wait += wait * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	if wait < 0 {
		return 0
	}
	return time.Duration(wait)
}

func unwrap(err error) error {
	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.Err
	}
	return err
}
