package retry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrExhausted is wrapped into the error returned when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds a retry loop. Delay grows by Backoff after each failed attempt
// (Backoff <= 1 keeps it fixed).
type Policy struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
}

// DefaultPolicy matches the cleanup behaviour: three tries, 100ms apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 1}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do runs fn until it succeeds, returns a permanent error, or the policy runs
// out of attempts. A not-exist error counts as success: the resource is
// already gone.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempt, lastErr)
		case <-timer.C:
		}

		if p.Backoff > 1 {
			delay = time.Duration(float64(delay) * p.Backoff)
		}
	}

	return fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempts, lastErr)
}
