package backoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"ytharvest/internal/services"
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures a retry loop.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	BaseDelay   time.Duration
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
	// Jitter adds up to this fraction of the delay at random (0..1).
	Jitter    float64
	Sleep     Sleeper
	Retryable func(error) bool
	// OnRetry runs before each wait with the 1-based attempt that just failed.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// RetriesExhaustedError reports that every attempt failed transiently.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap exposes both the exhaustion marker and the last underlying failure.
func (e *RetriesExhaustedError) Unwrap() []error {
	return []error{services.ErrRetriesExhausted, e.Last}
}

// Do invokes op until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. Waits grow as BaseDelay × 2^attempt.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := policy.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if !retryable(err) {
			return zero, err
		}
		last = err
		if attempt == attempts-1 {
			break
		}
		delay := policy.Delay(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, &RetriesExhaustedError{Attempts: attempts, Last: last}
}

// Delay returns the wait after the given 0-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	raw := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	delay := time.Duration(math.MaxInt64)
	if raw < math.MaxInt64 {
		delay = time.Duration(raw)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter > 0 {
		extra := time.Duration(rand.Float64() * p.Jitter * float64(delay))
		if delay+extra > delay {
			delay += extra
		}
	}
	return delay
}

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether err is worth retrying: explicit transient
// markers from the remote client plus network-level failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) && !isNetTimeout(err) {
		return false
	}
	if errors.Is(err, services.ErrTransient) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if isNetTimeout(err) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
