package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

// IsRetriable reports whether err is a transient broker or network failure.
func IsRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, e := range writeErrs {
			if e != nil && !IsRetriable(e) {
				return false
			}
		}
		return writeErrs.Count() > 0
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// RetryWithBackoff calls fn up to maxRetries times while it fails with a
// retriable error, doubling the wait between attempts.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxRetries int,
	baseDelay time.Duration,
	fn func() (T, error),
) (T, error) {
	var zero T
	if maxRetries <= 0 {
		return zero, fmt.Errorf("maxRetries must be > 0, got %d", maxRetries)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, backoffDelay(attempt-1, baseDelay)); err != nil {
				return zero, err
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case !IsRetriable(err):
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// backoffDelay is base * 2^attempt plus up to one base of jitter.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := time.Duration(math.Pow(2, float64(attempt))) * base
	return delay + time.Duration(rand.Int63n(int64(base))) //nolint:gosec // jitter doesn't need crypto rand
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker opens after threshold consecutive retriable failures and lets
// one probe through once cooldown has elapsed. Permanent errors do not count
// against the circuit.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CircuitState
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateOpen {
		return true
	}
	if time.Since(cb.openedAt) <= cb.cooldown {
		return false
	}
	cb.state = StateHalfOpen
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch {
	case err == nil:
		cb.failures = 0
		cb.state = StateClosed
	case IsRetriable(err):
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
		}
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

// RetryWithCircuitBreaker retries fn with backoff while every attempt passes
// through cb. An open circuit is reported as ErrCircuitOpen and is not retried.
func RetryWithCircuitBreaker[T any](
	ctx context.Context,
	cb *CircuitBreaker,
	maxRetries int,
	baseDelay time.Duration,
	fn func() (T, error),
) (T, error) {
	return RetryWithBackoff(ctx, maxRetries, baseDelay, func() (T, error) {
		var result T
		err := cb.Execute(func() error {
			var callErr error
			result, callErr = fn()
			return callErr
		})
		return result, err
	})
}
