// Package resilience provides small, dependency-free helpers for
// retrying and circuit-breaking calls to external collaborators (the
// LLM provider, the graph store) from call sites that need bounded
// backoff rather than node-level retry policies.
//
// It generalizes the teacher repo's Node-bound RetryNode/CircuitBreaker
// helpers to plain functions, since the pipeline's nodes are not
// graph.Node values but independent Go functions calling llmprovider
// and graphrepo.
package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures exponential backoff retry for a single call.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Retryable decides whether a failed attempt should be retried.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// DefaultRetryConfig returns sane defaults for an LLM or graph call.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Do runs fn, retrying on failure with exponential backoff and jitter
// until cfg.MaxAttempts is exhausted, the context is cancelled, or fn
// returns a non-retryable error.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}

		if attempt == maxAttempts-1 {
			break
		}

		wait := jitter(delay)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		next := time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
			next = cfg.MaxDelay
		}
		delay = next
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", maxAttempts, lastErr)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	//nolint:gosec // jitter does not need a cryptographic RNG
	factor := 0.75 + rand.Float64()*0.5
	return time.Duration(math.Max(float64(d)*factor, 0))
}

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// CircuitBreaker trips after FailureThreshold consecutive failures and
// refuses calls until OpenTimeout elapses, then allows a half-open
// probe before fully closing again. Intended to guard the graph
// driver's connection pool and the LLM client's HTTP transport.
type CircuitBreaker struct {
	cfg             CircuitBreakerConfig
	state           CircuitState
	failures        int
	successes       int
	lastFailureTime time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed}
}

// ErrCircuitOpen is returned when the breaker refuses a call.
var ErrCircuitOpen = fmt.Errorf("circuit breaker open")

// Do runs fn if the breaker permits it, recording the outcome.
func (cb *CircuitBreaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if cb.state == CircuitOpen {
		if time.Since(cb.lastFailureTime) < cb.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
		cb.successes = 0
	}

	err := fn(ctx)
	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailureTime = time.Now()
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = CircuitOpen
		}
		return err
	}

	cb.failures = 0
	cb.successes++
	if cb.state == CircuitHalfOpen && cb.successes >= cb.cfg.SuccessThreshold {
		cb.state = CircuitClosed
	}
	return nil
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() CircuitState {
	return cb.state
}
