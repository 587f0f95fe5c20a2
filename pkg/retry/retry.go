// Package retry wraps a single fallible provider call with bounded,
// classification-aware retries and exponential backoff.
package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gleanhq/glean/internal/logger"
	"github.com/gleanhq/glean/pkg/fault"
)

// Policy bounds the retry loop. MaxAttempts counts the first attempt,
// so MaxAttempts=3 means at most two retries. MaxElapsed bounds total
// wall-clock time (attempt time plus backoff) regardless of the
// remaining attempt budget.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	MaxElapsed     time.Duration
	JitterFraction float64
}

// DefaultPolicy returns the engine defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       30 * time.Second,
		MaxElapsed:     2 * time.Minute,
		JitterFraction: 0.25,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = d.MaxElapsed
	}
	if p.JitterFraction < 0 || p.JitterFraction > 1 {
		p.JitterFraction = d.JitterFraction
	}
	return p
}

// backoffDelay returns the base delay before attempt n+1, without jitter.
// It doubles per attempt and is monotonically non-decreasing.
func (p Policy) backoffDelay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// jitter returns a random addition in [0, JitterFraction*delay).
func (p Policy) jitter(delay time.Duration) time.Duration {
	if p.JitterFraction <= 0 || delay <= 0 {
		return 0
	}
	span := int64(float64(delay) * p.JitterFraction)
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(span))
}

// Stats records what the controller actually did, for the caller's
// performance sample.
type Stats struct {
	Attempts int
	Backoff  time.Duration
	Elapsed  time.Duration
}

// Do runs op until it succeeds, fails permanently, or the attempt or
// time budget is exhausted. op receives the 1-based attempt number.
// Only errors classified retryable (see fault.IsRetryable) are retried;
// everything else propagates on first occurrence. The terminal error is
// annotated with the attempt at which it occurred.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, Stats, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	start := time.Now()
	stats := Stats{}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		stats.Attempts = attempt

		result, err := op(ctx, attempt)
		if err == nil {
			stats.Elapsed = time.Since(start)
			return result, stats, nil
		}
		lastErr = err

		if !fault.IsRetryable(err) {
			logger.Debug("retry: permanent failure", "attempt", attempt, "error", err)
			break
		}
		if attempt == p.MaxAttempts {
			logger.Debug("retry: attempts exhausted", "attempts", attempt, "error", err)
			break
		}
		if ctx.Err() != nil {
			break
		}

		delay := p.backoffDelay(attempt) + p.jitter(p.backoffDelay(attempt))
		if elapsed := time.Since(start); elapsed+delay > p.MaxElapsed {
			logger.Debug("retry: time budget exhausted",
				"attempt", attempt, "elapsed", elapsed, "next_delay", delay)
			break
		}

		logger.Debug("retry: backing off", "attempt", attempt, "delay", delay, "error", err)
		if !sleep(ctx, delay) {
			break
		}
		stats.Backoff += delay
	}

	stats.Elapsed = time.Since(start)
	return zero, stats, fault.WithAttempt(lastErr, stats.Attempts)
}

// sleep waits for d or until ctx is cancelled; reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
