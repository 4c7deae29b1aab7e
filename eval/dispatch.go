// Package eval runs judge requests over datasets of RAG answers.
package eval

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/ragjudge"
	"go.uber.org/zap"
)

// Dispatch defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseWait    = time.Second
	DefaultRetryAfter  = 60 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Dispatcher sends judge requests, retrying failures that may succeed on
// a later attempt. Rate-limited attempts wait for the server's Retry-After
// without advancing the exponential backoff; other failures wait
// baseWait, 2*baseWait, 4*baseWait and so on. Authentication and
// configuration errors are returned immediately.
type Dispatcher struct {
	judge             ragjudge.Judge
	maxAttempts       int
	baseWait          time.Duration
	defaultRetryAfter time.Duration
	sleep             SleepFunc
	logger            *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxAttempts sets how many times a request is tried.
func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithBaseWait sets the first backoff wait.
func WithBaseWait(wait time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.baseWait = wait
	}
}

// WithDefaultRetryAfter sets the wait used when a rate-limited response
// carries no Retry-After value.
func WithDefaultRetryAfter(wait time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.defaultRetryAfter = wait
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(fn SleepFunc) DispatcherOption {
	return func(d *Dispatcher) {
		d.sleep = fn
	}
}

// WithLogger sets the logger for failed attempts.
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher for judge.
func NewDispatcher(judge ragjudge.Judge, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		judge:             judge,
		maxAttempts:       DefaultMaxAttempts,
		baseWait:          DefaultBaseWait,
		defaultRetryAfter: DefaultRetryAfter,
		sleep:             sleepContext,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends req and returns the judge's reply. When every attempt
// fails it returns a *ragjudge.RequestError wrapping the last failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req ragjudge.JudgeRequest) (string, error) {
	var lastErr error
	backoff := d.baseWait

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		reply, err := d.judge.Judge(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if ragjudge.IsFatal(err) {
			d.logger.Error("judge request rejected",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if attempt == d.maxAttempts {
			break
		}

		var wait time.Duration
		var rateErr *ragjudge.RateLimitError
		if errors.As(err, &rateErr) {
			wait = rateErr.RetryAfter
			if wait <= 0 {
				wait = d.defaultRetryAfter
			}
			d.logger.Warn("judge rate limited",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", d.maxAttempts),
				zap.Duration("retry_after", wait),
				zap.Error(err))
		} else {
			wait = backoff
			backoff *= 2
			d.logger.Warn("judge request failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", d.maxAttempts),
				zap.Duration("wait", wait),
				zap.Error(err))
		}

		if err := d.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	d.logger.Error("judge request failed after all attempts",
		zap.Int("max_attempts", d.maxAttempts),
		zap.Error(lastErr))
	return "", &ragjudge.RequestError{Attempts: d.maxAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
