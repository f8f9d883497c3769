package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
)

// Options tunes the breaker and retry policy for one dependency.
type Options struct {
	Name string

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration

	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// Permanent classifies errors that should not be retried. Business
	// rejections (out of stock, over limit) land here so the caller sees
	// them on the first attempt.
	Permanent func(error) bool
}

// Executor runs operations behind a circuit breaker with retries.
type Executor struct {
	breaker *gobreaker.CircuitBreaker
	opts    Options
}

// New builds an Executor with sane defaults for unset options.
func New(opts Options) *Executor {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 100 * time.Millisecond
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.ConsecutiveFailures
		},
	})

	return &Executor{breaker: breaker, opts: opts}
}

// Do runs op behind the breaker, retrying transient failures with
// exponential backoff. Permanent errors and context cancellation are
// returned immediately.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(e.opts.MaxRetries, retry.NewExponential(e.opts.BaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := e.breaker.Execute(func() (interface{}, error) {
			return nil, op(ctx)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return retry.RetryableError(err)
		}
		if e.opts.Permanent != nil && e.opts.Permanent(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// State exposes the breaker state for health reporting.
func (e *Executor) State() gobreaker.State {
	return e.breaker.State()
}
