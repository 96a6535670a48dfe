package client

import (
	"context"
	"time"
)

// RetryPolicy controls how failed batch attempts are repeated.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt, so
	// a batch is attempted at most MaxRetries+1 times.
	MaxRetries int
	// Delay is the wait before the first retry; every further retry
	// doubles it.
	Delay time.Duration
	// OnRetry is called before each retry with the upcoming attempt
	// number (2-based) and the error that caused it.
	OnRetry func(attempt int, err error)

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the CLI defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Delay: 2 * time.Second}
}

func (p RetryPolicy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
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

// Do runs fn up to MaxRetries+1 times, backing off between attempts.
// It stops early on non-retryable errors and context cancellation.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.Delay
	var err error

	for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt > p.MaxRetries {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}
		if werr := p.wait(ctx, delay); werr != nil {
			return werr
		}
		delay *= 2
	}
	return err
}
