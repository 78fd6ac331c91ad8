package retry

import (
	"context"
	"errors"
	"time"
)

// ErrBudgetExhausted wraps the final error once a policy runs out of attempts.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// Policy describes a fixed-interval retry budget.
type Policy struct {
	// MaxAttempts is the total number of operation invocations allowed.
	MaxAttempts int
	// Interval is the fixed delay between attempts.
	Interval time.Duration
	// Retryable reports whether an error should consume another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Do invokes op until it succeeds, the error is not retryable, the budget is
// exhausted, or the context ends. The last operation error is returned,
// wrapped with ErrBudgetExhausted when attempts ran out.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := Sleep(ctx, p.Interval); err != nil {
			return err
		}
	}
	return errors.Join(ErrBudgetExhausted, lastErr)
}

// Exhausted reports whether err came from running out of attempts rather
// than from a non-retryable failure.
func Exhausted(err error) bool {
	return errors.Is(err, ErrBudgetExhausted)
}

// Sleep waits for the duration unless the context ends first.
func Sleep(ctx context.Context, d time.Duration) error {
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
