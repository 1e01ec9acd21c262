package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/questup-api/internal/platform/logger"
)

// Default retry settings for endpoint calls.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-timer SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryPolicy retries transient endpoint failures with exponential backoff.
// The delay before retry n (0-based) is BaseDelay * 2^n.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// Sleep waits between attempts. Nil means the real-timer Sleep.
	Sleep SleepFunc
}

// DefaultRetryPolicy returns the policy used when nothing is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Sleep:      Sleep,
	}
}

// Delay returns the backoff before retry n (0-based).
func (p RetryPolicy) Delay(n int) time.Duration {
	return p.BaseDelay * time.Duration(1<<n)
}

// Schedule returns every backoff delay the policy may wait, in order.
func (p RetryPolicy) Schedule() []time.Duration {
	schedule := make([]time.Duration, 0, p.MaxRetries)
	for n := 0; n < p.MaxRetries; n++ {
		schedule = append(schedule, p.Delay(n))
	}
	return schedule
}

// Retry runs call until it succeeds, fails with a non-transient error, or the
// retry budget is exhausted. Attempts never overlap: attempt n+1 starts only
// after attempt n's failure has been classified and the backoff has elapsed.
// Cancelling ctx stops both the backoff and any further attempts.
func Retry[T any](
	ctx context.Context,
	p RetryPolicy,
	call func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	log := logger.FromContext(ctx)

	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := call(ctx, attempt)
		if err == nil {
			if attempt > 0 {
				log.InfoContext(ctx, "endpoint call succeeded after retries", slog.Int("retries", attempt))
			}
			return result, nil
		}

		kind := KindOf(err)
		if !kind.Transient() {
			log.DebugContext(ctx, "endpoint call failed with non-retryable error",
				slog.Int("attempt", attempt+1),
				slog.String("kind", kind.String()))
			return zero, err
		}

		if attempt >= maxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", maxRetries),
				slog.String("kind", kind.String()))
			return zero, fmt.Errorf("retry budget of %d exhausted: %w", maxRetries, err)
		}

		delay := p.Delay(attempt)
		log.WarnContext(ctx, "transient endpoint error, retrying",
			slog.Int("attempt", attempt+1),
			slog.String("kind", kind.String()),
			slog.Duration("delay", delay))

		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry abandoned after attempt %d: %w", attempt+1, err)
		}
	}
}
