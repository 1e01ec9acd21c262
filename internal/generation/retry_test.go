package generation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep records requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
	err    error
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return r.err
}

func testPolicy(rec *recordingSleep) generation.RetryPolicy {
	return generation.RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second, Sleep: rec.sleep}
}

func callErr(kind generation.Kind, status int) error {
	return &generation.CallError{Kind: kind, StatusCode: status, Err: errors.New("upstream")}
}

func TestRetryPolicySchedule(t *testing.T) {
	p := generation.DefaultRetryPolicy()

	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, p.Schedule())
	assert.Equal(t, 2*time.Second, p.Delay(0))
	assert.Equal(t, 8*time.Second, p.Delay(2))
}

func TestRetryRecoversFromRateLimit(t *testing.T) {
	rec := &recordingSleep{}
	attempts := 0

	got, err := generation.Retry(context.Background(), testPolicy(rec), func(ctx context.Context, attempt int) (string, error) {
		assert.Equal(t, attempts, attempt)
		attempts++
		if attempts <= 2 {
			return "", callErr(generation.KindRateLimited, 429)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestRetryNeverRetriesAuth(t *testing.T) {
	rec := &recordingSleep{}
	attempts := 0

	_, err := generation.Retry(context.Background(), testPolicy(rec), func(ctx context.Context, attempt int) (int, error) {
		attempts++
		return 0, callErr(generation.KindAuth, 403)
	})

	assert.ErrorIs(t, err, generation.ErrAuth)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.delays)
}

func TestRetryNeverRetriesUnclassified(t *testing.T) {
	rec := &recordingSleep{}
	cause := errors.New("bad request")
	attempts := 0

	_, err := generation.Retry(context.Background(), testPolicy(rec), func(ctx context.Context, attempt int) (int, error) {
		attempts++
		return 0, cause
	})

	assert.Same(t, cause, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhaustsBudget(t *testing.T) {
	rec := &recordingSleep{}
	attempts := 0

	_, err := generation.Retry(context.Background(), testPolicy(rec), func(ctx context.Context, attempt int) (int, error) {
		attempts++
		return 0, callErr(generation.KindUnavailable, 503)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrTransient)
	assert.NotErrorIs(t, err, generation.ErrQuota)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, rec.delays)
}

func TestRetryZeroBudget(t *testing.T) {
	rec := &recordingSleep{}
	attempts := 0
	policy := generation.RetryPolicy{MaxRetries: 0, BaseDelay: time.Second, Sleep: rec.sleep}

	_, err := generation.Retry(context.Background(), policy, func(ctx context.Context, attempt int) (int, error) {
		attempts++
		return 0, callErr(generation.KindRateLimited, 429)
	})

	assert.ErrorIs(t, err, generation.ErrQuota)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.delays)
}

func TestRetryStopsWhenSleepIsCancelled(t *testing.T) {
	rec := &recordingSleep{err: context.Canceled}
	attempts := 0

	_, err := generation.Retry(context.Background(), testPolicy(rec), func(ctx context.Context, attempt int) (int, error) {
		attempts++
		return 0, callErr(generation.KindRateLimited, 429)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	_, err := generation.Retry(ctx, generation.DefaultRetryPolicy(), func(ctx context.Context, attempt int) (int, error) {
		called = true
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := generation.Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, generation.Sleep(context.Background(), time.Millisecond))
}
