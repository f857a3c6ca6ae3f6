package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/immocrawl"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryFunc is called before each retry with the attempt number about to run.
type RetryFunc func(url string, attempt int, err error)

// RetryPolicy bounds how often a failed fetch is attempted.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int

	// Delays is the wait before each retry. The last delay repeats when
	// there are more retries than delays.
	Delays []time.Duration
}

// DefaultPageRetry returns the policy for search-result pages:
// 3 attempts with 1s and 2s backoff.
func DefaultPageRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delays:      []time.Duration{1 * time.Second, 2 * time.Second},
	}
}

// DefaultDetailRetry returns the policy for detail pages: a single attempt.
func DefaultDetailRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// ExponentialBackoff returns n delays starting at base and doubling each time.
func ExponentialBackoff(base time.Duration, n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	d := base
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// Fetch calls fetch until it succeeds, the attempts are exhausted, the error
// is permanent, or the context is canceled. The last error is returned.
func (p RetryPolicy) Fetch(ctx context.Context, url string, fetch FetchFunc, onRetry RetryFunc) (string, error) {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == attempts || ctx.Err() != nil || !retryable(err) {
			break
		}

		if onRetry != nil {
			onRetry(url, attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.delay(attempt - 1)):
		}
	}

	return "", lastErr
}

func (p RetryPolicy) delay(i int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	return p.Delays[min(i, len(p.Delays)-1)]
}

// retryable reports whether err may go away on a later attempt.
// Errors that are not *immocrawl.FetchError are assumed transient.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var fe *immocrawl.FetchError
	if errors.As(err, &fe) {
		return fe.Temporary()
	}
	return true
}
