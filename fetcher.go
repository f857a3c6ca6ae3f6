package immocrawl

import (
	"context"
	"fmt"
	"net/http"
)

// Fetcher retrieves page bodies from URLs.
// Implementations own their connection and proxy pools and must be safe for
// concurrent use by multiple goroutines.
type Fetcher interface {
	// Fetch performs a GET request and returns the decoded body.
	// Transport failures are returned as *FetchError.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases pooled resources.
	Close() error
}

// FetchReason classifies a transport failure.
type FetchReason string

// Transport failure reasons.
const (
	ReasonTimeout   FetchReason = "timeout"
	ReasonHTTPError FetchReason = "http_error"
	ReasonNetwork   FetchReason = "network_error"
)

// FetchError is returned by Fetcher implementations when a request fails.
type FetchError struct {
	URL        string
	Reason     FetchReason
	StatusCode int // set when Reason is ReasonHTTPError
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Reason == ReasonHTTPError {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the request may succeed.
// Client errors other than 408 and 429 are permanent.
func (e *FetchError) Temporary() bool {
	if e.Reason != ReasonHTTPError {
		return true
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}

// HostLimiter paces requests per host.
type HostLimiter interface {
	// Wait blocks until a request to host is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
