// Package http provides an HTTP-based implementation of immocrawl.Fetcher
// with a rotating proxy pool. It does not execute JavaScript; see package
// rod for sites that require rendering.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/immocrawl"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"

// DefaultMaxBodySize caps the bytes read from one response.
const DefaultMaxBodySize = 16 << 20

// Ensure Fetcher implements immocrawl.Fetcher at compile time.
var _ immocrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
	proxies   []*url.URL
	next      atomic.Uint64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the bytes read from one response.
// Defaults to DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithProxies routes requests through the given proxies in round-robin order.
func WithProxies(proxies ...*url.URL) Option {
	return func(f *Fetcher) {
		f.proxies = append(f.proxies, proxies...)
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if len(f.proxies) > 0 {
		transport.Proxy = f.proxy
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// proxy picks the next proxy of the pool.
func (f *Fetcher) proxy(*http.Request) (*url.URL, error) {
	n := f.next.Add(1) - 1
	return f.proxies[n%uint64(len(f.proxies))], nil
}

// Fetch retrieves the content of url decoded to UTF-8.
// Failures are returned as *immocrawl.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", immocrawl.Errorf(immocrawl.EINVALID, "invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &immocrawl.FetchError{URL: url, Reason: immocrawl.ReasonHTTPError, StatusCode: resp.StatusCode}
	}

	limited := &io.LimitedReader{R: resp.Body, N: f.maxBody + 1}
	r, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &immocrawl.FetchError{URL: url, Reason: immocrawl.ReasonNetwork, Err: err}
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", classify(url, err)
	}
	if limited.N <= 0 {
		return "", &immocrawl.FetchError{URL: url, Reason: immocrawl.ReasonNetwork, Err: fmt.Errorf("response body exceeds %d bytes", f.maxBody)}
	}

	return string(body), nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func classify(url string, err error) error {
	reason := immocrawl.ReasonNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		reason = immocrawl.ReasonTimeout
	}
	return &immocrawl.FetchError{URL: url, Reason: reason, Err: err}
}
