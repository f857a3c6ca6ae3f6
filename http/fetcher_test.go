package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/immocrawl"
	immohttp "github.com/fwojciec/immocrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>Appartement à vendre</body></html>"))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Appartement à vendre</body></html>", html)
	})

	t.Run("decodes latin-1 bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>Cr\xe9teil</p>"))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>Créteil</p>", html)
	})

	t.Run("rejects bodies over the size cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher(immohttp.WithMaxBodySize(1024))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)

		var fe *immocrawl.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, immocrawl.ReasonNetwork, fe.Reason)
	})

	t.Run("accepts a body exactly at the size cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(strings.Repeat("a", 1024)))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher(immohttp.WithMaxBodySize(1024))
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, html, 1024)
	})

	t.Run("sends configured user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.UserAgent()
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher(immohttp.WithUserAgent("immocrawl-test/1.0"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "immocrawl-test/1.0", got)
	})

	t.Run("returns HTTP error with status code", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)

		var fe *immocrawl.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, immocrawl.ReasonHTTPError, fe.Reason)
		assert.Equal(t, http.StatusForbidden, fe.StatusCode)
		assert.False(t, fe.Temporary())
	})

	t.Run("classifies client timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher(immohttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)

		var fe *immocrawl.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, immocrawl.ReasonTimeout, fe.Reason)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := immohttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns network error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := immohttp.NewFetcher(immohttp.WithTimeout(time.Second))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")

		var fe *immocrawl.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "http://non-existent-host.invalid/page", fe.URL)
		assert.True(t, fe.Temporary())
	})

	t.Run("rotates through proxies", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		hits := map[string]int{}
		newProxy := func(name string) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				mu.Lock()
				hits[name]++
				mu.Unlock()
				_, _ = w.Write([]byte("via " + name))
			}))
		}
		p1, p2 := newProxy("p1"), newProxy("p2")
		defer p1.Close()
		defer p2.Close()

		u1, err := url.Parse(p1.URL)
		require.NoError(t, err)
		u2, err := url.Parse(p2.URL)
		require.NoError(t, err)

		fetcher := immohttp.NewFetcher(immohttp.WithProxies(u1, u2))
		defer fetcher.Close()

		for range 4 {
			_, err := fetcher.Fetch(context.Background(), "http://www.example.fr/recherche")
			require.NoError(t, err)
		}

		assert.Equal(t, map[string]int{"p1": 2, "p2": 2}, hits)
	})
}
