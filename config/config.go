// Package config reads crawler tuning from IMMOCRAWL_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/fwojciec/immocrawl"
	"github.com/fwojciec/immocrawl/crawl"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "IMMOCRAWL_"

// Config holds crawler tuning. Command-line flags override these values.
type Config struct {
	// UserAgent sent by the HTTP and browser fetchers.
	UserAgent string `env:"USER_AGENT"`

	// Proxies is a comma-separated list of proxy URLs used in rotation.
	Proxies []string `env:"PROXIES" envSeparator:","`

	// Timeout bounds a single request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"20s"`

	Concurrency int `env:"CONCURRENCY" envDefault:"5"`
	MaxPages    int `env:"MAX_PAGES" envDefault:"100"`

	PageAttempts   int             `env:"PAGE_ATTEMPTS" envDefault:"3"`
	PageBackoff    []time.Duration `env:"PAGE_BACKOFF" envDefault:"1s,2s"`
	DetailAttempts int             `env:"DETAIL_ATTEMPTS" envDefault:"1"`
	DetailBackoff  []time.Duration `env:"DETAIL_BACKOFF" envDefault:"1s"`

	// RequestsPerSecond paces requests per host. Zero disables pacing.
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	Burst             int     `env:"BURST" envDefault:"1"`
}

// Load reads envFile (or ./.env when envFile is empty and the file exists)
// into the process environment, then parses the configuration from it.
// Variables already set in the environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, immocrawl.Errorf(immocrawl.EINVALID, "load env file %s: %v", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, immocrawl.Errorf(immocrawl.EINVALID, "load .env: %v", err)
	}
	return parse(env.Options{Prefix: Prefix})
}

// LoadEnv parses the configuration from the given variables instead of the
// process environment. Names carry the IMMOCRAWL_ prefix.
func LoadEnv(environment map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, immocrawl.Errorf(immocrawl.EINVALID, "config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid value as EINVALID.
func (c *Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return immocrawl.Errorf(immocrawl.EINVALID, "timeout must be positive")
	case c.Concurrency < 1:
		return immocrawl.Errorf(immocrawl.EINVALID, "concurrency must be at least 1")
	case c.MaxPages < 1:
		return immocrawl.Errorf(immocrawl.EINVALID, "max pages must be at least 1")
	case c.PageAttempts < 1 || c.DetailAttempts < 1:
		return immocrawl.Errorf(immocrawl.EINVALID, "retry attempts must be at least 1")
	case c.RequestsPerSecond < 0:
		return immocrawl.Errorf(immocrawl.EINVALID, "requests per second must not be negative")
	}
	if _, err := c.ProxyURLs(); err != nil {
		return err
	}
	return nil
}

// ProxyURLs parses Proxies. Returns EINVALID for a proxy that is not an
// absolute URL.
func (c *Config) ProxyURLs() ([]*url.URL, error) {
	var proxies []*url.URL
	for _, p := range c.Proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, immocrawl.Errorf(immocrawl.EINVALID, "invalid proxy %q", p)
		}
		proxies = append(proxies, u)
	}
	return proxies, nil
}

// PageRetry returns the retry policy for search pages.
func (c *Config) PageRetry() crawl.RetryPolicy {
	return crawl.RetryPolicy{MaxAttempts: c.PageAttempts, Delays: c.PageBackoff}
}

// DetailRetry returns the retry policy for detail pages.
func (c *Config) DetailRetry() crawl.RetryPolicy {
	return crawl.RetryPolicy{MaxAttempts: c.DetailAttempts, Delays: c.DetailBackoff}
}
