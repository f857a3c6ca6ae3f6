// Package crawl walks a paginated search feed, optionally enriches each
// listing from its detail page and reconciles the result against the
// listing ids of the previous run.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/immocrawl"
	"github.com/fwojciec/immocrawl/bloom"
	"github.com/google/uuid"
)

// Defaults applied when the corresponding Crawler field is not set.
const (
	DefaultConcurrency = 5
	DefaultMaxPages    = 100
)

// Crawler orchestrates one crawl run.
type Crawler struct {
	Fetcher  immocrawl.Fetcher
	Listings immocrawl.ListingPageParser
	Details  immocrawl.DetailPageParser
	Limiter  immocrawl.HostLimiter
	Logger   *slog.Logger

	// Concurrency bounds in-flight detail fetches.
	Concurrency int

	// MaxPages bounds the number of search pages fetched.
	MaxPages int

	// MaxResults stops the crawl once this many unique listings were
	// collected. Zero means unlimited.
	MaxResults int

	PageRetry   RetryPolicy
	DetailRetry RetryPolicy

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Progress ProgressFunc
}

// Request describes one crawl run.
type Request struct {
	StartURL string
	Mode     immocrawl.Mode

	// Previous is the state saved by the last run, nil on the first run.
	Previous *immocrawl.RunState
}

// Result holds the outcome of a crawl run. A Result is returned even when
// pages or detail fetches failed.
type Result struct {
	Listings []*immocrawl.Listing
	Delta    immocrawl.Delta
	Summary  immocrawl.Summary

	// State is what the next run should receive as Request.Previous.
	State *immocrawl.RunState
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type     ProgressType
	Page     int
	URL      string
	Listings int
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressPage ProgressType = iota
	ProgressPageFailed
	ProgressDetailFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// run is the state of one crawl, owned by the coordinating goroutine.
type run struct {
	listings []*immocrawl.Listing
	index    map[string]int
	current  immocrawl.IDSet
	summary  immocrawl.Summary

	paginationStopped bool
}

// Run crawls req.StartURL. Only an invalid request returns an error;
// fetch and parse failures are recorded in the Summary and the listings
// collected so far are kept.
func (c *Crawler) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validateStartURL(req.StartURL); err != nil {
		return nil, err
	}
	mode, err := immocrawl.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	logger := c.logger()
	now := c.now()

	r := &run{
		index:   make(map[string]int),
		current: immocrawl.NewIDSet(),
		summary: immocrawl.Summary{
			RunID:     uuid.NewString(),
			StartURL:  req.StartURL,
			Mode:      mode,
			StartedAt: now().UTC(),
		},
	}

	logger.Info("crawl started", "run", r.summary.RunID, "url", req.StartURL, "mode", mode)

	var lane *detailLane
	if mode == immocrawl.ModeDeep {
		lane = c.startDetailLane(ctx)
	}

	c.paginate(ctx, req.StartURL, mode, r, lane)

	if lane != nil {
		c.mergeDetails(ctx, r, lane.drain())
	}
	if ctx.Err() != nil {
		r.summary.Interrupted = true
	}

	r.summary.RecordsFound = len(r.listings)
	r.summary.Status = r.status(mode)
	r.summary.FinishedAt = now().UTC()

	ids := make([]string, len(r.listings))
	for i, l := range r.listings {
		ids[i] = l.ID
	}

	result := &Result{
		Listings: r.listings,
		Delta:    immocrawl.CompareIDs(r.current, req.Previous.IDs()),
		Summary:  r.summary,
		State: &immocrawl.RunState{
			PreviousIDs: ids,
			LastRunAt:   r.summary.FinishedAt,
		},
	}

	logger.Info("crawl finished",
		"run", r.summary.RunID,
		"status", r.summary.Status,
		"pages", r.summary.PagesFetched,
		"records", r.summary.RecordsFound,
		"added", len(result.Delta.Added),
		"removed", len(result.Delta.Removed),
		"duration", r.summary.FinishedAt.Sub(r.summary.StartedAt))
	c.progress(ProgressEvent{Type: ProgressFinished, Page: r.summary.PagesFetched, Listings: r.summary.RecordsFound})

	return result, nil
}

// paginate walks the search pages sequentially, handing new listings to the
// detail lane as each page completes.
func (c *Crawler) paginate(ctx context.Context, startURL string, mode immocrawl.Mode, r *run, lane *detailLane) {
	logger := c.logger()
	maxPages := c.maxPages()
	visited := bloom.NewFilter(uint(maxPages), 1e-9)

	pageURL := startURL
	for pageURL != "" {
		if r.summary.PagesFetched+r.summary.PagesFailed >= maxPages {
			r.summary.PageBoundReached = true
			logger.Warn("page bound reached", "max_pages", maxPages, "next", pageURL)
			return
		}
		if ctx.Err() != nil {
			r.summary.Interrupted = true
			r.paginationStopped = true
			return
		}
		visited.Add(pageURL)

		page, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				r.summary.Interrupted = true
				r.paginationStopped = true
				logger.Info("pagination interrupted", "url", pageURL, "error", err)
				return
			}
			r.summary.PagesFailed++
			r.paginationStopped = true
			logger.Error("page failed", "url", pageURL, "error", err)
			c.progress(ProgressEvent{Type: ProgressPageFailed, Page: r.summary.PagesFetched + 1, URL: pageURL, Error: err})
			return
		}
		r.summary.PagesFetched++

		jobs, full := c.accept(r, page, mode)
		if lane != nil && len(jobs) > 0 {
			lane.submit(jobs)
		}

		logger.Debug("page done", "url", pageURL, "cards", len(page.Listings), "skipped", page.Skipped, "records", len(r.listings))
		c.progress(ProgressEvent{Type: ProgressPage, Page: r.summary.PagesFetched, URL: pageURL, Listings: len(r.listings)})

		if full {
			logger.Info("max results reached", "max_results", c.MaxResults)
			return
		}

		next := page.NextURL
		if next != "" && visited.Test(next) {
			logger.Warn("pagination loop detected", "url", pageURL, "next", next)
			return
		}
		pageURL = next
	}
}

// fetchPage fetches and parses one search page using the page retry policy.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) (*immocrawl.ListingPage, error) {
	body, err := c.pageRetry().Fetch(ctx, pageURL, c.fetch, c.logRetry("page"))
	if err != nil {
		return nil, err
	}
	return c.Listings.ParseListingPage(body, pageURL)
}

// accept normalizes the cards of a page and records the new ones. It returns
// the detail jobs for new listings and whether MaxResults was reached.
func (c *Crawler) accept(r *run, page *immocrawl.ListingPage, mode immocrawl.Mode) ([]detailJob, bool) {
	r.summary.SkippedMalformed += page.Skipped

	var jobs []detailJob
	for _, raw := range page.Listings {
		if c.MaxResults > 0 && len(r.listings) >= c.MaxResults {
			return jobs, true
		}

		l, err := immocrawl.Normalize(raw, c.now()())
		if err != nil {
			r.summary.SkippedMalformed++
			c.logger().Debug("card skipped", "url", raw.URL, "error", err)
			continue
		}
		if r.current.Has(l.ID) {
			r.summary.Duplicates++
			continue
		}

		r.current.Add(l.ID)
		r.index[l.ID] = len(r.listings)
		if mode == immocrawl.ModeDeep {
			l.FetchStatus = immocrawl.StatusPartialShallow
			jobs = append(jobs, detailJob{position: len(r.listings), id: l.ID, url: l.URL})
		}
		r.listings = append(r.listings, l)
	}

	return jobs, c.MaxResults > 0 && len(r.listings) >= c.MaxResults
}

// mergeDetails applies detail results to the collected listings. Results
// are applied in listing order so the outcome does not depend on which
// worker finished first.
func (c *Crawler) mergeDetails(ctx context.Context, r *run, results []detailResult) {
	logger := c.logger()
	sortResults(results)

	for _, res := range results {
		pos, ok := r.index[res.id]
		if !ok {
			continue
		}
		l := r.listings[pos]

		if !res.attempted {
			r.summary.Interrupted = true
			continue
		}
		r.summary.DetailAttempted++

		if res.err != nil {
			if ctx.Err() != nil && errors.Is(res.err, ctx.Err()) {
				r.summary.Interrupted = true
				continue
			}
			r.summary.DetailFailed++
			l.FetchStatus = immocrawl.StatusPartialDeepFailed
			logger.Warn("detail failed", "id", l.ID, "url", l.URL, "error", res.err)
			c.progress(ProgressEvent{Type: ProgressDetailFailed, URL: l.URL, Error: res.err})
			continue
		}

		l.Merge(res.detail)
		l.FetchStatus = immocrawl.StatusComplete
		l.ScrapedAt = res.finishedAt.UTC()
	}
}

func (r *run) status(mode immocrawl.Mode) immocrawl.RunStatus {
	if r.paginationStopped {
		return immocrawl.RunPartialPagination
	}
	if mode == immocrawl.ModeDeep {
		for _, l := range r.listings {
			if l.FetchStatus != immocrawl.StatusComplete {
				return immocrawl.RunPartialDeepFetch
			}
		}
	}
	return immocrawl.RunFullSuccess
}

// fetch paces the request for the URL's host, then fetches it.
func (c *Crawler) fetch(ctx context.Context, rawURL string) (string, error) {
	if c.Limiter != nil {
		if u, err := url.Parse(rawURL); err == nil {
			if err := c.Limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
	}
	return c.Fetcher.Fetch(ctx, rawURL)
}

func (c *Crawler) logRetry(kind string) RetryFunc {
	return func(url string, attempt int, err error) {
		c.logger().Warn("retrying fetch", "kind", kind, "url", url, "attempt", attempt, "error", err)
	}
}

func (c *Crawler) progress(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Crawler) now() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

func (c *Crawler) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Crawler) maxPages() int {
	if c.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return c.MaxPages
}

func (c *Crawler) pageRetry() RetryPolicy {
	if c.PageRetry.MaxAttempts <= 0 {
		return DefaultPageRetry()
	}
	return c.PageRetry
}

func (c *Crawler) detailRetry() RetryPolicy {
	if c.DetailRetry.MaxAttempts <= 0 {
		return DefaultDetailRetry()
	}
	return c.DetailRetry
}

func validateStartURL(rawURL string) error {
	if rawURL == "" {
		return immocrawl.Errorf(immocrawl.EINVALID, "start url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return immocrawl.Errorf(immocrawl.EINVALID, "start url %q must be an absolute http(s) url", rawURL)
	}
	return nil
}
