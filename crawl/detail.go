package crawl

import (
	"context"
	"sort"
	"time"

	"github.com/fwojciec/immocrawl"
	"golang.org/x/sync/errgroup"
)

// detailJob asks for the detail page of one collected listing.
type detailJob struct {
	position int
	id       string
	url      string
}

// detailResult holds the outcome of one detail job.
type detailResult struct {
	position   int
	id         string
	detail     *immocrawl.Detail
	err        error
	attempted  bool
	finishedAt time.Time
}

// detailLane fetches detail pages alongside pagination. Submitting never
// blocks: a dispatcher queues jobs until a worker is free.
type detailLane struct {
	in   chan []detailJob
	done chan struct{}

	results []detailResult
}

func (c *Crawler) startDetailLane(ctx context.Context) *detailLane {
	lane := &detailLane{
		in:   make(chan []detailJob),
		done: make(chan struct{}),
	}
	work := make(chan detailJob)
	out := make(chan detailResult)

	go dispatch(ctx, lane.in, work)

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency())
	for i := 0; i < c.concurrency(); i++ {
		g.Go(func() error {
			for job := range work {
				out <- c.fetchDetail(ctx, job)
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()

	go func() {
		for res := range out {
			lane.results = append(lane.results, res)
		}
		close(lane.done)
	}()

	return lane
}

// submit queues jobs for the workers.
func (l *detailLane) submit(jobs []detailJob) {
	l.in <- jobs
}

// drain waits for every queued job to finish and returns the results.
func (l *detailLane) drain() []detailResult {
	close(l.in)
	<-l.done
	return l.results
}

// dispatch moves jobs from in to work through an unbounded FIFO. Once ctx
// is done queued and incoming jobs are dropped. work is closed after in is
// closed and the queue is empty.
func dispatch(ctx context.Context, in <-chan []detailJob, work chan<- detailJob) {
	defer close(work)

	var queue []detailJob
	var cancelled bool
	done := ctx.Done()
	for in != nil || len(queue) > 0 {
		var next chan<- detailJob
		var head detailJob
		if len(queue) > 0 {
			next = work
			head = queue[0]
		}

		select {
		case jobs, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			if cancelled {
				continue
			}
			queue = append(queue, jobs...)
		case next <- head:
			queue = queue[1:]
		case <-done:
			cancelled = true
			done = nil
			queue = nil
		}
	}
}

// fetchDetail fetches and parses one detail page. Jobs that reach a worker
// after cancellation are returned unattempted.
func (c *Crawler) fetchDetail(ctx context.Context, job detailJob) detailResult {
	res := detailResult{position: job.position, id: job.id}
	if ctx.Err() != nil {
		return res
	}
	res.attempted = true

	body, err := c.detailRetry().Fetch(ctx, job.url, c.fetch, c.logRetry("detail"))
	if err == nil {
		res.detail, err = c.Details.ParseDetailPage(body, job.url)
	}
	res.err = err
	res.finishedAt = c.now()()
	return res
}

func sortResults(results []detailResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].position < results[j].position
	})
}
