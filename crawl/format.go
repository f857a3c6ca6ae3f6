package crawl

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/immocrawl"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// WriteSummary prints a human-readable run report.
func WriteSummary(w io.Writer, s immocrawl.Summary, d immocrawl.Delta) {
	fmt.Fprintf(w, "Run %s: %s (%s mode)\n", s.RunID, s.Status, s.Mode)
	fmt.Fprintf(w, "  pages:    %d fetched, %d failed\n", s.PagesFetched, s.PagesFailed)
	fmt.Fprintf(w, "  records:  %d found, %d duplicates, %d malformed\n", s.RecordsFound, s.Duplicates, s.SkippedMalformed)
	if s.Mode == immocrawl.ModeDeep {
		fmt.Fprintf(w, "  details:  %d attempted, %d failed\n", s.DetailAttempted, s.DetailFailed)
	}
	fmt.Fprintf(w, "  delta:    +%d -%d =%d\n", len(d.Added), len(d.Removed), len(d.Unchanged))
	if s.PageBoundReached {
		fmt.Fprintln(w, "  page bound reached")
	}
	if s.Interrupted {
		fmt.Fprintln(w, "  interrupted")
	}
	fmt.Fprintf(w, "  duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
}
