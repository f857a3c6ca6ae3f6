package crawl_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/fwojciec/immocrawl"
	"github.com/fwojciec/immocrawl/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com/annonces/achat/appartement/paris"
		result := crawl.TruncateURL(url, 20)
		assert.Equal(t, "...appartement/paris", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://example.com", 0))
		assert.Empty(t, crawl.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix of URL when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", crawl.TruncateURL("https://example.com", 3))
		assert.Equal(t, "a", crawl.TruncateURL("a", 2))
	})
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("reports counts and delta", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		crawl.WriteSummary(&buf, immocrawl.Summary{
			RunID:           "run-1",
			Mode:            immocrawl.ModeDeep,
			Status:          immocrawl.RunPartialDeepFetch,
			PagesFetched:    3,
			RecordsFound:    5,
			DetailAttempted: 5,
			DetailFailed:    1,
			StartedAt:       start,
			FinishedAt:      start.Add(1500 * time.Millisecond),
		}, immocrawl.Delta{Added: []string{"a", "b"}, Removed: []string{"c"}, Unchanged: []string{}})

		out := buf.String()
		assert.Contains(t, out, "run-1: partial_deep_fetch (deep mode)")
		assert.Contains(t, out, "3 fetched, 0 failed")
		assert.Contains(t, out, "5 attempted, 1 failed")
		assert.Contains(t, out, "+2 -1 =0")
		assert.Contains(t, out, "1.5s")
	})

	t.Run("omits detail line in shallow mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		crawl.WriteSummary(&buf, immocrawl.Summary{Mode: immocrawl.ModeShallow, Interrupted: true}, immocrawl.Delta{})

		assert.NotContains(t, buf.String(), "details:")
		assert.Contains(t, buf.String(), "interrupted")
	})
}
