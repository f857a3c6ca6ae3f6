package immocrawl

import "time"

// Mode selects how much of each listing is fetched.
type Mode string

// Crawl modes.
const (
	// ModeShallow reads only the search-result summaries.
	ModeShallow Mode = "shallow"

	// ModeDeep additionally fetches and parses each listing's own page.
	ModeDeep Mode = "deep"
)

// ParseMode validates a mode name. Empty selects ModeShallow.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeShallow:
		return ModeShallow, nil
	case ModeDeep:
		return ModeDeep, nil
	}
	return "", Errorf(EINVALID, "unknown mode %q (want shallow or deep)", s)
}

// RunStatus is the informational outcome of a run.
type RunStatus string

// Run statuses.
const (
	// RunFullSuccess means pagination finished and every detail fetch succeeded.
	RunFullSuccess RunStatus = "full_success"

	// RunPartialPagination means pagination stopped early on a page failure
	// or cancellation. Listings collected before that point are kept.
	RunPartialPagination RunStatus = "partial_pagination"

	// RunPartialDeepFetch means pagination finished but at least one listing
	// could not be enriched from its detail page.
	RunPartialDeepFetch RunStatus = "partial_deep_fetch"
)

// Summary explains what happened during a run.
type Summary struct {
	RunID            string    `json:"run_id"`
	StartURL         string    `json:"start_url"`
	Mode             Mode      `json:"mode"`
	Status           RunStatus `json:"status"`
	PagesFetched     int       `json:"pages_fetched"`
	PagesFailed      int       `json:"pages_failed"`
	RecordsFound     int       `json:"records_found"`
	Duplicates       int       `json:"duplicates"`
	SkippedMalformed int       `json:"skipped_malformed"`
	DetailAttempted  int       `json:"detail_attempted"`
	DetailFailed     int       `json:"detail_failed"`
	PageBoundReached bool      `json:"page_bound_reached"`
	Interrupted      bool      `json:"interrupted"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}
