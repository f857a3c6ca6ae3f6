package immocrawl

import "time"

// FetchStatus reports how much of a listing could be collected.
type FetchStatus string

// Fetch statuses for Listing.
const (
	// StatusComplete means every requested source was read: the search
	// summary in shallow mode, summary and detail page in deep mode.
	StatusComplete FetchStatus = "complete"

	// StatusPartialShallow means the listing was queued for deep enrichment
	// but the run ended before its detail page was fetched.
	StatusPartialShallow FetchStatus = "partial_shallow"

	// StatusPartialDeepFailed means the detail page fetch or parse failed.
	// Summary fields are kept.
	StatusPartialDeepFailed FetchStatus = "partial_deep_failed"
)

// Listing is one property listing in canonical form.
// Optional string fields are empty when the source did not provide them.
type Listing struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Price            *float64    `json:"price"`
	Location         string      `json:"location"`
	Photos           []string    `json:"photos"`
	EnergyInfo       string      `json:"energy_info"`
	ConstructionDate string      `json:"construction_date"`
	PublisherName    string      `json:"publisher_name"`
	PublisherEmail   string      `json:"publisher_email"`
	PublisherPhone   string      `json:"publisher_phone"`
	NearbyTransport  []string    `json:"nearby_transport"`
	URL              string      `json:"url"`
	ScrapedAt        time.Time   `json:"scraped_at"`
	FetchStatus      FetchStatus `json:"fetch_status"`
}

// RawListing holds the summary fields of one search-result card as found in
// the markup. Price is kept as displayed text; Normalize coerces it.
type RawListing struct {
	URL      string
	Title    string
	Location string
	Price    string
	Photos   []string
}

// Detail holds the fields extracted from a listing's own page.
// Empty fields were not found in the markup.
type Detail struct {
	Title            string
	Description      string
	Price            string
	Location         string
	EnergyInfo       string
	ConstructionDate string
	PublisherName    string
	PublisherEmail   string
	PublisherPhone   string
	NearbyTransport  []string
	Photos           []string
}

// Merge copies the fields present in d onto l. Absent fields never
// overwrite existing values. Detail photos are appended after the summary
// photos, skipping ones already present.
func (l *Listing) Merge(d *Detail) {
	if d == nil {
		return
	}

	mergeString(&l.Title, d.Title)
	mergeString(&l.Description, d.Description)
	mergeString(&l.Location, d.Location)
	mergeString(&l.EnergyInfo, d.EnergyInfo)
	mergeString(&l.ConstructionDate, d.ConstructionDate)
	mergeString(&l.PublisherName, d.PublisherName)
	mergeString(&l.PublisherEmail, d.PublisherEmail)
	mergeString(&l.PublisherPhone, d.PublisherPhone)

	if price := ParsePrice(d.Price); price != nil {
		l.Price = price
	}

	if len(d.NearbyTransport) > 0 {
		l.NearbyTransport = append([]string(nil), d.NearbyTransport...)
	}

	seen := make(map[string]bool, len(l.Photos))
	for _, p := range l.Photos {
		seen[p] = true
	}
	for _, p := range d.Photos {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		l.Photos = append(l.Photos, p)
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
