package immocrawl

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Normalize maps a raw search-result card onto the canonical Listing schema.
// It is a pure function of its inputs: the same raw listing and timestamp
// always produce the same Listing. Returns EMALFORMED if the card has no
// usable URL.
func Normalize(raw RawListing, now time.Time) (*Listing, error) {
	canonical, err := CanonicalURL(raw.URL)
	if err != nil {
		return nil, err
	}

	photos := make([]string, 0, len(raw.Photos))
	seen := make(map[string]bool, len(raw.Photos))
	for _, p := range raw.Photos {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		photos = append(photos, p)
	}

	return &Listing{
		ID:              hashURL(canonical),
		Title:           CleanText(raw.Title),
		Price:           ParsePrice(raw.Price),
		Location:        CleanText(raw.Location),
		Photos:          photos,
		NearbyTransport: []string{},
		URL:             canonical,
		ScrapedAt:       now.UTC(),
		FetchStatus:     StatusComplete,
	}, nil
}

// ListingID derives the stable identifier of a listing from its URL.
// The identifier is the hex-encoded 64-bit xxHash of the canonical URL.
func ListingID(rawURL string) (string, error) {
	canonical, err := CanonicalURL(rawURL)
	if err != nil {
		return "", err
	}
	return hashURL(canonical), nil
}

func hashURL(canonical string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(canonical))
}

// CanonicalURL returns the absolute form of a listing URL used for identity:
// lowercase scheme and host, no query string, no fragment, no trailing slash.
// Query parameters on listing links carry tracking data, not identity.
func CanonicalURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", Errorf(EMALFORMED, "listing url required")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EMALFORMED, "invalid listing url %q: %v", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", Errorf(EMALFORMED, "listing url %q is not absolute", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EMALFORMED, "listing url %q is not http", rawURL)
	}
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String(), nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	priceRe      = regexp.MustCompile(`\d[\d\s\x{00a0}\x{202f}.,']*`)
)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ParsePrice extracts a euro amount from displayed price text such as
// "1 250 000 €", "350.000 €" or "1 250,50 €". Returns nil when no amount
// can be read.
func ParsePrice(s string) *float64 {
	m := priceRe.FindString(s)
	if m == "" {
		return nil
	}

	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, m)
	digits = strings.TrimRight(digits, ".,")

	lastDot := strings.LastIndex(digits, ".")
	lastComma := strings.LastIndex(digits, ",")

	var intPart, fracPart string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		sep := max(lastDot, lastComma)
		intPart, fracPart = digits[:sep], digits[sep+1:]
	case lastDot >= 0 || lastComma >= 0:
		sep := max(lastDot, lastComma)
		mark := digits[sep : sep+1]
		if strings.Count(digits, mark) == 1 && len(digits)-sep-1 != 3 {
			intPart, fracPart = digits[:sep], digits[sep+1:]
		} else {
			intPart = digits
		}
	default:
		intPart = digits
	}

	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	if intPart == "" {
		return nil
	}
	num := intPart
	if fracPart != "" {
		num += "." + fracPart
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	return &v
}
