package immocrawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/immocrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("maps summary fields onto listing", func(t *testing.T) {
		t.Parallel()

		raw := immocrawl.RawListing{
			URL:      "https://www.seloger.com/annonces/achat/appartement/paris-11eme-75/201234567.htm?projects=2#photos",
			Title:    "  Appartement\n 3 pièces  ",
			Location: "Paris 11ème",
			Price:    "450 000 €",
			Photos:   []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"},
		}

		l, err := immocrawl.Normalize(raw, fixedNow)

		require.NoError(t, err)
		assert.Equal(t, "https://www.seloger.com/annonces/achat/appartement/paris-11eme-75/201234567.htm", l.URL)
		assert.Len(t, l.ID, 16)
		assert.Equal(t, "Appartement 3 pièces", l.Title)
		assert.Equal(t, "Paris 11ème", l.Location)
		require.NotNil(t, l.Price)
		assert.InDelta(t, 450000, *l.Price, 0.001)
		assert.Equal(t, raw.Photos, l.Photos)
		assert.Equal(t, []string{}, l.NearbyTransport)
		assert.Equal(t, fixedNow, l.ScrapedAt)
		assert.Equal(t, immocrawl.StatusComplete, l.FetchStatus)
		assert.Empty(t, l.PublisherName)
		assert.Empty(t, l.Description)
	})

	t.Run("leaves price nil when unparsable", func(t *testing.T) {
		t.Parallel()

		l, err := immocrawl.Normalize(immocrawl.RawListing{
			URL:   "https://example.com/annonce/1",
			Price: "Prix sur demande",
		}, fixedNow)

		require.NoError(t, err)
		assert.Nil(t, l.Price)
	})

	t.Run("returns EMALFORMED without url", func(t *testing.T) {
		t.Parallel()

		_, err := immocrawl.Normalize(immocrawl.RawListing{Title: "No link"}, fixedNow)

		require.Error(t, err)
		assert.Equal(t, immocrawl.EMALFORMED, immocrawl.ErrorCode(err))
	})

	t.Run("returns EMALFORMED for relative url", func(t *testing.T) {
		t.Parallel()

		_, err := immocrawl.Normalize(immocrawl.RawListing{URL: "/annonce/1"}, fixedNow)

		require.Error(t, err)
		assert.Equal(t, immocrawl.EMALFORMED, immocrawl.ErrorCode(err))
	})

	t.Run("drops duplicate and blank photos keeping order", func(t *testing.T) {
		t.Parallel()

		l, err := immocrawl.Normalize(immocrawl.RawListing{
			URL:    "https://example.com/annonce/1",
			Photos: []string{"b.jpg", "", "a.jpg", "b.jpg"},
		}, fixedNow)

		require.NoError(t, err)
		assert.Equal(t, []string{"b.jpg", "a.jpg"}, l.Photos)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		raw := immocrawl.RawListing{
			URL:    "https://example.com/annonce/42/",
			Title:  "Maison",
			Price:  "1.250.000 €",
			Photos: []string{"x.jpg"},
		}

		first, err := immocrawl.Normalize(raw, fixedNow)
		require.NoError(t, err)
		second, err := immocrawl.Normalize(raw, fixedNow)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestListingID(t *testing.T) {
	t.Parallel()

	t.Run("ignores query, fragment, trailing slash and host case", func(t *testing.T) {
		t.Parallel()

		a, err := immocrawl.ListingID("https://Example.com/annonce/42/?utm=x#top")
		require.NoError(t, err)
		b, err := immocrawl.ListingID("https://example.com/annonce/42")
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("differs for different paths", func(t *testing.T) {
		t.Parallel()

		a, err := immocrawl.ListingID("https://example.com/annonce/42")
		require.NoError(t, err)
		b, err := immocrawl.ListingID("https://example.com/annonce/43")
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("has no collisions across a large working set", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]bool)
		for i := 0; i < 50000; i++ {
			id, err := immocrawl.ListingID("https://example.com/annonces/" + itoa(i) + ".htm")
			require.NoError(t, err)
			require.False(t, seen[id], "collision at %d", i)
			seen[id] = true
		}
	})
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"450 000 €":           450000,
		"1 250 000 €":         1250000,
		"1.250.000 €":         1250000,
		"1,250,000 EUR":       1250000,
		"350 000,50 €":        350000.50,
		"1.250.000,75 €":      1250000.75,
		"Prix : 89 900 € FAI": 89900,
		"1.250 €":             1250,
		"12,5":                12.5,
		"€ 780 000":           780000,
	}

	for in, want := range cases {
		got := immocrawl.ParsePrice(in)
		if assert.NotNil(t, got, in) {
			assert.InDelta(t, want, *got, 0.001, in)
		}
	}

	for _, in := range []string{"", "Prix sur demande", "€", "   "} {
		assert.Nil(t, immocrawl.ParsePrice(in), in)
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", immocrawl.CleanText("  a\n\tb   c "))
	assert.Empty(t, immocrawl.CleanText(" \n "))
}

func itoa(i int) string {
	const digits = "0123456789"
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}
