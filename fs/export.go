package fs

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/immocrawl"
)

// Format selects the export encoding.
type Format string

// Export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name. Empty selects FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", immocrawl.Errorf(immocrawl.EINVALID, "unknown format %q (want json, csv or html)", s)
}

// csvHeader lists the exported columns in order.
var csvHeader = []string{
	"id", "title", "description", "price", "location", "photos",
	"energy_info", "construction_date", "publisher_name", "publisher_email",
	"publisher_phone", "nearby_transport", "url", "scraped_at", "fetch_status",
}

// listSeparator joins list fields in flat formats.
const listSeparator = "; "

// Export writes listings to w in the given format.
func Export(w io.Writer, format Format, listings []*immocrawl.Listing) error {
	if listings == nil {
		listings = []*immocrawl.Listing{}
	}
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(listings)
	case FormatCSV:
		return exportCSV(w, listings)
	case FormatHTML:
		return htmlTemplate.Execute(w, listings)
	}
	return immocrawl.Errorf(immocrawl.EINVALID, "unknown format %q", format)
}

// ExportFile writes listings to path atomically.
func ExportFile(path string, format Format, listings []*immocrawl.Listing) error {
	var buf bytes.Buffer
	if err := Export(&buf, format, listings); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func exportCSV(w io.Writer, listings []*immocrawl.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range listings {
		if err := cw.Write(csvRecord(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(l *immocrawl.Listing) []string {
	return []string{
		l.ID,
		l.Title,
		l.Description,
		formatPrice(l.Price),
		l.Location,
		strings.Join(l.Photos, listSeparator),
		l.EnergyInfo,
		l.ConstructionDate,
		l.PublisherName,
		l.PublisherEmail,
		l.PublisherPhone,
		strings.Join(l.NearbyTransport, listSeparator),
		l.URL,
		l.ScrapedAt.UTC().Format(time.RFC3339),
		string(l.FetchStatus),
	}
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

var htmlTemplate = template.Must(template.New("listings").Funcs(template.FuncMap{
	"price": formatPrice,
	"join":  func(s []string) string { return strings.Join(s, listSeparator) },
	"date":  func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Listings</title>
<style>
table { border-collapse: collapse; font-family: sans-serif; font-size: 13px; }
th, td { border: 1px solid #ccc; padding: 4px 6px; vertical-align: top; }
th { background: #f4f4f4; }
</style>
</head>
<body>
<table>
<thead>
<tr><th>Title</th><th>Price</th><th>Location</th><th>Energy</th><th>Built</th><th>Publisher</th><th>Transport</th><th>Photos</th><th>Status</th><th>Scraped</th></tr>
</thead>
<tbody>
{{- range .}}
<tr>
<td><a href="{{.URL}}">{{.Title}}</a></td>
<td>{{price .Price}}</td>
<td>{{.Location}}</td>
<td>{{.EnergyInfo}}</td>
<td>{{.ConstructionDate}}</td>
<td>{{.PublisherName}}{{if .PublisherPhone}}<br>{{.PublisherPhone}}{{end}}{{if .PublisherEmail}}<br>{{.PublisherEmail}}{{end}}</td>
<td>{{join .NearbyTransport}}</td>
<td>{{len .Photos}}</td>
<td>{{.FetchStatus}}</td>
<td>{{date .ScrapedAt}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteJSON writes v as indented JSON to path atomically.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'))
}
