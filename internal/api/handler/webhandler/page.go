package webhandler

import (
	"embed"
	"html/template"
	"mapslinks/pkg/domain"
	"strconv"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

// pageRow is a result prepared for display. Empty strings render as N/A.
type pageRow struct {
	Link      string
	Latitude  string
	Longitude string
	FinalURL  string
	Error     string
}

type pageData struct {
	Input     string
	Submitted bool
	Rows      []pageRow
	// Data is the JSON encoded result set re-submitted by the download form.
	Data string
}

func newPageData(input string, results []domain.ResolvedLocation) pageData {
	rows := make([]pageRow, 0, len(results))
	for _, res := range results {
		row := pageRow{
			Link:     res.OriginalLink,
			FinalURL: res.FinalURL,
			Error:    res.Error,
		}
		if res.HasCoordinates() {
			row.Latitude = strconv.FormatFloat(res.Coordinates.Latitude, 'f', -1, 64)
			row.Longitude = strconv.FormatFloat(res.Coordinates.Longitude, 'f', -1, 64)
		}
		rows = append(rows, row)
	}

	return pageData{
		Input:     input,
		Submitted: true,
		Rows:      rows,
		Data:      string(domain.EncodeLocations(results)),
	}
}
