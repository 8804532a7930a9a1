// Package export renders resolved locations into downloadable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"mapslinks/pkg/domain"
	"strconv"
)

// Filename is the attachment name offered for CSV downloads.
const Filename = "coordinates.csv"

// ContentType of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

var header = []string{"Link", "Latitude", "Longitude"}

// WriteCSV writes one row per result below a Link,Latitude,Longitude header.
// Missing coordinates are written as empty fields.
func WriteCSV(w io.Writer, results []domain.ResolvedLocation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("could not write csv header: %w", err)
	}

	for _, res := range results {
		lat, lng := "", ""
		if res.HasCoordinates() {
			lat = formatFloat(res.Coordinates.Latitude)
			lng = formatFloat(res.Coordinates.Longitude)
		}

		if err := cw.Write([]string{res.OriginalLink, lat, lng}); err != nil {
			return fmt.Errorf("could not write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not flush csv: %w", err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
