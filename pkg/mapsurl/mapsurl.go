// Package mapsurl extracts coordinates from resolved Google Maps URLs.
//
// A resolved URL may carry a location in several encodings at once. They are
// tried from the most to the least precise:
//
//	!3d<lat>!4d<lng>   place marker inside the data path segment
//	@<lat>,<lng>       map center, usually followed by ",<zoom>z"
//	?q=<lat>,<lng>     pin given as a query parameter
package mapsurl

import (
	"mapslinks/pkg/domain"
	"regexp"
	"strconv"
)

const number = `([-+]?\d+(?:\.\d+)?)`

// patterns are ordered by priority; the first match wins.
var patterns = []*regexp.Regexp{ //nolint: gochecknoglobals
	regexp.MustCompile(`!3d` + number + `!4d` + number),
	regexp.MustCompile(`@` + number + `,` + number),
	// browsers often leave the comma percent-encoded
	regexp.MustCompile(`(?i)[?&]q=` + number + `(?:,|%2C)` + number),
}

// ExtractCoordinates returns the coordinates encoded in rawURL rounded to
// 7 decimals. The boolean is false when no known encoding matched, which is
// a normal outcome for URLs that do not point at a location.
func ExtractCoordinates(rawURL string) (domain.Coordinates, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}

		lat, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}

		return domain.NewCoordinates(lat, lng), true
	}

	return domain.Coordinates{}, false
}
