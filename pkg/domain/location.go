package domain

import "math"

// coordinatePrecision is the number of decimals kept for latitude and longitude.
const coordinatePrecision = 1e7

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// RoundCoordinate rounds v to 7 decimal places.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*coordinatePrecision) / coordinatePrecision
}

// NewCoordinates returns coordinates with both components rounded to 7 decimals.
func NewCoordinates(lat, lng float64) Coordinates {
	return Coordinates{
		Latitude:  RoundCoordinate(lat),
		Longitude: RoundCoordinate(lng),
	}
}

// ResolvedLocation is the outcome of processing one submitted link.
//
// At most one of Coordinates and Error is set. When neither is set the link
// resolved but its final URL carried no coordinates. FinalURL is set whenever
// resolution succeeded.
type ResolvedLocation struct {
	// OriginalLink is the trimmed link as submitted.
	OriginalLink string
	// FinalURL is the address bar URL after redirects settled; empty when resolution failed.
	FinalURL string
	// Coordinates extracted from FinalURL; nil when none were found or resolution failed.
	Coordinates *Coordinates
	// Error describes why resolution failed, e.g. "NavigationError: timeout".
	Error string
}

// HasCoordinates reports whether coordinates were extracted.
func (l ResolvedLocation) HasCoordinates() bool { return l.Coordinates != nil }

// Failed reports whether resolution of the link failed.
func (l ResolvedLocation) Failed() bool { return l.Error != "" }
