package domain

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by geocoders when a query resolves to no place.
// Callers surface a user-visible message and fall back to global data; it is
// never fatal to the session.
var ErrNotFound = errors.New("location not found")

// BoundingBox is a map viewport in the order consumed by the rendering
// surface: south, north, west, east.
type BoundingBox [4]float64

// ForwardResult is the first hit of a free-text place search.
type ForwardResult struct {
	Lat         float64
	Lon         float64
	BoundingBox BoundingBox
	DisplayName string
	Country     string
}

// ReverseResult describes the place at a coordinate. Country comes from the
// provider's structured address, so no display-name heuristic is needed.
type ReverseResult struct {
	Country     string
	DisplayName string
}

// Geocoder resolves place names and coordinates via an external provider.
type Geocoder interface {
	// Search forward-geocodes a free-text query to its best match.
	// Returns ErrNotFound when the provider yields no results.
	Search(ctx context.Context, query string) (ForwardResult, error)

	// Reverse resolves a coordinate to a country and display name.
	// Returns ErrNotFound when the coordinate matches no place.
	Reverse(ctx context.Context, lat, lon float64) (ReverseResult, error)
}

// CountryFromDisplayName extracts a country from a geocoder display name by
// taking the last comma-delimited segment, e.g.
// "Paris, Île-de-France, France" → "France".
//
// This is a fallback heuristic only: it fails for addresses ending in postal
// codes or missing the country segment. Prefer the provider's structured
// address.country field whenever it is present.
func CountryFromDisplayName(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
