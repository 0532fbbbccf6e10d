// Package boundary holds the country polygon set used for map highlighting
// and offline coordinate-to-country lookups.
package boundary

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// Set is a read-only country polygon collection, loaded once per session.
// Features are matched by the normalized "name" property.
type Set struct {
	features []*geojson.Feature
	byName   map[string]*geojson.Feature
}

// Parse builds a Set from GeoJSON FeatureCollection bytes. Features without a
// usable name property are kept for spatial lookups but unmatchable by name.
func Parse(data []byte) (*Set, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary geojson: %w", err)
	}

	s := &Set{
		features: fc.Features,
		byName:   make(map[string]*geojson.Feature, len(fc.Features)),
	}
	for _, feat := range fc.Features {
		key := domain.NormalizeCountry(featureName(feat))
		if key == "" {
			continue
		}
		// First feature wins on duplicate names, matching the linear-scan
		// semantics of the lookup.
		if _, exists := s.byName[key]; !exists {
			s.byName[key] = feat
		}
	}
	return s, nil
}

// LoadFile reads and parses a boundary GeoJSON file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	return Parse(data)
}

// Find returns the polygon feature for a country, or nil when no boundary
// matches. Nil is the signal to fall back to a bounding-box highlight; it is
// not an error.
func (s *Set) Find(country string) *geojson.Feature {
	if s == nil {
		return nil
	}
	key := domain.NormalizeCountry(country)
	if key == "" {
		return nil
	}
	return s.byName[key]
}

// Locate returns the name of the first country whose polygon contains the
// coordinate, or "" when the point is over no feature (open ocean, missing
// coverage). Bounding boxes prefilter before the exact ring test.
func (s *Set) Locate(lat, lon float64) string {
	if s == nil {
		return ""
	}
	pt := orb.Point{lon, lat}
	for _, feat := range s.features {
		if feat.Geometry == nil || !feat.Geometry.Bound().Contains(pt) {
			continue
		}
		if geometryContains(feat.Geometry, pt) {
			return featureName(feat)
		}
	}
	return ""
}

// Len reports the number of loaded features.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.features)
}

func geometryContains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	default:
		return false
	}
}

func featureName(feat *geojson.Feature) string {
	if feat == nil || feat.Properties == nil {
		return ""
	}
	if name, ok := feat.Properties["name"].(string); ok {
		return name
	}
	return ""
}
