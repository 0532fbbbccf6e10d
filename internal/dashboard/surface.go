package dashboard

import (
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// RenderingSurface is the capability interface through which the core drives
// the external map/chart/text widgets. The core holds no rendering state and
// never manipulates rendering primitives; it only calls through here, which
// keeps the pipeline testable without any display infrastructure.
type RenderingSurface interface {
	// UpdateSeries replaces a chart's data. Chart names are the metric names
	// ("temperature", "precipitation"); nil values in the series are gaps.
	UpdateSeries(chart string, series domain.YearlySeries, seriesLabel string)

	// SetMarker places the location marker with its popup metrics text and
	// risk color.
	SetMarker(lat, lon float64, popup, riskColor string)

	// FitBounds moves the viewport to a bounding box (south, north, west, east).
	FitBounds(box domain.BoundingBox)

	// CenterAt moves the viewport to a point at a fixed zoom, used when no
	// bounding box is available (map clicks).
	CenterAt(lat, lon float64, zoom int)

	// HighlightRegion overlays a country polygon. Never called with nil; a
	// missing boundary simply leaves the bbox or marker as the highlight.
	HighlightRegion(feature *geojson.Feature)

	// ShowNarrative displays generated prose in the analysis panel.
	ShowNarrative(text string)

	// ShowError surfaces a non-fatal, user-visible message. The dashboard
	// stays interactive afterwards.
	ShowError(message string)
}

// Result is the consolidated outcome of one dashboard action, mirroring what
// was emitted to the rendering surface.
type Result struct {
	Query       string  `json:"query,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	CountryName string  `json:"country_name,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`

	// BoundingBox is nil for map clicks; the surface centers at the point.
	BoundingBox *domain.BoundingBox `json:"bounding_box,omitempty"`

	Temperature   domain.YearlySeries    `json:"temperature"`
	Precipitation domain.YearlySeries    `json:"precipitation"`
	Risk          *domain.RiskAssessment `json:"risk,omitempty"`
	Narrative     string                 `json:"narrative,omitempty"`

	// Global marks the fallback view shown when resolution found nothing.
	Global  bool   `json:"global,omitempty"`
	Message string `json:"message,omitempty"`
}
