// Package dashboard sequences the per-action pipeline: resolve a place,
// extract its climate series, assess risk, and emit updates to the rendering
// surface and collaborators.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/climate-impact-explorer/internal/boundary"
	"github.com/couchcryptid/climate-impact-explorer/internal/dataset"
	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
)

// ErrSuperseded marks a pipeline run whose results were discarded because a
// newer action was issued while it was in flight. The surface is left
// untouched; nothing about it is user-visible.
var ErrSuperseded = errors.New("action superseded by a newer one")

// DefaultZoom is the viewport zoom used when no bounding box is available.
const DefaultZoom = 5

// Orchestrator runs one resolve → extract → assess → emit pipeline per user
// action. A single instance serves all actions; per-action state rides on the
// call stack, and a monotonically increasing sequence number guards against a
// stale completion overwriting a newer result.
type Orchestrator struct {
	geocoder   domain.Geocoder
	store      *dataset.Store
	boundaries *boundary.Set   // nil disables polygon highlighting and offline lookup
	narrator   domain.Narrator // nil disables narrative generation
	logger     *slog.Logger
	metrics    *observability.Metrics
	zoom       int
	seq        atomic.Uint64
}

// New creates an Orchestrator. boundaries and narrator may be nil; the
// corresponding panels are then simply skipped.
func New(geocoder domain.Geocoder, store *dataset.Store, boundaries *boundary.Set, narrator domain.Narrator, logger *slog.Logger, metrics *observability.Metrics, zoom int) *Orchestrator {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Orchestrator{
		geocoder:   geocoder,
		store:      store,
		boundaries: boundaries,
		narrator:   narrator,
		logger:     logger,
		metrics:    metrics,
		zoom:       zoom,
	}
}

// CheckReadiness reports whether both datasets have loaded.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.store.Ready() {
		return errors.New("climate datasets are not fully loaded yet")
	}
	return nil
}

// Search handles the free-text entry point. A location that cannot be
// resolved is not a failure: the surface gets an error message plus the
// global series as fallback, and the returned Result says so.
func (o *Orchestrator) Search(ctx context.Context, query string, surface RenderingSurface) (*Result, error) {
	seq := o.seq.Add(1)
	start := time.Now()

	fwd, err := o.geocoder.Search(ctx, query)
	if err != nil {
		return o.resolveFailed(ctx, seq, start, "search", query, surface, err)
	}

	loc := resolved{
		query:       query,
		lat:         fwd.Lat,
		lon:         fwd.Lon,
		country:     fwd.Country,
		displayName: fwd.DisplayName,
		boundingBox: &fwd.BoundingBox,
	}
	return o.renderCountry(ctx, seq, start, "search", loc, surface)
}

// Click handles the map-click entry point. There is no bounding box; the
// surface centers at the clicked point with the default zoom. When reverse
// geocoding fails, the local polygon set answers as an offline fallback.
func (o *Orchestrator) Click(ctx context.Context, lat, lon float64, surface RenderingSurface) (*Result, error) {
	seq := o.seq.Add(1)
	start := time.Now()
	query := fmt.Sprintf("%.4f, %.4f", lat, lon)

	loc := resolved{query: query, lat: lat, lon: lon}
	rev, err := o.geocoder.Reverse(ctx, lat, lon)
	switch {
	case err == nil:
		loc.country = rev.Country
		loc.displayName = rev.DisplayName
	default:
		if !errors.Is(err, domain.ErrNotFound) {
			o.logger.Warn("reverse geocoding failed, trying local boundaries",
				"lat", lat, "lon", lon, "error", err)
		}
		loc.country = o.boundaries.Locate(lat, lon)
		loc.displayName = loc.country
		if loc.country == "" {
			return o.resolveFailed(ctx, seq, start, "click", query, surface, err)
		}
	}

	return o.renderCountry(ctx, seq, start, "click", loc, surface)
}

// ShowGlobal renders the cross-country average series. It is idempotent and
// tolerates partially loaded data: whichever dataset is present is shown, so
// it can run after either load completes, in any order.
func (o *Orchestrator) ShowGlobal(ctx context.Context, surface RenderingSurface) *Result {
	result := &Result{Global: true}
	o.emitGlobal(result, surface)
	o.metrics.Lookups.WithLabelValues("global", "ok").Inc()
	return result
}

// resolved is the outcome of the geospatial resolution step.
type resolved struct {
	query       string
	lat         float64
	lon         float64
	country     string
	displayName string
	boundingBox *domain.BoundingBox
}

// renderCountry runs the extract → assess → narrate → emit tail shared by
// both entry points.
func (o *Orchestrator) renderCountry(ctx context.Context, seq uint64, start time.Time, action string, loc resolved, surface RenderingSurface) (*Result, error) {
	tempSeries := o.countrySeries(dataset.MetricTemperature, loc.country)
	precipSeries := o.countrySeries(dataset.MetricPrecipitation, loc.country)

	risk := domain.AssessRisk(tempSeries, precipSeries)
	o.metrics.RiskAssessments.WithLabelValues(string(risk.PrimaryRisk)).Inc()

	result := &Result{
		Query:         loc.query,
		Lat:           loc.lat,
		Lon:           loc.lon,
		CountryName:   loc.country,
		DisplayName:   loc.displayName,
		BoundingBox:   loc.boundingBox,
		Temperature:   tempSeries,
		Precipitation: precipSeries,
		Risk:          &risk,
	}

	result.Narrative = o.narrate(ctx, loc, risk, tempSeries)

	// The narrative call was the last suspension point; anything after this
	// check is synchronous, so a stale run can no longer interleave past it.
	if o.seq.Load() != seq {
		o.metrics.Lookups.WithLabelValues(action, "stale").Inc()
		return nil, ErrSuperseded
	}

	o.emit(result, surface)
	o.metrics.Lookups.WithLabelValues(action, "ok").Inc()
	o.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// resolveFailed handles both "no such place" and collaborator outages. The
// dashboard falls back to the global view rather than a blank state, and the
// session stays interactive.
func (o *Orchestrator) resolveFailed(ctx context.Context, seq uint64, start time.Time, action, query string, surface RenderingSurface, cause error) (*Result, error) {
	notFound := errors.Is(cause, domain.ErrNotFound)

	result := &Result{Query: query, Global: true}
	if notFound {
		result.Message = fmt.Sprintf("No location found for %q. Showing global data.", query)
		o.metrics.Lookups.WithLabelValues(action, "not_found").Inc()
	} else {
		o.logger.Warn("geocoding collaborator unavailable", "action", action, "query", query, "error", cause)
		result.Message = "Location service is unavailable right now. Showing global data."
		o.metrics.Lookups.WithLabelValues(action, "error").Inc()
	}

	if o.seq.Load() != seq {
		o.metrics.Lookups.WithLabelValues(action, "stale").Inc()
		return nil, ErrSuperseded
	}

	surface.ShowError(result.Message)
	o.emitGlobal(result, surface)
	o.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// countrySeries extracts one metric's series, tolerating a dataset that has
// not loaded yet (the other panels keep working; risk comes out as
// insufficient data).
func (o *Orchestrator) countrySeries(metric, country string) domain.YearlySeries {
	ds, ok := o.store.Get(metric)
	if !ok {
		return domain.YearlySeries{}
	}
	return domain.SeriesForCountry(ds, country)
}

// narrate generates the prose panel. Failures are logged and swallowed:
// narrative is strictly additive and must never block chart or map updates.
func (o *Orchestrator) narrate(ctx context.Context, loc resolved, risk domain.RiskAssessment, tempSeries domain.YearlySeries) string {
	if o.narrator == nil {
		return ""
	}

	text, err := o.narrator.GenerateSummary(ctx, domain.NarrativeInput{
		Location:                   loc.displayName,
		Lat:                        loc.lat,
		Lon:                        loc.lon,
		CurrentAvgTemp:             domain.RecentMean(tempSeries, 5),
		TemperatureAnomaly:         risk.TemperatureAnomaly,
		PrecipitationChangePercent: risk.PrecipitationChangePercent,
		PrimaryRisk:                risk.PrimaryRisk,
		Magnitude:                  risk.Magnitude,
	})
	if err != nil {
		o.logger.Warn("narrative generation failed", "location", loc.displayName, "error", err)
		return ""
	}
	return text
}

func (o *Orchestrator) emit(result *Result, surface RenderingSurface) {
	surface.UpdateSeries(dataset.MetricTemperature, result.Temperature,
		fmt.Sprintf("%s temperature (°C)", result.CountryName))
	surface.UpdateSeries(dataset.MetricPrecipitation, result.Precipitation,
		fmt.Sprintf("%s precipitation (mm)", result.CountryName))

	surface.SetMarker(result.Lat, result.Lon, popupText(result.Risk), domain.RiskColor(result.Risk.Magnitude))

	if feat := o.boundaries.Find(result.CountryName); feat != nil {
		surface.HighlightRegion(feat)
	}
	if result.BoundingBox != nil {
		surface.FitBounds(*result.BoundingBox)
	} else {
		surface.CenterAt(result.Lat, result.Lon, o.zoom)
	}

	if result.Narrative != "" {
		surface.ShowNarrative(result.Narrative)
	}
}

func (o *Orchestrator) emitGlobal(result *Result, surface RenderingSurface) {
	if ds, ok := o.store.Get(dataset.MetricTemperature); ok {
		result.Temperature = domain.GlobalSeries(ds)
		surface.UpdateSeries(dataset.MetricTemperature, result.Temperature, "Global temperature (°C)")
	}
	if ds, ok := o.store.Get(dataset.MetricPrecipitation); ok {
		result.Precipitation = domain.GlobalSeries(ds)
		surface.UpdateSeries(dataset.MetricPrecipitation, result.Precipitation, "Global precipitation (mm)")
	}
}

// popupText renders the marker popup metrics line.
func popupText(risk *domain.RiskAssessment) string {
	if risk == nil {
		return ""
	}
	text := fmt.Sprintf("Risk: %s (%s)", risk.PrimaryRisk, risk.Magnitude)
	if risk.TemperatureAnomaly != nil {
		text += fmt.Sprintf(" · Δtemp %+.2f°C", *risk.TemperatureAnomaly)
	}
	if risk.PrecipitationChangePercent != nil {
		text += fmt.Sprintf(" · Δprecip %+.1f%%", *risk.PrecipitationChangePercent)
	}
	return text
}
