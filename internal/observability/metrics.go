package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard core.
type Metrics struct {
	Lookups        *prometheus.CounterVec // labels: action={search,click,global}, outcome={ok,not_found,error,stale}
	LookupDuration prometheus.Histogram

	// Risk assessment metrics.
	RiskAssessments *prometheus.CounterVec // labels: category

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: method={forward,reverse}, result={hit,miss}

	// Dataset metrics.
	DatasetLoaded  *prometheus.GaugeVec // labels: metric={temperature,precipitation}
	DatasetSamples *prometheus.GaugeVec // labels: metric

	// Narrative metrics.
	NarrativeRequests *prometheus.CounterVec // labels: outcome={success,error}
	NarrativeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Lookups,
		m.LookupDuration,
		m.RiskAssessments,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.DatasetLoaded,
		m.DatasetSamples,
		m.NarrativeRequests,
		m.NarrativeEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_dashboard",
			Name:      "lookups_total",
			Help:      "Dashboard lookup actions by entry point and outcome.",
		}, []string{"action", "outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_dashboard",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a complete resolve-extract-assess pipeline run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RiskAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_dashboard",
			Name:      "risk_assessments_total",
			Help:      "Risk assessments computed, by primary category.",
		}, []string{"category"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_dashboard",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_dashboard",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		DatasetLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_dashboard",
			Name:      "dataset_loaded",
			Help:      "1 when the dataset for a metric has been loaded.",
		}, []string{"metric"}),
		DatasetSamples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_dashboard",
			Name:      "dataset_samples",
			Help:      "Number of samples in the loaded dataset for a metric.",
		}, []string{"metric"}),
		NarrativeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_dashboard",
			Name:      "narrative_requests_total",
			Help:      "Narrative generation requests by outcome.",
		}, []string{"outcome"}),
		NarrativeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_dashboard",
			Name:      "narrative_enabled",
			Help:      "1 when narrative generation is enabled, 0 otherwise.",
		}),
	}
}
