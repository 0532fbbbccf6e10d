package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/climate-impact-explorer/internal/adapter/http"
	"github.com/couchcryptid/climate-impact-explorer/internal/adapter/nominatim"
	"github.com/couchcryptid/climate-impact-explorer/internal/adapter/openrouter"
	"github.com/couchcryptid/climate-impact-explorer/internal/boundary"
	"github.com/couchcryptid/climate-impact-explorer/internal/config"
	"github.com/couchcryptid/climate-impact-explorer/internal/dashboard"
	"github.com/couchcryptid/climate-impact-explorer/internal/dataset"
	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := dataset.NewStore()
	if err := loadDatasets(cfg, store, metrics); err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded",
		"temperature", datasetSize(store, dataset.MetricTemperature),
		"precipitation", datasetSize(store, dataset.MetricPrecipitation))

	var boundaries *boundary.Set
	if cfg.BoundaryGeoJSON != "" {
		boundaries, err = boundary.LoadFile(cfg.BoundaryGeoJSON)
		if err != nil {
			logger.Error("failed to load boundaries", "path", cfg.BoundaryGeoJSON, "error", err)
			os.Exit(1)
		}
		logger.Info("country boundaries loaded", "count", boundaries.Len())
	} else {
		logger.Info("country boundaries disabled")
	}

	client := nominatim.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, metrics, logger)
	geocoder := nominatim.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
	logger.Info("nominatim geocoding enabled", "cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)

	// Narrative generation is feature-flagged via NARRATIVE_ENABLED / OPENROUTER_API_KEY.
	var narrator domain.Narrator
	if cfg.NarrativeEnabled {
		narrator = openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.NarrativeModel,
			cfg.NarrativeTimeout, metrics, logger)
		metrics.NarrativeEnabled.Set(1)
		logger.Info("narrative generation enabled", "model", cfg.NarrativeModel, "timeout", cfg.NarrativeTimeout)
	} else {
		logger.Info("narrative generation disabled")
	}

	orch := dashboard.New(geocoder, store, boundaries, narrator, logger, metrics, cfg.MapDefaultZoom)
	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadDatasets fills the store from whichever source is configured. The CSV
// pair wins over the combined monthly JSON file.
func loadDatasets(cfg *config.Config, store *dataset.Store, metrics *observability.Metrics) error {
	if cfg.TemperatureCSV != "" {
		temp, err := dataset.LoadCSVFile(cfg.TemperatureCSV, dataset.MetricTemperature)
		if err != nil {
			return err
		}
		precip, err := dataset.LoadCSVFile(cfg.PrecipitationCSV, dataset.MetricPrecipitation)
		if err != nil {
			return err
		}
		store.Put(temp)
		store.Put(precip)
	} else {
		f, err := os.Open(cfg.ClimateJSON)
		if err != nil {
			return err
		}
		defer f.Close()

		temp, precip, err := dataset.LoadMonthlyJSON(f, cfg.ClimateStartYear)
		if err != nil {
			return err
		}
		store.Put(temp)
		store.Put(precip)
	}

	for _, metric := range []string{dataset.MetricTemperature, dataset.MetricPrecipitation} {
		metrics.DatasetLoaded.WithLabelValues(metric).Set(1)
		metrics.DatasetSamples.WithLabelValues(metric).Set(float64(datasetSize(store, metric)))
	}
	return nil
}

func datasetSize(store *dataset.Store, metric string) int {
	if ds, ok := store.Get(metric); ok {
		return len(ds.Samples)
	}
	return 0
}
