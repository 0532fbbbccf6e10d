package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-impact-explorer/internal/dashboard"
	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// Dashboard is the orchestrator surface the HTTP layer drives. Each request
// gets its own rendering surface whose captured directives ship back to the
// browser as JSON.
type Dashboard interface {
	Search(ctx context.Context, query string, surface dashboard.RenderingSurface) (*dashboard.Result, error)
	Click(ctx context.Context, lat, lon float64, surface dashboard.RenderingSurface) (*dashboard.Result, error)
	ShowGlobal(ctx context.Context, surface dashboard.RenderingSurface) *dashboard.Result
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, dash Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:   dash,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/dashboard/search", s.handleSearch)
	mux.HandleFunc("GET /api/dashboard/locate", s.handleLocate)
	mux.HandleFunc("GET /api/dashboard/global", s.handleGlobal)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.dash.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	surface := newJSONSurface()
	result, err := s.dash.Search(r.Context(), query, surface)
	s.writeResult(w, result, surface, err)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r, "lat", 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := parseCoord(r, "lon", 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	surface := newJSONSurface()
	result, err := s.dash.Click(r.Context(), lat, lon, surface)
	s.writeResult(w, result, surface, err)
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	surface := newJSONSurface()
	result := s.dash.ShowGlobal(r.Context(), surface)
	s.writeResult(w, result, surface, nil)
}

func (s *Server) writeResult(w http.ResponseWriter, result *dashboard.Result, surface *jsonSurface, err error) {
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded by a newer request")
	case err != nil:
		s.logger.Error("dashboard request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, response{Result: result, Render: surface.directives()})
	}
}

func parseCoord(r *http.Request, name string, limit float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " parameter is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < -limit || v > limit {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// response pairs the pipeline result with the rendering directives the
// browser-side map and chart widgets replay.
type response struct {
	*dashboard.Result
	Render renderDirectives `json:"render"`
}

type renderDirectives struct {
	ChartLabels map[string]string   `json:"chart_labels,omitempty"`
	Marker      *markerDirective    `json:"marker,omitempty"`
	FitBounds   *domain.BoundingBox `json:"fit_bounds,omitempty"`
	CenterAt    *centerDirective    `json:"center_at,omitempty"`
	Highlight   *geojson.Feature    `json:"highlight,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
}

type markerDirective struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
	Color string  `json:"color"`
}

type centerDirective struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// jsonSurface records rendering calls for one request. No locking: a surface
// lives and dies inside a single handler invocation.
type jsonSurface struct {
	render renderDirectives
}

func newJSONSurface() *jsonSurface {
	return &jsonSurface{render: renderDirectives{ChartLabels: make(map[string]string)}}
}

func (s *jsonSurface) directives() renderDirectives { return s.render }

func (s *jsonSurface) UpdateSeries(chart string, _ domain.YearlySeries, label string) {
	s.render.ChartLabels[chart] = label
}

func (s *jsonSurface) SetMarker(lat, lon float64, popup, color string) {
	s.render.Marker = &markerDirective{Lat: lat, Lon: lon, Popup: popup, Color: color}
}

func (s *jsonSurface) FitBounds(box domain.BoundingBox) {
	s.render.FitBounds = &box
}

func (s *jsonSurface) CenterAt(lat, lon float64, zoom int) {
	s.render.CenterAt = &centerDirective{Lat: lat, Lon: lon, Zoom: zoom}
}

func (s *jsonSurface) HighlightRegion(feature *geojson.Feature) {
	s.render.Highlight = feature
}

func (s *jsonSurface) ShowNarrative(_ string) {}

func (s *jsonSurface) ShowError(message string) {
	s.render.Errors = append(s.render.Errors, message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
