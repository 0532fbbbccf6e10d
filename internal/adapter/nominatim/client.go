// Package nominatim implements domain.Geocoder against a Nominatim-style
// geocoding HTTP API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements domain.Geocoder using the Nominatim search and reverse APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client. Pass an empty baseURL for
// the public endpoint. The user agent is required by Nominatim's usage policy.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		metrics:    metrics,
		logger:     logger,
	}
}

// Search forward-geocodes a free-text query to its best match. The country is
// taken from the structured address when present; the last comma segment of
// the display name is the documented fallback.
func (c *Client) Search(ctx context.Context, query string) (domain.ForwardResult, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	var places []place
	if err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode(), "forward", &places); err != nil {
		return domain.ForwardResult{}, err
	}
	if len(places) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("forward", "empty").Inc()
		return domain.ForwardResult{}, domain.ErrNotFound
	}

	p := places[0]
	result := domain.ForwardResult{
		Lat:         parseFloatOrZero(p.Lat),
		Lon:         parseFloatOrZero(p.Lon),
		DisplayName: p.DisplayName,
		Country:     p.Address.Country,
	}
	if result.Country == "" {
		result.Country = domain.CountryFromDisplayName(p.DisplayName)
	}
	// Nominatim bounding boxes arrive as [south, north, west, east] strings;
	// the order is preserved as-is for the rendering surface.
	if len(p.BoundingBox) == 4 {
		for i, raw := range p.BoundingBox {
			result.BoundingBox[i] = parseFloatOrZero(raw)
		}
	}
	c.metrics.GeocodeRequests.WithLabelValues("forward", "success").Inc()
	return result, nil
}

// Reverse resolves a coordinate to a country and display name using the
// structured address field.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (domain.ReverseResult, error) {
	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', 6, 64)},
		"format": {"json"},
	}

	var p place
	if err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode(), "reverse", &p); err != nil {
		return domain.ReverseResult{}, err
	}
	if p.Error != "" || p.Address.Country == "" {
		c.metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		return domain.ReverseResult{}, domain.ErrNotFound
	}

	c.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	return domain.ReverseResult{
		Country:     p.Address.Country,
		DisplayName: p.DisplayName,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, method string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("geocoder API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Nominatim API response types. Coordinates and bounding boxes arrive as
// strings.

type place struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east]
	Address     address  `json:"address"`
	Error       string   `json:"error"` // reverse endpoint reports misses here
}

type address struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}
