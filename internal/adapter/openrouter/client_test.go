package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func testInput() domain.NarrativeInput {
	return domain.NarrativeInput{
		Location:                   "Kenya",
		Lat:                        -1.2832533,
		Lon:                        36.8172449,
		CurrentAvgTemp:             f(25.3),
		TemperatureAnomaly:         f(1.62),
		PrecipitationChangePercent: f(-12.5),
		PrimaryRisk:                domain.RiskTemperatureWarming,
		Magnitude:                  domain.MagnitudeHigh,
	}
}

func TestBuildClimatePrompt(t *testing.T) {
	prompt := BuildClimatePrompt(testInput())

	assert.Contains(t, prompt, `"Kenya"`)
	assert.Contains(t, prompt, "Latitude: -1.2833")
	assert.Contains(t, prompt, "Longitude: 36.8172")
	assert.Contains(t, prompt, "25.3°C")
	assert.Contains(t, prompt, "+1.62°C")
	assert.Contains(t, prompt, "-12.5%")
	assert.Contains(t, prompt, "temperature_warming")
	assert.Contains(t, prompt, "magnitude: high")
	assert.Contains(t, prompt, "3-paragraph")
}

func TestBuildClimatePrompt_Deterministic(t *testing.T) {
	input := testInput()
	assert.Equal(t, BuildClimatePrompt(input), BuildClimatePrompt(input))
}

func TestBuildClimatePrompt_OmitsMissingMetrics(t *testing.T) {
	prompt := BuildClimatePrompt(domain.NarrativeInput{
		Location:    "Atlantis",
		PrimaryRisk: domain.RiskInsufficientData,
		Magnitude:   domain.MagnitudeNotApplicable,
	})

	assert.NotContains(t, prompt, "Average Annual Temperature")
	assert.NotContains(t, prompt, "Temperature Anomaly")
	assert.NotContains(t, prompt, "Precipitation Change")
	assert.Contains(t, prompt, "insufficient_data")
}

func newTestClient(baseURL string) *Client {
	return NewClient("test-key", baseURL, "", 0, observability.NewMetricsForTesting(), observability.NewNopLogger())
}

func TestGenerateSummary_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  Kenya is warming rapidly.  "}}]
		}`))
	}))
	defer srv.Close()

	summary, err := newTestClient(srv.URL).GenerateSummary(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "Kenya is warming rapidly.", summary)
}

func TestGenerateSummary_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateSummary(context.Background(), testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "narrative request")
}

func TestGenerateSummary_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateSummary(context.Background(), testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
