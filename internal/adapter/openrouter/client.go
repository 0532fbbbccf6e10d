// Package openrouter implements the narrative collaborator against the
// OpenRouter chat-completions API (OpenAI-compatible).
package openrouter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
	"github.com/couchcryptid/climate-impact-explorer/internal/observability"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "moonshotai/kimi-k2:free"

	systemPrompt = "You are a helpful and concise climate data interpreter. " +
		"Only provide the summary text based on the user's prompt."
)

// Client generates climate risk narratives. It implements domain.Narrator.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32 // kept low for factual consistency
	maxTokens   int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an OpenRouter narrative client. Empty baseURL and model
// select the OpenRouter endpoint and its free Kimi-K2 model.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.5,
		maxTokens:   500,
		metrics:     metrics,
		logger:      logger,
	}
}

// GenerateSummary builds the climate prompt from the structured input and
// requests a three-paragraph narrative. Failures are reported to the caller,
// which isolates them from chart and map updates.
func (c *Client) GenerateSummary(ctx context.Context, input domain.NarrativeInput) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildClimatePrompt(input)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.metrics.NarrativeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("narrative request: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.metrics.NarrativeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("narrative response had no choices")
	}

	c.metrics.NarrativeRequests.WithLabelValues("success").Inc()
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildClimatePrompt renders the structured risk payload into the meta-prompt
// sent to the model. The output is deterministic for a given input: same
// metrics in, same prompt out.
func BuildClimatePrompt(input domain.NarrativeInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a climate change communication expert. Provide a concise, engaging, "+
		"and impactful summary of the climate change situation for the location %q "+
		"(Latitude: %.4f, Longitude: %.4f).\n\n", input.Location, input.Lat, input.Lon)

	b.WriteString("Use the following data points to inform your summary:\n")
	if input.CurrentAvgTemp != nil {
		fmt.Fprintf(&b, "- Current Average Annual Temperature: %.1f°C\n", *input.CurrentAvgTemp)
	}
	if input.TemperatureAnomaly != nil {
		fmt.Fprintf(&b, "- Temperature Anomaly (recent vs baseline): %+.2f°C\n", *input.TemperatureAnomaly)
	}
	if input.PrecipitationChangePercent != nil {
		fmt.Fprintf(&b, "- Precipitation Change (recent vs baseline): %+.1f%%\n", *input.PrecipitationChangePercent)
	}
	fmt.Fprintf(&b, "- Primary Risk Classification: %s (magnitude: %s)\n\n", input.PrimaryRisk, input.Magnitude)

	b.WriteString("Write a 3-paragraph summary that includes:\n" +
		"1. A strong, current assessment of the primary climate risks.\n" +
		"2. A brief comparison of the current situation to global averages.\n" +
		"3. A concluding positive statement about adaptation or mitigation efforts.\n" +
		"Format the response using Markdown paragraphs.")

	return b.String()
}
