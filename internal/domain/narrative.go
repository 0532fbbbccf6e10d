package domain

import "context"

// NarrativeInput is the structured payload handed to the narrative
// collaborator. Building it is deterministic; the generated prose is not,
// and is outside this core's contract.
type NarrativeInput struct {
	Location string
	Lat      float64
	Lon      float64

	// CurrentAvgTemp is the recent-period mean temperature in °C; nil when
	// the temperature series was too short.
	CurrentAvgTemp             *float64
	TemperatureAnomaly         *float64
	PrecipitationChangePercent *float64
	PrimaryRisk                RiskCategory
	Magnitude                  RiskMagnitude
}

// Narrator produces a free-text climate summary. A nil Narrator means the
// feature is disabled; failures must not block chart or map updates.
type Narrator interface {
	GenerateSummary(ctx context.Context, input NarrativeInput) (string, error)
}

// RecentMean returns the mean of the last n non-nil values of a series, or
// nil when fewer than n usable points exist.
func RecentMean(s YearlySeries, n int) *float64 {
	values := compact(s.Values)
	if n <= 0 || len(values) < n {
		return nil
	}
	m := mean(values[len(values)-n:])
	return &m
}
