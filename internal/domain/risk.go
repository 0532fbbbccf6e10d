package domain

import (
	"math"
	"time"
)

// RiskCategory is the primary climate-risk classification for a country.
type RiskCategory string

const (
	RiskTemperatureWarming   RiskCategory = "temperature_warming"
	RiskPrecipitationDrought RiskCategory = "precipitation_drought"
	RiskPrecipitationFlood   RiskCategory = "precipitation_flood"
	RiskBothSignificant      RiskCategory = "both_significant"
	RiskMonitor              RiskCategory = "monitor"
	RiskInsufficientData     RiskCategory = "insufficient_data"
)

// RiskMagnitude is the severity of the winning risk signal.
type RiskMagnitude string

const (
	MagnitudeLow           RiskMagnitude = "low"
	MagnitudeMedium        RiskMagnitude = "medium"
	MagnitudeHigh          RiskMagnitude = "high"
	MagnitudeNotApplicable RiskMagnitude = "n/a"
)

const (
	// baselineYears and recentYears define the comparison windows. Both
	// series need baselineYears+recentYears usable points for a verdict.
	baselineYears = 30
	recentYears   = 5

	// minBaselinePrecip guards the percent-change division. Below this the
	// change is undefined and left nil rather than becoming Inf or NaN.
	minBaselinePrecip = 1e-6
)

// RiskAssessment is the derived verdict for one country. Computed fresh per
// query and never persisted.
type RiskAssessment struct {
	PrimaryRisk RiskCategory  `json:"primary_risk"`
	Magnitude   RiskMagnitude `json:"magnitude"`

	// TemperatureAnomaly is recent minus baseline mean in absolute degrees,
	// rounded to 2 decimals. Nil when data was insufficient.
	TemperatureAnomaly *float64 `json:"temperature_anomaly"`

	// PrecipitationChangePercent is the relative baseline-to-recent change,
	// rounded to 1 decimal. Nil when insufficient or the baseline was ~0.
	PrecipitationChangePercent *float64 `json:"precipitation_change_percent"`

	AssessedAt time.Time `json:"assessed_at"`
}

// AssessRisk classifies a country's primary climate risk from its temperature
// and precipitation series. Gaps (nil values) are skipped; each series must
// retain at least 35 usable points, otherwise the defined insufficient-data
// state is returned. Score comparison happens at full precision; only the
// reported anomaly and change percent are rounded for display.
func AssessRisk(temperature, precipitation YearlySeries) RiskAssessment {
	temps := compact(temperature.Values)
	precips := compact(precipitation.Values)

	minPoints := baselineYears + recentYears
	if len(temps) < minPoints || len(precips) < minPoints {
		return RiskAssessment{
			PrimaryRisk: RiskInsufficientData,
			Magnitude:   MagnitudeNotApplicable,
			AssessedAt:  clock.Now(),
		}
	}

	tempAnomaly := mean(temps[len(temps)-recentYears:]) - mean(temps[:baselineYears])

	baselinePrecip := mean(precips[:baselineYears])
	recentPrecip := mean(precips[len(precips)-recentYears:])

	var precipChange *float64
	if math.Abs(baselinePrecip) >= minBaselinePrecip {
		change := (recentPrecip - baselinePrecip) / baselinePrecip * 100
		precipChange = &change
	}

	tempScore := temperatureScore(tempAnomaly)
	precipScore := 0.0
	if precipChange != nil {
		precipScore = precipitationScore(*precipChange)
	}

	category, magnitude := classify(tempScore, precipScore, precipChange)

	assessment := RiskAssessment{
		PrimaryRisk: category,
		Magnitude:   magnitude,
		AssessedAt:  clock.Now(),
	}
	anomaly := round(tempAnomaly, 2)
	assessment.TemperatureAnomaly = &anomaly
	if precipChange != nil {
		change := round(*precipChange, 1)
		assessment.PrecipitationChangePercent = &change
	}
	return assessment
}

// temperatureScore ladders the absolute warming anomaly in °C.
func temperatureScore(anomaly float64) float64 {
	switch {
	case anomaly >= 1.5:
		return 3
	case anomaly >= 1.0:
		return 2
	case anomaly > 0:
		return 1
	default:
		return 0
	}
}

// precipitationScore ladders the percent change. Large decreases outrank
// equivalent increases: a drought signal below −10% scores 3 outright, while
// an increase needs |Δ| ≥ 15% just to reach 2.5.
func precipitationScore(change float64) float64 {
	abs := math.Abs(change)
	switch {
	case change < -10:
		return 3
	case abs >= 15:
		return 2.5
	case abs >= 5:
		return 2
	case abs > 0:
		return 1
	default:
		return 0
	}
}

// classify picks the primary category from the two scores and derives the
// magnitude from the winning score. On a tie both signals are reported, but
// magnitude comes from the temperature score alone; the precipitation side
// of a tie does not affect it.
func classify(tempScore, precipScore float64, precipChange *float64) (RiskCategory, RiskMagnitude) {
	switch {
	case tempScore > precipScore:
		return RiskTemperatureWarming, scoreMagnitude(tempScore)
	case precipScore > tempScore:
		if precipChange != nil && *precipChange < 0 {
			return RiskPrecipitationDrought, scoreMagnitude(precipScore)
		}
		return RiskPrecipitationFlood, scoreMagnitude(precipScore)
	case tempScore > 0:
		return RiskBothSignificant, scoreMagnitude(tempScore)
	default:
		// Both signals flat. Magnitude stays low rather than n/a: n/a is
		// reserved for the insufficient-data state.
		return RiskMonitor, MagnitudeLow
	}
}

func scoreMagnitude(score float64) RiskMagnitude {
	switch {
	case score >= 3:
		return MagnitudeHigh
	case score >= 2:
		return MagnitudeMedium
	case score >= 1:
		return MagnitudeLow
	default:
		return MagnitudeNotApplicable
	}
}

// RiskColor maps a magnitude to the map-marker color used by the rendering
// surface.
func RiskColor(m RiskMagnitude) string {
	switch m {
	case MagnitudeHigh:
		return "#d73027"
	case MagnitudeMedium:
		return "#fc8d59"
	case MagnitudeLow:
		return "#fee08b"
	default:
		return "#999999"
	}
}

// compact returns the non-nil values in order.
func compact(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
