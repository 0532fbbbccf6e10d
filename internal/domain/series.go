package domain

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// parentheticalRe matches a parenthetical qualifier anywhere in a country
// name, e.g. "Congo (Kinshasa)" or "Iran (Islamic Republic of)".
var parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)

// ClimateSample is one observation for one country. A nil Value means "no
// observation" and must never be coerced to zero.
type ClimateSample struct {
	Country string   `json:"country"`
	Year    int      `json:"year"`
	Value   *float64 `json:"value"`
}

// ClimateDataset holds all samples for one metric, loaded once per session.
type ClimateDataset struct {
	Metric  string          `json:"metric"` // "temperature" or "precipitation"
	Samples []ClimateSample `json:"samples"`
}

// YearlySeries is an index-aligned (year, value) series. Labels are strictly
// increasing with no duplicate years; a nil value is a gap, not a zero.
type YearlySeries struct {
	Labels []int      `json:"labels"`
	Values []*float64 `json:"values"`
}

// Empty reports whether the series carries no points. An empty series is the
// "not found" signal consumed by the risk assessor and the chart layer.
func (s YearlySeries) Empty() bool { return len(s.Labels) == 0 }

// NormalizeCountry canonicalizes a free-text country name into the join key
// used across datasets, boundary features, and geocoder responses. It strips
// parenthetical qualifiers, trims whitespace, and lowercases. Blank input
// yields "", the unmatchable sentinel.
func NormalizeCountry(name string) string {
	name = parentheticalRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(name))
}

// SeriesForCountry filters a dataset to one country's samples and returns a
// year-ordered series. Samples sharing a year are merged by the mean of their
// non-nil values, keeping labels strictly increasing. An empty normalized key
// or zero matching rows yields an empty series, never an error.
func SeriesForCountry(ds *ClimateDataset, country string) YearlySeries {
	key := NormalizeCountry(country)
	if ds == nil || key == "" {
		return YearlySeries{}
	}

	byYear := map[int][]*float64{}
	for _, s := range ds.Samples {
		if NormalizeCountry(s.Country) != key {
			continue
		}
		byYear[s.Year] = append(byYear[s.Year], s.Value)
	}
	if len(byYear) == 0 {
		return YearlySeries{}
	}

	years := sortedYears(byYear)
	series := YearlySeries{
		Labels: years,
		Values: make([]*float64, len(years)),
	}
	for i, y := range years {
		if mean, ok := meanOfNonNil(byYear[y]); ok {
			v := mean
			series.Values[i] = &v
		}
	}
	return series
}

// GlobalSeries averages all countries' non-nil samples per year. Values are
// rounded to 2 decimal places and labels sorted ascending as integers, never
// as strings. Years with zero valid samples are omitted rather than
// zero-filled.
func GlobalSeries(ds *ClimateDataset) YearlySeries {
	if ds == nil {
		return YearlySeries{}
	}

	byYear := map[int][]*float64{}
	for _, s := range ds.Samples {
		if s.Value == nil {
			continue
		}
		byYear[s.Year] = append(byYear[s.Year], s.Value)
	}
	if len(byYear) == 0 {
		return YearlySeries{}
	}

	years := sortedYears(byYear)
	series := YearlySeries{Labels: make([]int, 0, len(years)), Values: make([]*float64, 0, len(years))}
	for _, y := range years {
		mean, ok := meanOfNonNil(byYear[y])
		if !ok {
			continue
		}
		v := round(mean, 2)
		series.Labels = append(series.Labels, y)
		series.Values = append(series.Values, &v)
	}
	return series
}

// ToYearlyMeans reduces sub-annual samples to yearly means. The input is
// partitioned into consecutive chunks of perYear samples; each chunk becomes
// the mean of its non-nil values, or nil when the whole chunk is gaps. The
// final partial chunk is still aggregated from whatever samples it has.
func ToYearlyMeans(samples []*float64, perYear int) []*float64 {
	if perYear <= 0 || len(samples) == 0 {
		return nil
	}

	out := make([]*float64, 0, (len(samples)+perYear-1)/perYear)
	for start := 0; start < len(samples); start += perYear {
		end := start + perYear
		if end > len(samples) {
			end = len(samples)
		}
		if mean, ok := meanOfNonNil(samples[start:end]); ok {
			v := mean
			out = append(out, &v)
		} else {
			out = append(out, nil)
		}
	}
	return out
}

// meanOfNonNil returns the arithmetic mean of the non-nil values, and false
// when there are none.
func meanOfNonNil(values []*float64) (float64, bool) {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func sortedYears(byYear map[int][]*float64) []int {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
