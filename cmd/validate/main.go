// Command validate performs integrity checks across the dashboard's data
// sources: the temperature CSV, the precipitation CSV, and the optional
// country boundary GeoJSON. It verifies parseability, cross-metric
// consistency, boundary coverage, and risk assessment sanity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -temperature-csv data/mock/temperature.csv \
//	  -precipitation-csv data/mock/precipitation.csv \
//	  -boundary-geojson data/mock/countries.geojson
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-impact-explorer/internal/boundary"
	"github.com/couchcryptid/climate-impact-explorer/internal/dataset"
	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tempPath := flag.String("temperature-csv", "", "path to the temperature CSV dataset")
	precipPath := flag.String("precipitation-csv", "", "path to the precipitation CSV dataset")
	boundaryPath := flag.String("boundary-geojson", "", "optional path to the country boundary GeoJSON")
	flag.Parse()

	if *tempPath == "" || *precipPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*tempPath, *precipPath, *boundaryPath); code != 0 {
		os.Exit(code)
	}
}

func run(tempPath, precipPath, boundaryPath string) int {
	// Fixed clock for reproducible AssessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Climate Data Integrity Validation ===")
	fmt.Println()

	temp, err := dataset.LoadCSVFile(tempPath, dataset.MetricTemperature)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load temperature CSV: %v\n", err)
		return 1
	}
	precip, err := dataset.LoadCSVFile(precipPath, dataset.MetricPrecipitation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load precipitation CSV: %v\n", err)
		return 1
	}

	var boundaries *boundary.Set
	if boundaryPath != "" {
		boundaries, err = boundary.LoadFile(boundaryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load boundary GeoJSON: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateDataset(temp),
		validateDataset(precip),
		validateCrossMetric(temp, precip),
		validateBoundaryCoverage(temp, boundaries),
		validateRiskSanity(temp, precip),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Samples: %d temperature, %d precipitation\n", len(temp.Samples), len(precip.Samples))
	if boundaries != nil {
		fmt.Printf("Boundaries: %d named polygons\n", boundaries.Len())
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// countries returns the distinct normalized country keys of a dataset.
func countries(ds *domain.ClimateDataset) map[string]bool {
	set := map[string]bool{}
	for i := range ds.Samples {
		set[domain.NormalizeCountry(ds.Samples[i].Country)] = true
	}
	return set
}

// validateDataset checks one parsed dataset for structural problems: usable
// sample counts, plausible years, and finite values.
func validateDataset(ds *domain.ClimateDataset) *phase {
	p := &phase{name: fmt.Sprintf("Dataset Integrity (%s)", ds.Metric)}

	if len(ds.Samples) == 0 {
		p.errorf("dataset contains no samples")
		return p
	}

	nonNil := 0
	for i := range ds.Samples {
		s := &ds.Samples[i]
		if domain.NormalizeCountry(s.Country) == "" {
			p.errorf("sample %d: unmatchable country name %q", i, s.Country)
		}
		if s.Year < 1800 || s.Year > 2100 {
			p.errorf("sample %d (%s): implausible year %d", i, s.Country, s.Year)
		}
		if s.Value != nil {
			if math.IsNaN(*s.Value) || math.IsInf(*s.Value, 0) {
				p.errorf("sample %d (%s, %d): non-finite value", i, s.Country, s.Year)
			}
			nonNil++
		}
	}

	if nonNil == 0 {
		p.errorf("dataset has no non-null values")
	}

	for country := range countries(ds) {
		series := domain.SeriesForCountry(ds, country)
		for i := 1; i < len(series.Labels); i++ {
			if series.Labels[i] <= series.Labels[i-1] {
				p.errorf("%s: year labels not strictly increasing at index %d", country, i)
			}
		}
	}

	return p
}

// validateCrossMetric checks that the two datasets describe the same world:
// matching country sets and overlapping year coverage.
func validateCrossMetric(temp, precip *domain.ClimateDataset) *phase {
	p := &phase{name: "Cross-Metric Consistency"}

	tc, pc := countries(temp), countries(precip)
	for c := range tc {
		if !pc[c] {
			p.errorf("country %q has temperature data but no precipitation data", c)
		}
	}
	for c := range pc {
		if !tc[c] {
			p.errorf("country %q has precipitation data but no temperature data", c)
		}
	}

	for c := range tc {
		if !pc[c] {
			continue
		}
		ts := domain.SeriesForCountry(temp, c)
		ps := domain.SeriesForCountry(precip, c)
		if len(ts.Labels) == 0 || len(ps.Labels) == 0 {
			continue
		}
		if ts.Labels[0] != ps.Labels[0] || ts.Labels[len(ts.Labels)-1] != ps.Labels[len(ps.Labels)-1] {
			p.errorf("country %q: year coverage differs (temperature %d-%d, precipitation %d-%d)",
				c, ts.Labels[0], ts.Labels[len(ts.Labels)-1], ps.Labels[0], ps.Labels[len(ps.Labels)-1])
		}
	}

	return p
}

// validateBoundaryCoverage checks that boundary polygons and dataset
// countries line up in both directions.
func validateBoundaryCoverage(temp *domain.ClimateDataset, boundaries *boundary.Set) *phase {
	p := &phase{name: "Boundary Coverage"}
	if boundaries == nil {
		fmt.Println("  Note: no boundary file given, skipping coverage checks")
		return p
	}

	for c := range countries(temp) {
		if boundaries.Find(c) == nil {
			p.errorf("country %q has climate data but no boundary polygon", c)
		}
	}

	return p
}

// validateRiskSanity runs the real risk assessment over every country and
// checks the output for impossible combinations.
func validateRiskSanity(temp, precip *domain.ClimateDataset) *phase {
	p := &phase{name: "Risk Assessment Sanity"}

	for c := range countries(temp) {
		ts := domain.SeriesForCountry(temp, c)
		ps := domain.SeriesForCountry(precip, c)
		risk := domain.AssessRisk(ts, ps)

		insufficient := risk.PrimaryRisk == domain.RiskInsufficientData
		if insufficient != (risk.Magnitude == domain.MagnitudeNotApplicable) {
			p.errorf("%s: risk %s paired with magnitude %s", c, risk.PrimaryRisk, risk.Magnitude)
		}
		if insufficient {
			fmt.Printf("  Note: %q classified as insufficient data (%d points)\n", c, len(ts.Labels))
			continue
		}

		if risk.TemperatureAnomaly != nil && math.Abs(*risk.TemperatureAnomaly) > 20 {
			p.errorf("%s: implausible temperature anomaly %+.2f°C", c, *risk.TemperatureAnomaly)
		}
		if risk.PrecipitationChangePercent != nil && math.Abs(*risk.PrecipitationChangePercent) > 500 {
			p.errorf("%s: implausible precipitation change %+.1f%%", c, *risk.PrecipitationChangePercent)
		}
		if risk.AssessedAt.IsZero() {
			p.errorf("%s: assessed_at is zero", c)
		}
	}

	return p
}
