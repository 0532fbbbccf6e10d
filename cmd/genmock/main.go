// Command genmock generates deterministic climate data fixtures for the
// dashboard test suites: a temperature CSV, a precipitation CSV, and a
// country boundary GeoJSON. Each synthetic country is shaped to land in a
// specific risk category, and the actual domain package classifies the
// output so the printed stats match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-impact-explorer/internal/dataset"
	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

const (
	startYear = 1961
	numYears  = 40
)

// countryDef shapes one synthetic country's series. Temperature climbs
// linearly by tempTrend over the full range; precipitation scales from
// precipBase by precipFactor over the recent years.
type countryDef struct {
	name         string
	lonOffset    float64
	tempBase     float64
	tempTrend    float64
	precipBase   float64
	precipFactor float64
	years        int // 0 means the full range
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for generated fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	// Fixed clock for reproducible AssessedAt timestamps in the stats run.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	defs := []countryDef{
		{name: "Warmland", lonOffset: 0, tempBase: 14.0, tempTrend: 1.8, precipBase: 900, precipFactor: 1.0},
		{name: "Dryland", lonOffset: 15, tempBase: 22.0, tempTrend: 0.3, precipBase: 400, precipFactor: 0.75},
		{name: "Wetland", lonOffset: 30, tempBase: 18.0, tempTrend: 0.2, precipBase: 1200, precipFactor: 1.25},
		{name: "Steadyland", lonOffset: 45, tempBase: 10.0, tempTrend: 0.0, precipBase: 700, precipFactor: 1.0},
		{name: "Newland", lonOffset: 60, tempBase: 16.0, tempTrend: 0.5, precipBase: 800, precipFactor: 1.0, years: 20},
	}

	tempCSV, precipCSV := buildCSVs(defs)

	if err := writeFile(filepath.Join(*outDir, "temperature.csv"), tempCSV); err != nil {
		return fmt.Errorf("writing temperature fixture: %w", err)
	}
	if err := writeFile(filepath.Join(*outDir, "precipitation.csv"), precipCSV); err != nil {
		return fmt.Errorf("writing precipitation fixture: %w", err)
	}
	if err := writeBoundaries(filepath.Join(*outDir, "countries.geojson"), defs); err != nil {
		return fmt.Errorf("writing boundary fixture: %w", err)
	}
	log.Printf("wrote fixtures to %s", *outDir)

	printStats(defs, tempCSV, precipCSV)
	return nil
}

func seriesFor(d countryDef) (temp, precip []float64) {
	years := d.years
	if years == 0 {
		years = numYears
	}
	for i := 0; i < years; i++ {
		frac := float64(i) / float64(numYears-1)
		temp = append(temp, d.tempBase+d.tempTrend*frac)

		p := d.precipBase
		if i >= years-5 {
			p = d.precipBase * d.precipFactor
		}
		precip = append(precip, p)
	}
	return temp, precip
}

func buildCSVs(defs []countryDef) (tempCSV, precipCSV string) {
	var tb, pb strings.Builder
	tb.WriteString("name,year,value\n")
	pb.WriteString("name,year,value\n")
	for _, d := range defs {
		temp, precip := seriesFor(d)
		for i := range temp {
			fmt.Fprintf(&tb, "%s,%d,%.3f\n", d.name, startYear+i, temp[i])
			fmt.Fprintf(&pb, "%s,%d,%.3f\n", d.name, startYear+i, precip[i])
		}
	}
	return tb.String(), pb.String()
}

// writeBoundaries emits a 10x10 degree square per country along the equator.
func writeBoundaries(path string, defs []countryDef) error {
	type feature struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Geometry   map[string]any `json:"geometry"`
	}

	features := make([]feature, 0, len(defs))
	for _, d := range defs {
		w, e := d.lonOffset, d.lonOffset+10
		features = append(features, feature{
			Type:       "Feature",
			Properties: map[string]any{"name": d.name},
			Geometry: map[string]any{
				"type": "Polygon",
				"coordinates": [][][2]float64{{
					{w, -5}, {e, -5}, {e, 5}, {w, 5}, {w, -5},
				}},
			},
		})
	}

	data, err := json.MarshalIndent(map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, string(data)+"\n")
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// printStats classifies every generated country through the real loaders and
// risk assessment, for updating test assertions.
func printStats(defs []countryDef, tempCSV, precipCSV string) {
	temp, err := dataset.LoadCSV(strings.NewReader(tempCSV), dataset.MetricTemperature)
	if err != nil {
		log.Printf("stats: %v", err)
		return
	}
	precip, err := dataset.LoadCSV(strings.NewReader(precipCSV), dataset.MetricPrecipitation)
	if err != nil {
		log.Printf("stats: %v", err)
		return
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Samples: temperature=%d, precipitation=%d\n", len(temp.Samples), len(precip.Samples))

	for _, d := range defs {
		ts := domain.SeriesForCountry(temp, d.name)
		ps := domain.SeriesForCountry(precip, d.name)
		risk := domain.AssessRisk(ts, ps)

		fmt.Printf("%s: risk=%s magnitude=%s", d.name, risk.PrimaryRisk, risk.Magnitude)
		if risk.TemperatureAnomaly != nil {
			fmt.Printf(" anomaly=%+.2f°C", *risk.TemperatureAnomaly)
		}
		if risk.PrecipitationChangePercent != nil {
			fmt.Printf(" precip=%+.1f%%", *risk.PrecipitationChangePercent)
		}
		fmt.Println()
	}

	global := domain.GlobalSeries(temp)
	fmt.Printf("Global temperature: %d years", len(global.Labels))
	if len(global.Labels) > 0 {
		fmt.Printf(" (%d-%d)", global.Labels[0], global.Labels[len(global.Labels)-1])
	}
	fmt.Println()
}
