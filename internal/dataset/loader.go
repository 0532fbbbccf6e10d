// Package dataset loads climate time series into memory and caches them for
// the lifetime of a session.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// Metric names used as cache keys throughout the service.
const (
	MetricTemperature   = "temperature"
	MetricPrecipitation = "precipitation"
)

// LoadCSV parses a tabular dataset with columns {name, year, value}. Header
// matching is case-insensitive and column order is free. Rows with a missing
// name or unparseable year are skipped; an empty or unparseable value becomes
// a nil sample, preserved as a gap rather than dropped or zeroed.
func LoadCSV(r io.Reader, metric string) (*domain.ClimateDataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "year", "value"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	ds := &domain.ClimateDataset{Metric: metric}
	for _, row := range rows[1:] {
		name := get(row, colIdx, "name")
		if strings.TrimSpace(name) == "" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(get(row, colIdx, "year")))
		if err != nil {
			continue
		}

		sample := domain.ClimateSample{Country: name, Year: year}
		if raw := strings.TrimSpace(get(row, colIdx, "value")); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				sample.Value = &v
			}
		}
		ds.Samples = append(ds.Samples, sample)
	}

	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("csv contained no usable rows")
	}
	return ds, nil
}

// LoadCSVFile opens and parses a CSV dataset from disk.
func LoadCSVFile(path, metric string) (*domain.ClimateDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return LoadCSV(f, metric)
}

// monthlyRecord is one country's record in the monthly JSON variant: parallel
// arrays of monthly surface temperature (tas) and precipitation (pr) starting
// at startYear. A JSON null inside an array marks a missing month.
type monthlyRecord struct {
	Country string     `json:"country"`
	Tas     []*float64 `json:"tas"`
	Pr      []*float64 `json:"pr"`
}

// LoadMonthlyJSON parses the single-endpoint JSON variant and reduces each
// country's monthly arrays to yearly means. Returns one dataset per metric.
// Records with a blank country are skipped; empty arrays contribute nothing.
func LoadMonthlyJSON(r io.Reader, startYear int) (temperature, precipitation *domain.ClimateDataset, err error) {
	var records []monthlyRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("decode monthly json: %w", err)
	}

	temperature = &domain.ClimateDataset{Metric: MetricTemperature}
	precipitation = &domain.ClimateDataset{Metric: MetricPrecipitation}

	for _, rec := range records {
		if strings.TrimSpace(rec.Country) == "" {
			continue
		}
		appendYearly(temperature, rec.Country, rec.Tas, startYear)
		appendYearly(precipitation, rec.Country, rec.Pr, startYear)
	}

	if len(temperature.Samples) == 0 && len(precipitation.Samples) == 0 {
		return nil, nil, fmt.Errorf("monthly json contained no usable records")
	}
	return temperature, precipitation, nil
}

func appendYearly(ds *domain.ClimateDataset, country string, monthly []*float64, startYear int) {
	for i, v := range domain.ToYearlyMeans(monthly, 12) {
		ds.Samples = append(ds.Samples, domain.ClimateSample{
			Country: country,
			Year:    startYear + i,
			Value:   v,
		})
	}
}

func get(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
