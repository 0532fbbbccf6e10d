package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		csv := "name,year,value\nBrazil,2000,24.8\nBrazil,2001,25.1\nChad,2000,27.3\n"
		ds, err := LoadCSV(strings.NewReader(csv), MetricTemperature)
		require.NoError(t, err)

		assert.Equal(t, MetricTemperature, ds.Metric)
		require.Len(t, ds.Samples, 3)
		assert.Equal(t, "Brazil", ds.Samples[0].Country)
		assert.Equal(t, 2000, ds.Samples[0].Year)
		assert.Equal(t, 24.8, *ds.Samples[0].Value)
	})

	t.Run("missing name rows skipped", func(t *testing.T) {
		csv := "name,year,value\n,2000,24.8\nChad,2001,27.0\n"
		ds, err := LoadCSV(strings.NewReader(csv), MetricTemperature)
		require.NoError(t, err)
		require.Len(t, ds.Samples, 1)
		assert.Equal(t, "Chad", ds.Samples[0].Country)
	})

	t.Run("empty value kept as nil sample", func(t *testing.T) {
		csv := "name,year,value\nChad,2000,\nChad,2001,27.0\n"
		ds, err := LoadCSV(strings.NewReader(csv), MetricPrecipitation)
		require.NoError(t, err)
		require.Len(t, ds.Samples, 2)
		assert.Nil(t, ds.Samples[0].Value, "missing observation must not become 0")
		assert.Equal(t, 27.0, *ds.Samples[1].Value)
	})

	t.Run("unparseable year skipped", func(t *testing.T) {
		csv := "name,year,value\nChad,not-a-year,1\nChad,2001,2\n"
		ds, err := LoadCSV(strings.NewReader(csv), MetricTemperature)
		require.NoError(t, err)
		assert.Len(t, ds.Samples, 1)
	})

	t.Run("column order free, header case-insensitive", func(t *testing.T) {
		csv := "Value,Name,Year\n3.4,Peru,1999\n"
		ds, err := LoadCSV(strings.NewReader(csv), MetricTemperature)
		require.NoError(t, err)
		require.Len(t, ds.Samples, 1)
		assert.Equal(t, "Peru", ds.Samples[0].Country)
		assert.Equal(t, 1999, ds.Samples[0].Year)
	})

	t.Run("missing column", func(t *testing.T) {
		csv := "name,year\nChad,2000\n"
		_, err := LoadCSV(strings.NewReader(csv), MetricTemperature)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "value")
	})

	t.Run("no data rows", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("name,year,value\n"), MetricTemperature)
		require.Error(t, err)
	})
}

func TestLoadMonthlyJSON(t *testing.T) {
	t.Run("monthly arrays become yearly means", func(t *testing.T) {
		// 14 months: one full year plus a partial second.
		body := `[{"country":"Kenya","tas":[20,20,20,20,20,20,22,22,22,22,22,22,25,27],"pr":[50,50,50,50,50,50,50,50,50,50,50,50,60,80]}]`
		temp, precip, err := LoadMonthlyJSON(strings.NewReader(body), 1901)
		require.NoError(t, err)

		require.Len(t, temp.Samples, 2)
		assert.Equal(t, "Kenya", temp.Samples[0].Country)
		assert.Equal(t, 1901, temp.Samples[0].Year)
		assert.Equal(t, 21.0, *temp.Samples[0].Value)
		assert.Equal(t, 1902, temp.Samples[1].Year)
		assert.Equal(t, 26.0, *temp.Samples[1].Value)

		require.Len(t, precip.Samples, 2)
		assert.Equal(t, 50.0, *precip.Samples[0].Value)
		assert.Equal(t, 70.0, *precip.Samples[1].Value)
	})

	t.Run("null months preserved as gaps", func(t *testing.T) {
		body := `[{"country":"Kenya","tas":[null,null,null,null,null,null,null,null,null,null,null,null],"pr":[]}]`
		temp, _, err := LoadMonthlyJSON(strings.NewReader(body), 1901)
		require.NoError(t, err)
		require.Len(t, temp.Samples, 1)
		assert.Nil(t, temp.Samples[0].Value)
	})

	t.Run("blank country skipped", func(t *testing.T) {
		body := `[{"country":"","tas":[1],"pr":[1]},{"country":"Peru","tas":[2],"pr":[3]}]`
		temp, precip, err := LoadMonthlyJSON(strings.NewReader(body), 1901)
		require.NoError(t, err)
		require.Len(t, temp.Samples, 1)
		assert.Equal(t, "Peru", temp.Samples[0].Country)
		require.Len(t, precip.Samples, 1)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, _, err := LoadMonthlyJSON(strings.NewReader(`{"not":"an array"}`), 1901)
		require.Error(t, err)
	})

	t.Run("no usable records", func(t *testing.T) {
		_, _, err := LoadMonthlyJSON(strings.NewReader(`[]`), 1901)
		require.Error(t, err)
	})
}
