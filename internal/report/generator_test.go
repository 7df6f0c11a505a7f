package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenubura/covidtrends/internal/dataset"
	"github.com/meenubura/covidtrends/internal/forecast"
)

func testReportData() *ReportData {
	return &ReportData{
		RunID:       NewRunID(),
		GeneratedAt: time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
		Summary: &dataset.Summary{
			Country:        "India",
			FirstDate:      time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC),
			LastDate:       time.Date(2021, 5, 31, 0, 0, 0, 0, time.UTC),
			Days:           496,
			TotalConfirmed: 28047534,
			TotalDeaths:    329100,
			LatestNewCases: 127510,
			Avg7dNewCases:  152000,
			PeakNewCases:   414188,
			PeakDate:       time.Date(2021, 5, 7, 0, 0, 0, 0, time.UTC),
			CaseFatality:   0.0117,
		},
		Model: &forecast.Result{
			Order:           "ARIMA(2,1,3)",
			AIC:             10432.1,
			ModelsEvaluated: 17,
			MAE:             8123.4,
			RMSE:            11950.2,
			NaiveMAE:        9870.0,
		},
		Forecast: []forecast.Point{
			{Date: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), Value: 120000},
			{Date: time.Date(2021, 6, 2, 0, 0, 0, 0, time.UTC), Value: 114000},
		},
		CumulativeChart: "cumulative.png",
		DailyChart:      "daily.png",
		ForecastChart:   "forecast.png",
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	data := testReportData()
	artifacts, err := g.Generate(data)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report.md"), artifacts.ReportPath)
	assert.Len(t, artifacts.Charts, 3)

	content, err := os.ReadFile(artifacts.ReportPath)
	require.NoError(t, err)
	md := string(content)

	assert.Contains(t, md, "# COVID-19 trend report: India")
	assert.Contains(t, md, data.RunID)
	assert.Contains(t, md, "28,047,534", "totals carry thousands separators")
	assert.Contains(t, md, "414,188")
	assert.Contains(t, md, "2021-05-07")
	assert.Contains(t, md, "ARIMA(2,1,3)")
	assert.Contains(t, md, "| 2021-06-01 | 120,000 |")
	assert.Contains(t, md, "![Cumulative cases and deaths](cumulative.png)")
	assert.Contains(t, md, "![Daily new cases](daily.png)")
	assert.Contains(t, md, "## Data caveats and bias")
	assert.Contains(t, md, "Reporting lag")
}

func TestGenerator_Generate_NoForecast(t *testing.T) {
	g := NewGenerator(t.TempDir())

	data := testReportData()
	data.Model = nil
	data.Forecast = nil
	data.ForecastChart = ""

	artifacts, err := g.Generate(data)
	require.NoError(t, err)
	assert.Len(t, artifacts.Charts, 2)

	content, err := os.ReadFile(artifacts.ReportPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "## Forecast")
	assert.Contains(t, string(content), "## Data caveats and bias")
}

func TestGenerator_Generate_MissingSummary(t *testing.T) {
	g := NewGenerator(t.TempDir())

	_, err := g.Generate(&ReportData{})
	assert.Error(t, err)
}

func TestGenerator_Generate_CacheNote(t *testing.T) {
	g := NewGenerator(t.TempDir())

	data := testReportData()
	data.ConfirmedFromCache = true

	artifacts, err := g.Generate(data)
	require.NoError(t, err)

	content, err := os.ReadFile(artifacts.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "served from the local cache")
}

func TestNewRunID_Unique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}
