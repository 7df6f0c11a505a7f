package chart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenubura/covidtrends/internal/config"
	"github.com/meenubura/covidtrends/internal/dataset"
	"github.com/meenubura/covidtrends/internal/forecast"
)

func testSeries(n int) *dataset.CountrySeries {
	cs := &dataset.CountrySeries{
		Country:   "India",
		Dates:     make([]time.Time, n),
		Confirmed: make([]float64, n),
		Deaths:    make([]float64, n),
	}
	start := time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		cs.Dates[i] = start.AddDate(0, 0, i)
		cs.Confirmed[i] = float64(i * i)
		cs.Deaths[i] = float64(i)
	}
	return cs
}

func testRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	return NewRenderer(config.ChartConfig{WidthInches: 6, HeightInches: 4}, dir), dir
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "chart file should not be empty")
	assert.Equal(t, ".png", filepath.Ext(path))
}

func TestRenderer_Cumulative(t *testing.T) {
	r, dir := testRenderer(t)

	path, err := r.Cumulative(testSeries(30))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cumulative.png"), path)
	assertPNG(t, path)
}

func TestRenderer_Daily(t *testing.T) {
	r, _ := testRenderer(t)

	path, err := r.Daily(testSeries(30), 7)
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestRenderer_ForecastOverlay(t *testing.T) {
	r, _ := testRenderer(t)
	cs := testSeries(120)

	points := make([]forecast.Point, 14)
	last := cs.Dates[len(cs.Dates)-1]
	for i := range points {
		points[i] = forecast.Point{Date: last.AddDate(0, 0, i+1), Value: 250}
	}

	// historyDays caps how much history appears alongside the forecast
	path, err := r.ForecastOverlay(cs, points, 90)
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestRenderer_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	r := NewRenderer(config.ChartConfig{WidthInches: 6, HeightInches: 4}, dir)

	_, err := r.Cumulative(testSeries(10))
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
