package app

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenubura/covidtrends/internal/config"
	steplog "github.com/meenubura/covidtrends/internal/log"
)

// buildWideCSV fabricates a CSSE-shaped wide table for one country
func buildWideCSV(country string, days int, cumulative func(day int) float64) string {
	var b strings.Builder
	b.WriteString("Province/State,Country/Region,Lat,Long")
	start := time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		b.WriteString("," + start.AddDate(0, 0, i).Format("1/2/06"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, ",%s,20.59,78.96", country)
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, ",%.0f", cumulative(i))
	}
	b.WriteString("\n")
	return b.String()
}

func testPipelineConfig(t *testing.T, days int) *config.Config {
	t.Helper()

	confirmed := buildWideCSV("India", days, func(day int) float64 {
		// Rising cumulative curve with a weekly reporting ripple
		return 1000*float64(day) + 200*math.Abs(math.Sin(2*math.Pi*float64(day)/7))
	})
	deaths := buildWideCSV("India", days, func(day int) float64 {
		return 10 * float64(day)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/confirmed.csv":
			w.Write([]byte(confirmed))
		case "/deaths.csv":
			w.Write([]byte(deaths))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Sources.ConfirmedURL = srv.URL + "/confirmed.csv"
	cfg.Sources.DeathsURL = srv.URL + "/deaths.csv"
	cfg.Cache.Dir = t.TempDir()
	cfg.Output.Dir = t.TempDir()
	cfg.Forecast.Horizon = 7
	// Keep the model search small for test speed
	cfg.Forecast.MaxP = 2
	cfg.Forecast.MaxQ = 2
	return cfg
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	cfg := testPipelineConfig(t, 60)

	pipeline := NewPipeline(cfg)
	artifacts, err := pipeline.Run(context.Background(), Options{Progress: steplog.ModePlain})
	require.NoError(t, err)

	content, err := os.ReadFile(artifacts.ReportPath)
	require.NoError(t, err)
	md := string(content)
	assert.Contains(t, md, "India")
	assert.Contains(t, md, "## Forecast")
	assert.Contains(t, md, "## Data caveats and bias")

	require.Len(t, artifacts.Charts, 3)
	for _, c := range artifacts.Charts {
		info, err := os.Stat(c)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	// Both tables landed in the cache
	for _, name := range []string{"confirmed.csv", "deaths.csv"} {
		_, err := os.Stat(filepath.Join(cfg.Cache.Dir, name))
		assert.NoError(t, err, "expected cached %s", name)
	}
}

func TestPipeline_Run_SeriesTooShortForForecast(t *testing.T) {
	cfg := testPipelineConfig(t, 10)

	pipeline := NewPipeline(cfg)
	_, err := pipeline.Run(context.Background(), Options{Progress: steplog.ModePlain})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast step")
}

func TestPipeline_Run_UnknownCountry(t *testing.T) {
	cfg := testPipelineConfig(t, 60)
	cfg.Country = "Atlantis"

	pipeline := NewPipeline(cfg)
	_, err := pipeline.Run(context.Background(), Options{Progress: steplog.ModePlain})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestPipeline_LoadSeries(t *testing.T) {
	cfg := testPipelineConfig(t, 45)

	pipeline := NewPipeline(cfg)
	cs, confirmedFetch, deathsFetch, err := pipeline.LoadSeries(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "India", cs.Country)
	assert.Equal(t, 45, cs.Len())
	assert.False(t, confirmedFetch.FromCache)
	assert.False(t, deathsFetch.FromCache)

	// Second load comes from the cache
	_, confirmedFetch, _, err = pipeline.LoadSeries(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, confirmedFetch.FromCache)
}

func TestPipeline_Run_OfflineWithoutCache(t *testing.T) {
	cfg := testPipelineConfig(t, 60)

	pipeline := NewPipeline(cfg)
	_, err := pipeline.Run(context.Background(), Options{Offline: true, Progress: steplog.ModePlain})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch step")
}
