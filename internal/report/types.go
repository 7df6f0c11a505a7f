package report

import (
	"time"

	"github.com/meenubura/covidtrends/internal/dataset"
	"github.com/meenubura/covidtrends/internal/forecast"
)

// ReportData is everything the markdown report renders
type ReportData struct {
	RunID       string
	GeneratedAt time.Time

	Summary  *dataset.Summary
	Model    *forecast.Result
	Forecast []forecast.Point

	// Data provenance
	ConfirmedFromCache bool
	DeathsFromCache    bool

	// Rendered chart paths, relative to the report
	CumulativeChart string
	DailyChart      string
	ForecastChart   string
}

// Artifacts lists what Generate wrote to disk
type Artifacts struct {
	ReportPath string
	Charts     []string
}
