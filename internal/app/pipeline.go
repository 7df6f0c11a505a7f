package app

import (
	"context"
	"fmt"
	"time"

	"github.com/meenubura/covidtrends/internal/chart"
	"github.com/meenubura/covidtrends/internal/config"
	"github.com/meenubura/covidtrends/internal/dataset"
	"github.com/meenubura/covidtrends/internal/forecast"
	steplog "github.com/meenubura/covidtrends/internal/log"
	"github.com/meenubura/covidtrends/internal/report"
	"github.com/meenubura/covidtrends/internal/source"
)

// Pipeline step names, in execution order
const (
	StepFetch    = "fetch"
	StepReshape  = "reshape"
	StepCharts   = "charts"
	StepForecast = "forecast"
	StepReport   = "report"
)

// Options control a pipeline run
type Options struct {
	Force    bool // Refetch even when the cache is fresh
	Offline  bool // Never touch the network
	Progress steplog.Mode
	IsTTY    bool
}

// Pipeline runs fetch → reshape → charts → forecast → report
type Pipeline struct {
	cfg      *config.Config
	provider *source.Provider
}

func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		provider: source.NewProvider(cfg.Sources, cfg.Cache),
	}
}

// LoadSeries fetches both tables, reshapes them, and filters to the
// configured country
func (p *Pipeline) LoadSeries(ctx context.Context, opts Options) (*dataset.CountrySeries, *source.Fetch, *source.Fetch, error) {
	confirmedFetch, deathsFetch, err := p.provider.FetchAll(ctx, opts.Force, opts.Offline)
	if err != nil {
		return nil, nil, nil, err
	}

	cs, err := p.reshape(confirmedFetch, deathsFetch)
	if err != nil {
		return nil, nil, nil, err
	}

	return cs, confirmedFetch, deathsFetch, nil
}

func (p *Pipeline) reshape(confirmedFetch, deathsFetch *source.Fetch) (*dataset.CountrySeries, error) {
	confirmed, err := dataset.ParseTimeSeries(confirmedFetch.Data, "confirmed")
	if err != nil {
		return nil, err
	}

	deaths, err := dataset.ParseTimeSeries(deathsFetch.Data, "deaths")
	if err != nil {
		return nil, err
	}

	panel, err := dataset.BuildPanel(confirmed, deaths)
	if err != nil {
		return nil, err
	}

	return panel.Country(p.cfg.Country)
}

// Run executes the full report pipeline and returns the written artifacts
func (p *Pipeline) Run(ctx context.Context, opts Options) (*report.Artifacts, error) {
	steps := []string{StepFetch, StepReshape, StepCharts, StepForecast, StepReport}
	sl := steplog.NewStepLogger("covidtrends report", steps, opts.Progress, opts.IsTTY)

	fail := func(err error) (*report.Artifacts, error) {
		sl.Fail(err.Error())
		return nil, err
	}

	sl.StartStep(StepFetch)
	confirmedFetch, deathsFetch, err := p.provider.FetchAll(ctx, opts.Force, opts.Offline)
	if err != nil {
		return fail(fmt.Errorf("fetch step: %w", err))
	}
	sl.CompleteStep()

	sl.StartStep(StepReshape)
	cs, err := p.reshape(confirmedFetch, deathsFetch)
	if err != nil {
		return fail(fmt.Errorf("reshape step: %w", err))
	}
	summary, err := cs.Summarize()
	if err != nil {
		return fail(fmt.Errorf("reshape step: %w", err))
	}
	sl.CompleteStep()

	sl.StartStep(StepCharts)
	renderer := chart.NewRenderer(p.cfg.Charts, p.cfg.Output.Dir)
	cumulativePath, err := renderer.Cumulative(cs)
	if err != nil {
		return fail(fmt.Errorf("charts step: %w", err))
	}
	dailyPath, err := renderer.Daily(cs, p.cfg.Forecast.SmoothWindow)
	if err != nil {
		return fail(fmt.Errorf("charts step: %w", err))
	}
	sl.CompleteStep()

	sl.StartStep(StepForecast)
	forecaster := forecast.New(p.cfg.Forecast)
	model, err := forecaster.Fit(cs.NewCases())
	if err != nil {
		return fail(fmt.Errorf("forecast step: %w", err))
	}
	horizon, err := model.Horizon(p.cfg.Forecast.Horizon, cs.Dates[cs.Len()-1])
	if err != nil {
		return fail(fmt.Errorf("forecast step: %w", err))
	}
	forecastPath, err := renderer.ForecastOverlay(cs, horizon, 90)
	if err != nil {
		return fail(fmt.Errorf("forecast step: %w", err))
	}
	sl.CompleteStep()

	sl.StartStep(StepReport)
	generator := report.NewGenerator(p.cfg.Output.Dir)
	artifacts, err := generator.Generate(&report.ReportData{
		RunID:              report.NewRunID(),
		GeneratedAt:        time.Now().UTC(),
		Summary:            summary,
		Model:              model,
		Forecast:           horizon,
		ConfirmedFromCache: confirmedFetch.FromCache,
		DeathsFromCache:    deathsFetch.FromCache,
		CumulativeChart:    cumulativePath,
		DailyChart:         dailyPath,
		ForecastChart:      forecastPath,
	})
	if err != nil {
		return fail(fmt.Errorf("report step: %w", err))
	}
	sl.CompleteStep()

	sl.Finish()
	return artifacts, nil
}
