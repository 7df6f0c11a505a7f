package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/meenubura/covidtrends/internal/config"
	"github.com/meenubura/covidtrends/internal/dataset"
	"github.com/meenubura/covidtrends/internal/forecast"
)

var (
	confirmedColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	deathsColor    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	rawColor       = color.RGBA{R: 158, G: 202, B: 225, A: 255}
	smoothColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Renderer draws the report charts into the output directory as PNGs
type Renderer struct {
	cfg    config.ChartConfig
	outDir string
}

func NewRenderer(cfg config.ChartConfig, outDir string) *Renderer {
	return &Renderer{cfg: cfg, outDir: outDir}
}

// Cumulative renders cumulative confirmed cases and deaths over time
func (r *Renderer) Cumulative(cs *dataset.CountrySeries) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: cumulative COVID-19 cases and deaths", cs.Country)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Count"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	confirmed, err := plotter.NewLine(timeXYs(cs.Dates, cs.Confirmed))
	if err != nil {
		return "", fmt.Errorf("failed to build confirmed line: %w", err)
	}
	confirmed.Color = confirmedColor
	confirmed.Width = vg.Points(2)

	deaths, err := plotter.NewLine(timeXYs(cs.Dates, cs.Deaths))
	if err != nil {
		return "", fmt.Errorf("failed to build deaths line: %w", err)
	}
	deaths.Color = deathsColor
	deaths.Width = vg.Points(2)

	p.Add(confirmed, deaths)
	p.Legend.Add("confirmed", confirmed)
	p.Legend.Add("deaths", deaths)
	p.Legend.Top = true
	p.Legend.Left = true

	return r.save(p, "cumulative.png")
}

// Daily renders daily new cases with the smoothed trend on top
func (r *Renderer) Daily(cs *dataset.CountrySeries, smoothWindow int) (string, error) {
	newCases := cs.NewCases()
	smoothed := dataset.Smooth(newCases, smoothWindow)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: daily new COVID-19 cases", cs.Country)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "New cases"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	raw, err := plotter.NewLine(timeXYs(cs.Dates, newCases))
	if err != nil {
		return "", fmt.Errorf("failed to build daily line: %w", err)
	}
	raw.Color = rawColor
	raw.Width = vg.Points(1)

	trend, err := plotter.NewLine(timeXYs(cs.Dates, smoothed))
	if err != nil {
		return "", fmt.Errorf("failed to build trend line: %w", err)
	}
	trend.Color = smoothColor
	trend.Width = vg.Points(2)

	p.Add(raw, trend)
	p.Legend.Add("daily", raw)
	p.Legend.Add(fmt.Sprintf("%d-day average", smoothWindow), trend)
	p.Legend.Top = true
	p.Legend.Left = true

	return r.save(p, "daily.png")
}

// ForecastOverlay renders recent history with the forecast horizon
// appended as a dashed line. historyDays limits how much history shows.
func (r *Renderer) ForecastOverlay(cs *dataset.CountrySeries, points []forecast.Point, historyDays int) (string, error) {
	newCases := cs.NewCases()
	start := 0
	if historyDays > 0 && len(newCases) > historyDays {
		start = len(newCases) - historyDays
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: new-case forecast", cs.Country)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "New cases"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	p.Add(plotter.NewGrid())

	history, err := plotter.NewLine(timeXYs(cs.Dates[start:], newCases[start:]))
	if err != nil {
		return "", fmt.Errorf("failed to build history line: %w", err)
	}
	history.Color = smoothColor
	history.Width = vg.Points(2)

	fxys := make(plotter.XYs, len(points))
	for i, pt := range points {
		fxys[i].X = float64(pt.Date.Unix())
		fxys[i].Y = pt.Value
	}
	fc, err := plotter.NewLine(fxys)
	if err != nil {
		return "", fmt.Errorf("failed to build forecast line: %w", err)
	}
	fc.Color = forecastColor
	fc.Width = vg.Points(2)
	fc.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(history, fc)
	p.Legend.Add("observed", history)
	p.Legend.Add("forecast", fc)
	p.Legend.Top = true
	p.Legend.Left = true

	return r.save(p, "forecast.png")
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(r.outDir, name)
	w := vg.Length(r.cfg.WidthInches) * vg.Inch
	h := vg.Length(r.cfg.HeightInches) * vg.Inch
	if err := p.Save(w, h, path); err != nil {
		return "", fmt.Errorf("failed to save chart %s: %w", name, err)
	}

	log.Debug().Str("chart", name).Msg("Chart rendered")
	return path, nil
}

func timeXYs(dates []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i := range values {
		xys[i].X = float64(dates[i].Unix())
		xys[i].Y = values[i]
	}
	return xys
}
