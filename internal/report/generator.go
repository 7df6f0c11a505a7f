package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Generator writes the markdown report into the output directory
type Generator struct {
	outDir  string
	printer *message.Printer
}

func NewGenerator(outDir string) *Generator {
	return &Generator{
		outDir:  outDir,
		printer: message.NewPrinter(language.English),
	}
}

// NewRunID stamps a report run
func NewRunID() string {
	return uuid.NewString()
}

// Generate renders report.md from the assembled data
func (g *Generator) Generate(data *ReportData) (*Artifacts, error) {
	if data.Summary == nil {
		return nil, fmt.Errorf("report data missing summary")
	}

	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(g.outDir, "report.md")
	if err := os.WriteFile(path, []byte(g.render(data)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	artifacts := &Artifacts{ReportPath: path}
	for _, c := range []string{data.CumulativeChart, data.DailyChart, data.ForecastChart} {
		if c != "" {
			artifacts.Charts = append(artifacts.Charts, c)
		}
	}

	log.Info().
		Str("run_id", data.RunID).
		Str("path", path).
		Int("charts", len(artifacts.Charts)).
		Msg("Report generated")

	return artifacts, nil
}

func (g *Generator) render(data *ReportData) string {
	var b strings.Builder
	s := data.Summary
	pr := g.printer

	fmt.Fprintf(&b, "# COVID-19 trend report: %s\n\n", s.Country)
	fmt.Fprintf(&b, "Generated %s (run %s)\n\n", data.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), data.RunID)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Data covers %s through %s (%s days).\n\n",
		s.FirstDate.Format("2006-01-02"), s.LastDate.Format("2006-01-02"), pr.Sprintf("%d", s.Days))

	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total confirmed cases | %s |\n", pr.Sprintf("%.0f", s.TotalConfirmed))
	fmt.Fprintf(&b, "| Total deaths | %s |\n", pr.Sprintf("%.0f", s.TotalDeaths))
	fmt.Fprintf(&b, "| Case fatality ratio | %.2f%% |\n", s.CaseFatality*100)
	fmt.Fprintf(&b, "| New cases (latest day) | %s |\n", pr.Sprintf("%.0f", s.LatestNewCases))
	fmt.Fprintf(&b, "| New cases (7-day average) | %s |\n", pr.Sprintf("%.0f", s.Avg7dNewCases))
	fmt.Fprintf(&b, "| Peak daily new cases | %s on %s |\n\n",
		pr.Sprintf("%.0f", s.PeakNewCases), s.PeakDate.Format("2006-01-02"))

	if data.ConfirmedFromCache || data.DeathsFromCache {
		b.WriteString("Source tables were served from the local cache.\n\n")
	}

	if data.CumulativeChart != "" || data.DailyChart != "" {
		b.WriteString("## Charts\n\n")
		if data.CumulativeChart != "" {
			fmt.Fprintf(&b, "![Cumulative cases and deaths](%s)\n\n", filepath.Base(data.CumulativeChart))
		}
		if data.DailyChart != "" {
			fmt.Fprintf(&b, "![Daily new cases](%s)\n\n", filepath.Base(data.DailyChart))
		}
	}

	if data.Model != nil {
		b.WriteString("## Forecast\n\n")
		fmt.Fprintf(&b, "Model: %s selected by automatic search (%d candidates, AIC %.1f).\n",
			data.Model.Order, data.Model.ModelsEvaluated, data.Model.AIC)
		fmt.Fprintf(&b, "In-sample MAE %.1f (naive last-value baseline %.1f), RMSE %.1f.\n\n",
			data.Model.MAE, data.Model.NaiveMAE, data.Model.RMSE)

		if data.ForecastChart != "" {
			fmt.Fprintf(&b, "![Forecast](%s)\n\n", filepath.Base(data.ForecastChart))
		}

		if len(data.Forecast) > 0 {
			b.WriteString("| Date | Forecast new cases |\n|---|---|\n")
			for _, pt := range data.Forecast {
				fmt.Fprintf(&b, "| %s | %s |\n", pt.Date.Format("2006-01-02"), pr.Sprintf("%.0f", pt.Value))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(caveats)

	return b.String()
}

// caveats is the fixed data-bias discussion appended to every report
const caveats = `## Data caveats and bias

These figures describe reported cases, not infections. Several known biases
apply when reading the charts and the forecast:

- **Reporting lag.** Cases appear in the data when they are confirmed and
  reported, days after infection. Recent days systematically undercount.
- **Weekend batching.** Many jurisdictions report less on weekends and catch
  up early in the week, which puts a weekly sawtooth into daily counts that
  the smoothed trend partly removes.
- **Testing coverage.** Confirmed counts scale with testing capacity.
  Changes in test availability move the curve without any change in
  underlying transmission.
- **Cumulative revisions.** Upstream corrections occasionally reduce the
  cumulative totals; the pipeline clamps the implied negative daily counts
  to zero rather than propagating them.
- **Forecast scope.** The ARIMA model extrapolates the recent statistical
  pattern of the reported series. It knows nothing about policy changes,
  variants, or reporting changes, and its useful horizon is short.
`
