package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meenubura/covidtrends/internal/config"
)

const (
	appName = "covidtrends"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "COVID-19 country trend report with ARIMA forecasting",
		Version: version,
		Long: `covidtrends downloads the JHU CSSE COVID-19 time series, reshapes it into
a per-country daily panel, and produces a markdown report with descriptive
charts and an auto-selected ARIMA forecast of daily new cases.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (defaults apply when omitted)")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full pipeline and write the report",
		Long:  "Fetch, reshape, chart, forecast, and write report.md with its chart artifacts",
		RunE:  runReport,
	}
	reportCmd.Flags().String("country", "", "Country to analyze (overrides config)")
	reportCmd.Flags().Int("horizon", 0, "Forecast horizon in days (overrides config)")
	reportCmd.Flags().String("out", "", "Output directory (overrides config)")
	reportCmd.Flags().Bool("force", false, "Refetch source tables even when the cache is fresh")
	reportCmd.Flags().Bool("offline", false, "Use cached source tables only")
	reportCmd.Flags().String("progress", "auto", "Progress output mode (auto|plain|json)")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the source tables into the cache",
		RunE:  runFetch,
	}
	fetchCmd.Flags().Bool("force", false, "Refetch even when the cache is fresh")

	forecastCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit the model and print the forecast table",
		RunE:  runForecast,
	}
	forecastCmd.Flags().String("country", "", "Country to analyze (overrides config)")
	forecastCmd.Flags().Int("horizon", 0, "Forecast horizon in days (overrides config)")
	forecastCmd.Flags().Bool("offline", false, "Use cached source tables only")

	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the descriptive charts only",
		RunE:  runChart,
	}
	chartCmd.Flags().String("country", "", "Country to analyze (overrides config)")
	chartCmd.Flags().String("out", "", "Output directory (overrides config)")
	chartCmd.Flags().Bool("offline", false, "Use cached source tables only")

	rootCmd.AddCommand(reportCmd, fetchCmd, forecastCmd, chartCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads the configured YAML file (or defaults) and applies the
// common command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if country, _ := cmd.Flags().GetString("country"); country != "" {
		cfg.Country = country
	}
	if horizon, _ := cmd.Flags().GetInt("horizon"); horizon > 0 {
		cfg.Forecast.Horizon = horizon
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Output.Dir = out
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Error().Str("problem", p).Msg("Invalid configuration")
		}
		return nil, fmt.Errorf("invalid configuration (%d problems)", len(problems))
	}

	return cfg, nil
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
