package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meenubura/covidtrends/internal/app"
	"github.com/meenubura/covidtrends/internal/forecast"
)

// runForecast fits the model and prints the forecast table without
// rendering any artifacts
func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	offline, _ := cmd.Flags().GetBool("offline")

	pipeline := app.NewPipeline(cfg)
	cs, _, _, err := pipeline.LoadSeries(context.Background(), app.Options{Offline: offline})
	if err != nil {
		return fmt.Errorf("failed to load series: %w", err)
	}

	log.Info().
		Str("country", cs.Country).
		Int("observations", cs.Len()).
		Msg("Fitting forecast model")

	model, err := forecast.New(cfg.Forecast).Fit(cs.NewCases())
	if err != nil {
		return fmt.Errorf("failed to fit model: %w", err)
	}

	horizon, err := model.Horizon(cfg.Forecast.Horizon, cs.Dates[cs.Len()-1])
	if err != nil {
		return fmt.Errorf("failed to forecast: %w", err)
	}

	fmt.Printf("Model: %s (AIC %.1f, %d candidates evaluated)\n",
		model.Order, model.AIC, model.ModelsEvaluated)
	fmt.Printf("In-sample MAE %.1f vs naive baseline %.1f\n\n", model.MAE, model.NaiveMAE)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tFORECAST NEW CASES")
	for _, pt := range horizon {
		fmt.Fprintf(w, "%s\t%.0f\n", pt.Date.Format("2006-01-02"), pt.Value)
	}
	return w.Flush()
}
