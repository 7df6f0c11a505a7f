package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meenubura/covidtrends/internal/app"
	"github.com/meenubura/covidtrends/internal/chart"
)

// runChart renders the two descriptive charts without fitting a model
func runChart(cmd *cobra.Command, args []string) error {
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
		Msg("Rendering charts")

	renderer := chart.NewRenderer(cfg.Charts, cfg.Output.Dir)

	cumulative, err := renderer.Cumulative(cs)
	if err != nil {
		return fmt.Errorf("failed to render cumulative chart: %w", err)
	}

	daily, err := renderer.Daily(cs, cfg.Forecast.SmoothWindow)
	if err != nil {
		return fmt.Errorf("failed to render daily chart: %w", err)
	}

	fmt.Printf("✅ Charts rendered\n")
	fmt.Printf("  • %s\n", cumulative)
	fmt.Printf("  • %s\n", daily)

	return nil
}
