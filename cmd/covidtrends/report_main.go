package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meenubura/covidtrends/internal/app"
	steplog "github.com/meenubura/covidtrends/internal/log"
)

// runReport executes the full fetch → reshape → chart → forecast → report
// pipeline
func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	offline, _ := cmd.Flags().GetBool("offline")
	progressFlag, _ := cmd.Flags().GetString("progress")

	progress, err := steplog.ParseMode(progressFlag)
	if err != nil {
		return err
	}

	log.Info().
		Str("country", cfg.Country).
		Int("horizon", cfg.Forecast.Horizon).
		Str("output_dir", cfg.Output.Dir).
		Bool("offline", offline).
		Msg("Generating trend report")

	pipeline := app.NewPipeline(cfg)
	artifacts, err := pipeline.Run(context.Background(), app.Options{
		Force:    force,
		Offline:  offline,
		Progress: progress,
		IsTTY:    isTTY(),
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	fmt.Printf("✅ Trend report generated\n")
	fmt.Printf("📁 Output directory: %s\n", cfg.Output.Dir)
	fmt.Printf("📊 Country: %s, horizon: %d days\n", cfg.Country, cfg.Forecast.Horizon)

	fmt.Printf("\n📄 Generated artifacts:\n")
	fmt.Printf("  • %s\n", filepath.Base(artifacts.ReportPath))
	for _, c := range artifacts.Charts {
		fmt.Printf("  • %s\n", filepath.Base(c))
	}

	// Anything else already present in the output dir is worth listing too
	files, err := os.ReadDir(cfg.Output.Dir)
	if err == nil && len(files) > len(artifacts.Charts)+1 {
		fmt.Printf("\n(%d files total in %s)\n", len(files), cfg.Output.Dir)
	}

	return nil
}
