package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meenubura/covidtrends/internal/source"
)

// runFetch downloads both source tables into the cache without running the
// rest of the pipeline
func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")

	log.Info().
		Str("cache_dir", cfg.Cache.Dir).
		Bool("force", force).
		Msg("Fetching source tables")

	provider := source.NewProvider(cfg.Sources, cfg.Cache)
	confirmed, deaths, err := provider.FetchAll(context.Background(), force, false)
	if err != nil {
		return fmt.Errorf("failed to fetch source tables: %w", err)
	}

	describe := func(f *source.Fetch) string {
		origin := "network"
		if f.FromCache {
			origin = "cache"
			if age, ok := provider.CacheAge(f.Table); ok {
				origin = fmt.Sprintf("cache, %v old", age.Round(time.Second))
			}
		}
		return fmt.Sprintf("%s (%d bytes, %s)", f.Table, len(f.Data), origin)
	}

	fmt.Printf("✅ Source tables ready\n")
	fmt.Printf("  • %s\n", describe(confirmed))
	fmt.Printf("  • %s\n", describe(deaths))
	fmt.Printf("📁 Cache directory: %s\n", cfg.Cache.Dir)

	stats := provider.Stats()
	if stats.TotalRequests > 0 {
		fmt.Printf("🌐 Network: %d requests (%d failed), avg latency %v\n",
			stats.TotalRequests, stats.FailedRequests, stats.AvgLatency.Round(time.Millisecond))
	}

	return nil
}
