// Package cmd defines and implements the CLI commands for the sitegen executable.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/clock/system"
	"github.com/artappraisal/sitegen/internal/images"
	"github.com/artappraisal/sitegen/internal/logging"
	"github.com/artappraisal/sitegen/internal/pipeline"
	"github.com/artappraisal/sitegen/internal/progress"
	"github.com/artappraisal/sitegen/internal/progress/sinks"
	"github.com/artappraisal/sitegen/internal/render"
	"github.com/artappraisal/sitegen/internal/sitemap"
	"github.com/artappraisal/sitegen/internal/standardize"
)

const probeUserAgent = "sitegen-image-probe/1.0"

// newBuildCmd creates and configures the 'build' subcommand, which runs
// the full pipeline short of publishing: standardize, resolve images,
// render, and derive the sitemap surface.
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the complete site into the output directory",
		Long: `Loads every per-city data file, standardizes it into canonical records,
resolves a working image per listing through the fallback chain, renders
the full page tree with structured data, and writes the sitemap, robots
file, and hub pages. The output directory is suitable for 'sitegen publish'.`,

		RunE: runBuildCommand,
	}
	cmd.Flags().String("data-dir", "", "directory of per-city JSON files (overrides config)")
	cmd.Flags().String("output-dir", "", "directory to render into (overrides config)")
	cmd.Flags().Bool("clear-image-cache", false, "wipe cached image probe verdicts before resolving")
	return cmd
}

func runBuildCommand(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	logger := logging.L

	dataDir := stringFlagOr(cmd, "data-dir", v.GetString("build.data_dir"))
	outputDir := stringFlagOr(cmd, "output-dir", v.GetString("build.output_dir"))

	site, err := render.LoadSiteConfig(v)
	if err != nil {
		return fmt.Errorf("load site config: %w", err)
	}
	manifest, err := render.LoadManifest(v.GetString("build.asset_manifest"))
	if err != nil {
		return fmt.Errorf("load asset manifest: %w", err)
	}
	site.Assets = manifest

	imgCfg, err := images.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("load image config: %w", err)
	}

	clearCache, _ := cmd.Flags().GetBool("clear-image-cache")

	clk := system.Clock{}
	batch, hub, stats, err := buildImageStage(imgCfg, clk, clearCache, logger)
	if err != nil {
		return err
	}

	build := &pipeline.Build{
		DataDir:      dataDir,
		OutputDir:    outputDir,
		Site:         site,
		Standardizer: standardize.New(clk, logger),
		Batch:        batch,
		Sitemap:      sitemap.NewBuilder(site, clk, logger),
		Hub:          hub,
		Stats:        stats,
		Clock:        clk,
		Logger:       logger,
	}

	summary, err := build.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	printSummary(summary)
	logging.L.Info("Build command finished.")
	return nil
}

// buildImageStage wires the resolver: durable cache under the
// configured dir, HTTP prober, and the optional generation tier.
func buildImageStage(
	cfg images.Config,
	clk system.Clock,
	clearCache bool,
	logger *zap.Logger,
) (*images.Batch, *progress.Hub, *sinks.StatsSink, error) {
	var store images.Store
	if cfg.CacheDir != "" {
		fsStore, err := images.NewFSStore(cfg.CacheDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init image cache store: %w", err)
		}
		store = fsStore
	} else {
		store = images.NewMemoryStore()
	}
	cache := images.NewCache(store, cfg.CacheTTL, clk, logger)
	if clearCache {
		if err := cache.Clear(); err != nil {
			logger.Warn("image cache clear failed", zap.Error(err))
		}
	}

	var generator images.Generator
	if cfg.GeneratorEndpoint != "" {
		generator = images.NewHTTPGenerator(cfg.GeneratorEndpoint, cfg.GenerateTimeout)
	}

	prober := images.NewHTTPProber(cfg.ProbeTimeout, probeUserAgent)
	resolver := images.NewResolver(cfg, cache, prober, generator, logger)

	stats := sinks.NewStatsSink()
	hubSinks := []progress.Sink{sinks.NewLogSink(logger), stats}
	if promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer); err != nil {
		logger.Warn("progress metrics disabled", zap.Error(err))
	} else {
		hubSinks = append(hubSinks, promSink)
	}
	hub := progress.NewHub(progress.Config{Logger: logger}, hubSinks...)

	return images.NewBatch(resolver, clk, hub, cfg.Concurrency), hub, stats, nil
}

func printSummary(s pipeline.Summary) {
	fmt.Fprintf(os.Stdout, "run %s finished in %s\n", s.RunID, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  files: %d loaded, %d skipped, %d listings (%d fields synthesized)\n",
		s.Files.FilesLoaded, s.Files.FilesSkipped, s.Files.Listings, s.Files.Synthesized)
	fmt.Fprintf(os.Stdout, "  pages: %d (%d locations, %d listings)\n",
		s.Pages.Pages(), s.Pages.LocationPages, s.Pages.ListingPages)
	fmt.Fprintf(os.Stdout, "  images:")
	for _, tier := range progress.Tiers {
		if n := s.Resolution.ByTier[tier]; n > 0 {
			fmt.Fprintf(os.Stdout, " %s=%d", tier, n)
		}
	}
	fmt.Fprintf(os.Stdout, "\n  sitemap: %d urls\n", s.SitemapURLs)
}

func stringFlagOr(cmd *cobra.Command, name, fallback string) string {
	if value, err := cmd.Flags().GetString(name); err == nil && value != "" {
		return value
	}
	return fallback
}
