// Package pipeline ties the build stages together: standardize, resolve
// images, render, and derive the sitemap surface. Publishing is a
// separate command and never runs implicitly.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
	"github.com/artappraisal/sitegen/internal/images"
	"github.com/artappraisal/sitegen/internal/progress"
	"github.com/artappraisal/sitegen/internal/progress/sinks"
	"github.com/artappraisal/sitegen/internal/render"
	"github.com/artappraisal/sitegen/internal/sitemap"
	"github.com/artappraisal/sitegen/internal/standardize"
)

// Summary reports what one build run produced.
type Summary struct {
	RunID       uuid.UUID
	Files       standardize.RunStats
	Pages       render.TreeStats
	Resolution  sinks.Stats
	SitemapURLs int
	Elapsed     time.Duration
}

// Build runs one full build. Dependencies are injected so tests can
// substitute fakes for the network-facing pieces.
type Build struct {
	DataDir   string
	OutputDir string

	Site         render.SiteConfig
	Standardizer *standardize.Standardizer
	Batch        *images.Batch
	Sitemap      *sitemap.Builder

	Hub   *progress.Hub
	Stats *sinks.StatsSink

	Clock  directory.Clock
	Logger *zap.Logger
}

// Run executes the build stages in order. Any stage error aborts the
// run: a half-built output tree is never handed to the publisher.
func (b *Build) Run(ctx context.Context) (Summary, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New()
	started := b.Clock.Now()
	summary := Summary{RunID: runID}

	b.emit(progress.Event{RunID: runID, TS: started, Stage: progress.StageRunStart})
	logger.Info("build started",
		zap.String("run_id", runID.String()),
		zap.String("data_dir", b.DataDir))

	locations, fileStats, err := b.Standardizer.Run(b.DataDir)
	if err != nil {
		return summary, fmt.Errorf("standardize: %w", err)
	}
	summary.Files = fileStats

	b.Batch.ResolveAll(ctx, runID, locations)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("resolve images: %w", err)
	}

	pageStats, err := render.WriteTree(b.OutputDir, b.Site, locations, logger)
	if err != nil {
		return summary, fmt.Errorf("render: %w", err)
	}
	summary.Pages = pageStats

	urls, err := b.Sitemap.Build(b.OutputDir)
	if err != nil {
		return summary, fmt.Errorf("sitemap: %w", err)
	}
	summary.SitemapURLs = urls

	summary.Elapsed = b.Clock.Now().Sub(started)
	b.emit(progress.Event{RunID: runID, TS: b.Clock.Now(), Stage: progress.StageRunDone})

	// Flush the hub so the stats snapshot sees every resolution.
	if b.Hub != nil {
		if err := b.Hub.Close(ctx); err != nil {
			logger.Warn("progress hub close", zap.Error(err))
		}
	}
	if b.Stats != nil {
		summary.Resolution = b.Stats.Snapshot()
	}

	logger.Info("build finished",
		zap.String("run_id", runID.String()),
		zap.Int("pages", summary.Pages.Pages()),
		zap.Int("sitemap_urls", summary.SitemapURLs),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (b *Build) emit(evt progress.Event) {
	if b.Hub != nil {
		b.Hub.Emit(evt)
	}
}
