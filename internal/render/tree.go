package render

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
)

// TreeStats counts what WriteTree produced.
type TreeStats struct {
	LocationPages int
	ListingPages  int
}

// Pages is the total number of documents written, including the home page.
func (s TreeStats) Pages() int {
	return 1 + s.LocationPages + s.ListingPages
}

// WriteTree renders the home page plus every location and listing page
// into outputDir, creating the directory-style route layout:
//
//	index.html
//	location/<slug>/index.html
//	appraiser/<slug>/index.html
//
// Hub pages and the sitemap are layered on top by the sitemap builder.
// Any write failure aborts the tree: a partial tree must never be
// published, and the publisher's verify step assumes WriteTree either
// completed or errored.
func WriteTree(outputDir string, site SiteConfig, locations []directory.LocationRecord, logger *zap.Logger) (TreeStats, error) {
	var stats TreeStats
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := writeDoc(filepath.Join(outputDir, "index.html"), HomePage(site, locations)); err != nil {
		return stats, err
	}

	for _, loc := range locations {
		path := filepath.Join(outputDir, "location", loc.CitySlug, "index.html")
		if err := writeDoc(path, LocationPage(site, loc)); err != nil {
			return stats, err
		}
		stats.LocationPages++

		for _, listing := range loc.Listings {
			path := filepath.Join(outputDir, "appraiser", listing.Slug, "index.html")
			if err := writeDoc(path, ListingPage(site, loc, listing)); err != nil {
				return stats, err
			}
			stats.ListingPages++
		}
		logger.Debug("rendered location",
			zap.String("city", loc.CitySlug),
			zap.Int("listings", len(loc.Listings)))
	}

	logger.Info("rendered page tree",
		zap.String("dir", outputDir),
		zap.Int("locations", stats.LocationPages),
		zap.Int("listings", stats.ListingPages))
	return stats, nil
}

// WriteDoc renders a single document to path, creating parent
// directories. Exported for the hub builder, which emits documents
// outside the location/appraiser layout.
func WriteDoc(path string, doc *Document) error {
	return writeDoc(path, doc)
}

func writeDoc(path string, doc *Document) error {
	html, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil { //nolint:gosec // public HTML
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
