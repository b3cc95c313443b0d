package sitemap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
	"github.com/artappraisal/sitegen/internal/render"
)

// ErrNoPages means the walk found zero indexable HTML files. A sitemap
// with no URLs would publish an empty site, so this is a hard failure.
var ErrNoPages = errors.New("sitemap: no indexable pages found")

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// Builder produces sitemap.xml, robots.txt, and the hub pages for a
// rendered tree.
type Builder struct {
	site   render.SiteConfig
	clock  directory.Clock
	logger *zap.Logger
}

// NewBuilder wires a Builder. A nil logger is replaced with a no-op.
func NewBuilder(site render.SiteConfig, clock directory.Clock, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{site: site, clock: clock, logger: logger}
}

// Build walks root, writes the hub pages, then re-walks so the hubs
// themselves are indexed, and finally writes sitemap.xml and
// robots.txt. Returns the number of URLs in the sitemap.
func (b *Builder) Build(root string) (int, error) {
	walker := NewWalker(b.site.BaseURL, b.logger)

	pages, err := walker.Walk(root)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, ErrNoPages
	}

	if err := WriteHubs(root, b.site, pages); err != nil {
		return 0, fmt.Errorf("write hub pages: %w", err)
	}

	pages, err = walker.Walk(root)
	if err != nil {
		return 0, err
	}

	if err := b.writeSitemap(root, pages); err != nil {
		return 0, err
	}
	if err := b.writeRobots(root); err != nil {
		return 0, err
	}
	b.logger.Info("sitemap built", zap.Int("urls", len(pages)))
	return len(pages), nil
}

// writeSitemap pins the home page first at priority 1.0 and orders the
// rest lexicographically by loc, so output is byte-identical across
// runs except for lastmod.
func (b *Builder) writeSitemap(root string, pages []Page) error {
	lastmod := b.clock.Now().Format(time.DateOnly)
	home := b.site.HomeURL()

	set := urlSet{Xmlns: xmlns}
	for _, p := range pages {
		if p.URL == home {
			set.URLs = append(set.URLs, urlEntry{
				Loc:        p.URL,
				LastMod:    lastmod,
				ChangeFreq: "daily",
				Priority:   "1.0",
			})
			break
		}
	}
	rest := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p.URL != home {
			rest = append(rest, p)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].URL < rest[j].URL })
	for _, p := range rest {
		set.URLs = append(set.URLs, urlEntry{Loc: p.URL, LastMod: lastmod, ChangeFreq: "weekly"})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')
	path := filepath.Join(root, "sitemap.xml")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // public XML
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (b *Builder) writeRobots(root string) error {
	content := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %ssitemap.xml\n", b.site.HomeURL())
	path := filepath.Join(root, "robots.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // public text
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
