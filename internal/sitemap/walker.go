// Package sitemap derives the site's index surface from the rendered
// tree itself: it walks the HTML that was actually written, so the
// sitemap and hub pages can never list a page that does not exist.
package sitemap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Page is one indexable HTML document discovered under the output tree.
type Page struct {
	// Path is the file path relative to the tree root, slash-separated.
	Path string
	// URL is the canonical absolute URL.
	URL string
	// Label is the page's display name, taken from its first <h1> or,
	// failing that, its <title>.
	Label string
}

// Walker scans a rendered tree for indexable pages.
type Walker struct {
	baseURL string
	logger  *zap.Logger
}

// NewWalker builds a walker rooted at the given canonical base URL.
func NewWalker(baseURL string, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Walk returns every indexable page under root, sorted by URL. Pages
// carrying a noindex robots directive or a meta-refresh redirect are
// excluded entirely.
func (w *Walker) Walk(root string) ([]Page, error) {
	var pages []Page
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		page, ok, err := w.inspect(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if !ok {
			w.logger.Debug("excluded from sitemap", zap.String("path", rel))
			return nil
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages, nil
}

func (w *Walker) inspect(path, rel string) (Page, bool, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from WalkDir under root
	if err != nil {
		return Page{}, false, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return Page{}, false, fmt.Errorf("parse %s: %w", rel, err)
	}

	robots, _ := doc.Find(`meta[name="robots"]`).Attr("content")
	if strings.Contains(strings.ToLower(robots), "noindex") {
		return Page{}, false, nil
	}
	if doc.Find(`meta[http-equiv="refresh"]`).Length() > 0 {
		return Page{}, false, nil
	}

	label := strings.TrimSpace(doc.Find("h1").First().Text())
	if label == "" {
		label = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return Page{
		Path:  rel,
		URL:   w.pageURL(rel),
		Label: label,
	}, true, nil
}

// pageURL maps a relative file path to its canonical URL: index.html is
// stripped and directory routes keep a trailing slash.
func (w *Walker) pageURL(rel string) string {
	rel = strings.TrimSuffix(rel, "index.html")
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return w.baseURL + "/"
	}
	return w.baseURL + "/" + rel + "/"
}
