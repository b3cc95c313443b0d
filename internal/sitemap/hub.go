package sitemap

import (
	"fmt"
	"html"
	"path/filepath"
	"sort"
	"strings"

	"github.com/artappraisal/sitegen/internal/render"
)

// WriteHubs emits the two hub index pages, location/index.html and
// appraiser/index.html, each linking every page of its kind found in
// the walked tree, alphabetically by label. Hubs are rendered with the
// same document builder as every other page so they pick up canonical
// links and assets for free.
func WriteHubs(root string, site render.SiteConfig, pages []Page) error {
	if err := writeHub(root, site, pages, "location", "All Locations"); err != nil {
		return err
	}
	return writeHub(root, site, pages, "appraiser", "All Appraisers")
}

func writeHub(root string, site render.SiteConfig, pages []Page, kind, title string) error {
	entries := filterKind(pages, kind)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })

	doc := render.NewDocument(
		fmt.Sprintf("%s | %s", title, site.Name),
		fmt.Sprintf("%s listed on %s.", title, site.Name),
		site.PageURL(kind),
		site.Assets,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "<section class=\"hub hub-%s\">\n<h1>%s</h1>\n<ul>\n", kind, title)
	for _, entry := range entries {
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n",
			html.EscapeString(entry.URL), html.EscapeString(entry.Label))
	}
	b.WriteString("</ul>\n</section>")
	doc.AddSection(b.String())

	return render.WriteDoc(filepath.Join(root, kind, "index.html"), doc)
}

// filterKind keeps the pages under /<kind>/<slug>/, skipping the hub's
// own URL so a hub never links itself.
func filterKind(pages []Page, kind string) []Page {
	prefix := kind + "/"
	var out []Page
	for _, p := range pages {
		if !strings.HasPrefix(p.Path, prefix) {
			continue
		}
		if p.Path == prefix+"index.html" {
			continue
		}
		out = append(out, p)
	}
	return out
}
