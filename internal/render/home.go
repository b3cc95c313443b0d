package render

import (
	"fmt"
	"strings"

	"github.com/artappraisal/sitegen/internal/directory"
)

// HomePage renders the site index with a card per city, sorted by the
// caller (locations arrive in build order, which is lexical by file).
func HomePage(site SiteConfig, locations []directory.LocationRecord) *Document {
	title := fmt.Sprintf("%s | Find Art Appraisers Near You", site.Name)

	doc := NewDocument(title, site.Description, site.HomeURL(), site.Assets)

	var b strings.Builder
	b.WriteString("<header class=\"home-header\">\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(site.Name))
	if site.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", esc(site.Description))
	}
	b.WriteString("</header>")
	doc.AddSection(b.String())

	var cities strings.Builder
	cities.WriteString("<section class=\"home-cities\">\n<h2>Browse by city</h2>\n<ul>\n")
	for _, loc := range locations {
		fmt.Fprintf(&cities, "<li><a href=\"%s\">%s, %s</a> (%d)</li>\n",
			esc(site.PageURL("location", loc.CitySlug)),
			esc(loc.CityName), esc(loc.State), len(loc.Listings))
	}
	cities.WriteString("</ul>\n</section>")
	doc.AddSection(cities.String())
	return doc
}
