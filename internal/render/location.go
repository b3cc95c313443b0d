package render

import (
	"fmt"
	"strings"

	"github.com/artappraisal/sitegen/internal/directory"
)

// LocationPage renders the city hub page listing every publishable
// appraiser in that city. A city with zero listings still gets a page,
// with an onboarding notice instead of cards, so the URL stays live.
func LocationPage(site SiteConfig, loc directory.LocationRecord) *Document {
	canonical := site.PageURL("location", loc.CitySlug)
	title := fmt.Sprintf("Art Appraisers in %s, %s | %s", loc.CityName, loc.State, site.Name)
	description := fmt.Sprintf("Find qualified art appraisers in %s, %s for insurance, estates, donations, and resale.",
		loc.CityName, loc.State)

	doc := NewDocument(title, description, canonical, site.Assets)
	doc.AddSchema(itemListSchema(site, loc))
	doc.AddSchema(breadcrumbSchema(
		ListItem{Name: "Home", Item: site.HomeURL()},
		ListItem{Name: loc.CityName},
	))

	doc.AddSection(breadcrumbNav(
		crumb{"Home", site.HomeURL()},
		crumb{loc.CityName, ""},
	))
	doc.AddSection(locationHeader(loc))
	if len(loc.Listings) == 0 {
		doc.AddSection("<section class=\"location-empty\">\n<p>Appraiser onboarding for this city is in progress. Check back soon.</p>\n</section>")
	} else {
		doc.AddSection(locationCards(site, loc))
	}
	return doc
}

func itemListSchema(site SiteConfig, loc directory.LocationRecord) ItemList {
	list := ItemList{
		Context: schemaContext,
		Type:    "ItemList",
		Name:    fmt.Sprintf("Art Appraisers in %s, %s", loc.CityName, loc.State),
	}
	for i, listing := range loc.Listings {
		list.ItemListElement = append(list.ItemListElement, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     listing.Name,
			Item:     site.PageURL("appraiser", listing.Slug),
		})
	}
	return list
}

func locationHeader(loc directory.LocationRecord) string {
	var b strings.Builder
	b.WriteString("<header class=\"location-header\">\n")
	fmt.Fprintf(&b, "<h1>Art Appraisers in %s, %s</h1>\n", esc(loc.CityName), esc(loc.State))
	switch n := len(loc.Listings); n {
	case 0:
	case 1:
		b.WriteString("<p class=\"location-count\">1 appraiser listed</p>\n")
	default:
		fmt.Fprintf(&b, "<p class=\"location-count\">%d appraisers listed</p>\n", n)
	}
	b.WriteString("</header>")
	return b.String()
}

func locationCards(site SiteConfig, loc directory.LocationRecord) string {
	var b strings.Builder
	b.WriteString("<section class=\"location-listings\">\n")
	for _, listing := range loc.Listings {
		b.WriteString("<article class=\"listing-card\">\n")
		if listing.ResolvedImage != "" {
			fmt.Fprintf(&b, "<img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n",
				esc(listing.ResolvedImage), esc(listing.Name))
		}
		fmt.Fprintf(&b, "<h2><a href=\"%s\">%s</a></h2>\n",
			esc(site.PageURL("appraiser", listing.Slug)), esc(listing.Name))
		fmt.Fprintf(&b, "<p class=\"card-rating\">%.1f (%d reviews)</p>\n",
			listing.Business.Rating, listing.Business.ReviewCount)
		if len(listing.Expertise.Specialties) > 0 {
			fmt.Fprintf(&b, "<p class=\"card-specialties\">%s</p>\n",
				esc(joinNatural(listing.Expertise.Specialties)))
		}
		fmt.Fprintf(&b, "<p class=\"card-summary\">%s</p>\n", esc(truncate(listing.Content.About, 140)))
		b.WriteString("</article>\n")
	}
	b.WriteString("</section>")
	return b.String()
}
