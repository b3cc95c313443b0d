package render

import (
	"fmt"
	"strings"

	"github.com/artappraisal/sitegen/internal/directory"
)

// ListingPage renders the full HTML document for one appraiser.
func ListingPage(site SiteConfig, loc directory.LocationRecord, listing directory.ListingRecord) *Document {
	canonical := site.PageURL("appraiser", listing.Slug)
	title := fmt.Sprintf("%s - Art Appraiser in %s, %s | %s",
		listing.Name, loc.CityName, loc.State, site.Name)
	description := truncate(listing.Content.About, 160)

	faq := buildFAQ(listing, loc.CityName)

	doc := NewDocument(title, description, canonical, site.Assets)
	doc.AddSchema(localBusinessSchema(site, listing))
	doc.AddSchema(breadcrumbSchema(
		ListItem{Name: "Home", Item: site.HomeURL()},
		ListItem{Name: loc.CityName, Item: site.PageURL("location", loc.CitySlug)},
		ListItem{Name: listing.Name},
	))
	doc.AddSchema(faqSchema(faq))

	doc.AddSection(breadcrumbNav(
		crumb{"Home", site.HomeURL()},
		crumb{loc.CityName, site.PageURL("location", loc.CitySlug)},
		crumb{listing.Name, ""},
	))
	doc.AddSection(listingHeader(loc, listing))
	doc.AddSection(listingAbout(listing))
	doc.AddSection(listingDetails(listing))
	doc.AddSection(listingContact(listing))
	doc.AddSection(listingReviews(listing))
	doc.AddSection(faqSection(faq))
	return doc
}

func listingHeader(loc directory.LocationRecord, listing directory.ListingRecord) string {
	var b strings.Builder
	b.WriteString("<header class=\"listing-header\">\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(listing.Name))
	fmt.Fprintf(&b, "<p class=\"listing-locality\">Art Appraiser in %s, %s</p>\n",
		esc(loc.CityName), esc(loc.State))
	if listing.ResolvedImage != "" {
		fmt.Fprintf(&b, "<img src=\"%s\" alt=\"%s\" class=\"listing-photo\">\n",
			esc(listing.ResolvedImage), esc(listing.Name))
	}
	fmt.Fprintf(&b, "<p class=\"listing-rating\">Rated %.1f (%d reviews)</p>\n",
		listing.Business.Rating, listing.Business.ReviewCount)
	b.WriteString("</header>")
	return b.String()
}

func listingAbout(listing directory.ListingRecord) string {
	var b strings.Builder
	b.WriteString("<section class=\"listing-about\">\n<h2>About</h2>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", esc(listing.Content.About))
	if len(listing.Expertise.Specialties) > 0 {
		fmt.Fprintf(&b, "<p class=\"listing-specialties\">Specialties: %s</p>\n",
			esc(joinNatural(listing.Expertise.Specialties)))
	}
	if len(listing.Expertise.Certifications) > 0 {
		fmt.Fprintf(&b, "<p class=\"listing-certifications\">Certifications: %s</p>\n",
			esc(joinNatural(listing.Expertise.Certifications)))
	}
	b.WriteString("</section>")
	return b.String()
}

func listingDetails(listing directory.ListingRecord) string {
	var b strings.Builder
	b.WriteString("<section class=\"listing-details\">\n<h2>Details</h2>\n<dl>\n")
	fmt.Fprintf(&b, "<dt>Address</dt><dd>%s</dd>\n", esc(listing.Address.Formatted))
	fmt.Fprintf(&b, "<dt>Years in business</dt><dd>%d</dd>\n", listing.Business.YearsInBusiness)
	fmt.Fprintf(&b, "<dt>Pricing</dt><dd>%s</dd>\n", esc(listing.Business.Pricing))
	if len(listing.Expertise.Services) > 0 {
		fmt.Fprintf(&b, "<dt>Services</dt><dd>%s</dd>\n", esc(joinNatural(listing.Expertise.Services)))
	}
	b.WriteString("</dl>\n<h3>Business hours</h3>\n<ul class=\"listing-hours\">\n")
	for _, h := range listing.Business.Hours {
		fmt.Fprintf(&b, "<li>%s: %s</li>\n", esc(h.Days), esc(h.Hours))
	}
	b.WriteString("</ul>\n</section>")
	return b.String()
}

// listingContact renders only the contact affordances the listing
// actually has. An empty href, mailto:, or tel: must never appear.
func listingContact(listing directory.ListingRecord) string {
	var b strings.Builder
	b.WriteString("<section class=\"listing-contact\">\n<h2>Contact</h2>\n")
	wrote := false
	if listing.Contact.Phone != "" {
		fmt.Fprintf(&b, "<p><a href=\"tel:%s\">%s</a></p>\n",
			esc(telHref(listing.Contact.Phone)), esc(listing.Contact.Phone))
		wrote = true
	}
	if listing.Contact.Email != "" {
		fmt.Fprintf(&b, "<p><a href=\"mailto:%s\">%s</a></p>\n",
			esc(listing.Contact.Email), esc(listing.Contact.Email))
		wrote = true
	}
	if listing.Contact.Website != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s\" rel=\"nofollow\">Visit website</a></p>\n",
			esc(listing.Contact.Website))
		wrote = true
	}
	if !wrote {
		b.WriteString("<p>Visit their profile for contact details.</p>\n")
	}
	b.WriteString("</section>")
	return b.String()
}

func listingReviews(listing directory.ListingRecord) string {
	if len(listing.Reviews) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<section class=\"listing-reviews\">\n<h2>Reviews</h2>\n")
	for _, review := range listing.Reviews {
		b.WriteString("<article class=\"review\">\n")
		fmt.Fprintf(&b, "<p class=\"review-meta\"><span class=\"review-author\">%s</span> rated %.1f on %s</p>\n",
			esc(review.Author), review.Rating, esc(review.Date))
		fmt.Fprintf(&b, "<p>%s</p>\n", esc(review.Content))
		b.WriteString("</article>\n")
	}
	b.WriteString("</section>")
	return b.String()
}

func faqSection(items []FAQItem) string {
	var b strings.Builder
	b.WriteString("<section class=\"listing-faq\">\n<h2>Frequently asked questions</h2>\n")
	for _, item := range items {
		fmt.Fprintf(&b, "<h3>%s</h3>\n<p>%s</p>\n", esc(item.Question), esc(item.Answer))
	}
	b.WriteString("</section>")
	return b.String()
}

type crumb struct {
	label string
	url   string
}

func breadcrumbNav(crumbs ...crumb) string {
	var b strings.Builder
	b.WriteString("<nav class=\"breadcrumbs\">")
	for i, c := range crumbs {
		if i > 0 {
			b.WriteString(" / ")
		}
		if c.url != "" {
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>", esc(c.url), esc(c.label))
		} else {
			fmt.Fprintf(&b, "<span>%s</span>", esc(c.label))
		}
	}
	b.WriteString("</nav>")
	return b.String()
}

// telHref strips display punctuation from a phone number for tel: links.
func telHref(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, phone)
}

// truncate shortens s to at most max runes, cutting at the last space
// when one exists so words stay whole. Rune-based so multibyte text is
// never split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := max
	for i := max; i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return string(runes[:cut]) + "…"
}
