package render

import (
	"fmt"
	"strings"

	"github.com/artappraisal/sitegen/internal/directory"
)

// JSON-LD structured data types. Field order matters for byte-stable
// output, so every builder fills them in a fixed order.

const schemaContext = "https://schema.org"

// PostalAddress is the schema.org postal address object.
type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
}

// AggregateRating is the schema.org aggregate rating object.
type AggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int     `json:"reviewCount"`
}

// LocalBusiness describes one appraiser listing for search engines.
// Optional contact fields are omitted entirely when absent, mirroring
// the visible page: the schema never asserts data the body does not show.
type LocalBusiness struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Image           string           `json:"image,omitempty"`
	URL             string           `json:"url"`
	Telephone       string           `json:"telephone,omitempty"`
	Email           string           `json:"email,omitempty"`
	SameAs          string           `json:"sameAs,omitempty"`
	Address         PostalAddress    `json:"address"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	OpeningHours    []string         `json:"openingHours,omitempty"`
	PriceRange      string           `json:"priceRange,omitempty"`
	KnowsAbout      []string         `json:"knowsAbout,omitempty"`
}

// ListItem is one entry of a BreadcrumbList or ItemList.
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

// BreadcrumbList is the schema.org breadcrumb trail.
type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// ItemList enumerates the listings of a location page.
type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	Name            string     `json:"name"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// FAQAnswer is the accepted answer of one FAQ entry.
type FAQAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// FAQQuestion is one FAQ entry.
type FAQQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer FAQAnswer `json:"acceptedAnswer"`
}

// FAQPage is the schema.org FAQ object.
type FAQPage struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []FAQQuestion `json:"mainEntity"`
}

// FAQItem is the renderer-internal question/answer pair. The same items
// feed both the visible FAQ section and the FAQPage schema so the two
// can never drift apart.
type FAQItem struct {
	Question string
	Answer   string
}

func localBusinessSchema(site SiteConfig, listing directory.ListingRecord) LocalBusiness {
	schema := LocalBusiness{
		Context:     schemaContext,
		Type:        "LocalBusiness",
		Name:        listing.Name,
		Description: listing.Content.About,
		Image:       listing.ResolvedImage,
		URL:         site.PageURL("appraiser", listing.Slug),
		Telephone:   listing.Contact.Phone,
		Email:       listing.Contact.Email,
		SameAs:      listing.Contact.Website,
		Address: PostalAddress{
			Type:            "PostalAddress",
			StreetAddress:   listing.Address.Street,
			AddressLocality: listing.Address.City,
			AddressRegion:   listing.Address.State,
			PostalCode:      listing.Address.Zip,
		},
		PriceRange: listing.Business.Pricing,
		KnowsAbout: listing.Expertise.Specialties,
	}
	if listing.Business.Rating > 0 && listing.Business.ReviewCount > 0 {
		schema.AggregateRating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: listing.Business.Rating,
			ReviewCount: listing.Business.ReviewCount,
		}
	}
	for _, h := range listing.Business.Hours {
		schema.OpeningHours = append(schema.OpeningHours, h.Days+" "+h.Hours)
	}
	return schema
}

// breadcrumbSchema builds a 2- or 3-level trail: Home → City (→ Listing).
func breadcrumbSchema(crumbs ...ListItem) BreadcrumbList {
	for i := range crumbs {
		crumbs[i].Type = "ListItem"
		crumbs[i].Position = i + 1
	}
	return BreadcrumbList{
		Context:         schemaContext,
		Type:            "BreadcrumbList",
		ItemListElement: crumbs,
	}
}

// buildFAQ derives the question/answer pairs for one listing from its
// services, specialties, and contact fields. Every answer must hold for
// the visible page too; the contact answer degrades gracefully when the
// listing exposes no direct contact method.
func buildFAQ(listing directory.ListingRecord, cityName string) []FAQItem {
	items := []FAQItem{
		{
			Question: fmt.Sprintf("What services does %s offer?", listing.Name),
			Answer: fmt.Sprintf("%s offers %s in %s.",
				listing.Name, joinNatural(listing.Expertise.Services), cityName),
		},
		{
			Question: fmt.Sprintf("What does %s specialize in?", listing.Name),
			Answer: fmt.Sprintf("Specialties include %s.",
				joinNatural(listing.Expertise.Specialties)),
		},
	}

	var methods []string
	if listing.Contact.Phone != "" {
		methods = append(methods, "by phone at "+listing.Contact.Phone)
	}
	if listing.Contact.Email != "" {
		methods = append(methods, "by email at "+listing.Contact.Email)
	}
	if listing.Contact.Website != "" {
		methods = append(methods, "through their website")
	}
	contactAnswer := "Visit their profile for contact details."
	if len(methods) > 0 {
		contactAnswer = fmt.Sprintf("You can reach %s %s.", listing.Name, joinNatural(methods))
	}
	items = append(items, FAQItem{
		Question: fmt.Sprintf("How can I contact %s?", listing.Name),
		Answer:   contactAnswer,
	})
	return items
}

func faqSchema(items []FAQItem) FAQPage {
	page := FAQPage{Context: schemaContext, Type: "FAQPage"}
	for _, item := range items {
		page.MainEntity = append(page.MainEntity, FAQQuestion{
			Type: "Question",
			Name: item.Question,
			AcceptedAnswer: FAQAnswer{
				Type: "Answer",
				Text: item.Answer,
			},
		})
	}
	return page
}

// joinNatural renders a list as "a", "a and b", or "a, b, and c".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
