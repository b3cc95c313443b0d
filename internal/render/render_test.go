package render

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artappraisal/sitegen/internal/directory"
)

func testSite() SiteConfig {
	return SiteConfig{
		BaseURL:     "https://art-appraisers.example.com",
		Name:        "Art Appraiser Directory",
		Description: "Find qualified art appraisers in your city.",
		Assets: Manifest{
			Styles:  []string{"/assets/site.css"},
			Scripts: []string{"/assets/site.js"},
		},
	}
}

func testListing() directory.ListingRecord {
	return directory.ListingRecord{
		ID:   "app-0000abcd",
		Slug: "prestige-estate-services",
		Name: "Prestige Estate Services",
		Address: directory.Address{
			Street:    "412 Congress Ave",
			City:      "Austin",
			State:     "TX",
			Zip:       "75001",
			Formatted: "412 Congress Ave, Austin, TX 75001",
		},
		Contact: directory.Contact{
			Phone:   "(512) 555-0143",
			Email:   "hello@prestige.example.com",
			Website: "https://prestige.example.com",
		},
		Business: directory.Business{
			YearsInBusiness: 12,
			Hours: []directory.HoursRange{
				{Days: "Mon-Fri", Hours: "9:00 AM - 5:00 PM"},
			},
			Pricing: "$150-$300 per item",
			Rating:  4.8,
			ReviewCount: 27,
		},
		Expertise: directory.Expertise{
			Specialties:    []string{"Fine Art", "Antiques"},
			Certifications: []string{"ISA AM"},
			Services:       []string{"Insurance Appraisals", "Estate Appraisals"},
		},
		Content: directory.Content{
			About: "Prestige Estate Services provides certified appraisals across central Texas.",
		},
		Reviews: []directory.Review{
			{Author: "Dana R.", Rating: 5, Date: "2025-04-12", Content: "Thorough and fast."},
		},
		Metadata:      directory.Metadata{LastUpdated: "2025-08-01", InService: true},
		ResolvedImage: "https://img.example.com/images/prestige-estate-services.jpg",
	}
}

func testLocation(listings ...directory.ListingRecord) directory.LocationRecord {
	return directory.LocationRecord{
		CitySlug: "austin",
		CityName: "Austin",
		State:    "TX",
		Listings: listings,
	}
}

func parseDoc(t *testing.T, doc *Document) *goquery.Document {
	t.Helper()
	html, err := doc.HTML()
	require.NoError(t, err)
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return parsed
}

// schemas decodes every ld+json block keyed by @type.
func schemas(t *testing.T, parsed *goquery.Document) map[string]map[string]any {
	t.Helper()
	out := map[string]map[string]any{}
	parsed.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(s.Text()), &obj))
		typ, _ := obj["@type"].(string)
		out[typ] = obj
	})
	return out
}

func TestListingPageCanonicalAndBreadcrumb(t *testing.T) {
	t.Parallel()
	parsed := parseDoc(t, ListingPage(testSite(), testLocation(), testListing()))

	href, ok := parsed.Find(`link[rel="canonical"]`).Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://art-appraisers.example.com/appraiser/prestige-estate-services/", href)

	ld := schemas(t, parsed)
	crumbs := ld["BreadcrumbList"]["itemListElement"].([]any)
	require.Len(t, crumbs, 3)
	first := crumbs[0].(map[string]any)
	assert.Equal(t, "Home", first["name"])
	assert.Equal(t, float64(1), first["position"])
	last := crumbs[2].(map[string]any)
	assert.Equal(t, "Prestige Estate Services", last["name"])
	_, hasItem := last["item"]
	assert.False(t, hasItem, "terminal crumb carries no item URL")
}

func TestListingPageSchemaMatchesBody(t *testing.T) {
	t.Parallel()
	listing := testListing()
	parsed := parseDoc(t, ListingPage(testSite(), testLocation(), listing))
	ld := schemas(t, parsed)

	lb := ld["LocalBusiness"]
	assert.Equal(t, listing.Contact.Phone, lb["telephone"])
	assert.Equal(t, listing.Contact.Email, lb["email"])
	assert.Equal(t, listing.Contact.Website, lb["sameAs"])
	assert.Equal(t, listing.ResolvedImage, lb["image"])

	body := parsed.Find("body").Text()
	assert.Contains(t, body, listing.Contact.Phone)
	assert.Contains(t, body, listing.Contact.Email)
	assert.Equal(t, 1, parsed.Find(`a[href^="tel:"]`).Length())
	assert.Equal(t, 1, parsed.Find(`a[href^="mailto:"]`).Length())

	rating := lb["aggregateRating"].(map[string]any)
	assert.Equal(t, 4.8, rating["ratingValue"])
	assert.Equal(t, float64(27), rating["reviewCount"])
}

func TestListingPageOmitsMissingContact(t *testing.T) {
	t.Parallel()
	listing := testListing()
	listing.Contact = directory.Contact{}
	parsed := parseDoc(t, ListingPage(testSite(), testLocation(), listing))

	assert.Zero(t, parsed.Find(`a[href^="tel:"]`).Length())
	assert.Zero(t, parsed.Find(`a[href^="mailto:"]`).Length())
	parsed.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		assert.NotEmpty(t, href, "anchor with empty href")
		assert.NotEqual(t, "tel:", href)
		assert.NotEqual(t, "mailto:", href)
	})

	ld := schemas(t, parsed)
	lb := ld["LocalBusiness"]
	_, hasPhone := lb["telephone"]
	_, hasEmail := lb["email"]
	_, hasSameAs := lb["sameAs"]
	assert.False(t, hasPhone)
	assert.False(t, hasEmail)
	assert.False(t, hasSameAs)

	faq := ld["FAQPage"]["mainEntity"].([]any)
	lastQ := faq[len(faq)-1].(map[string]any)
	answer := lastQ["acceptedAnswer"].(map[string]any)["text"].(string)
	assert.Equal(t, "Visit their profile for contact details.", answer)
	assert.Contains(t, parsed.Find(".listing-faq").Text(), answer)
}

func TestListingPageVisibleFAQMatchesSchema(t *testing.T) {
	t.Parallel()
	parsed := parseDoc(t, ListingPage(testSite(), testLocation(), testListing()))
	ld := schemas(t, parsed)

	faqBody := parsed.Find(".listing-faq")
	for _, entry := range ld["FAQPage"]["mainEntity"].([]any) {
		q := entry.(map[string]any)
		assert.Contains(t, faqBody.Text(), q["name"].(string))
		answer := q["acceptedAnswer"].(map[string]any)["text"].(string)
		assert.Contains(t, faqBody.Text(), answer)
	}
}

func TestLocationPageListsAppraisers(t *testing.T) {
	t.Parallel()
	site := testSite()
	parsed := parseDoc(t, LocationPage(site, testLocation(testListing())))

	href, ok := parsed.Find(`link[rel="canonical"]`).Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://art-appraisers.example.com/location/austin/", href)

	cardLink, ok := parsed.Find(".listing-card h2 a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://art-appraisers.example.com/appraiser/prestige-estate-services/", cardLink)

	ld := schemas(t, parsed)
	items := ld["ItemList"]["itemListElement"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Prestige Estate Services", item["name"])
	assert.Equal(t, cardLink, item["item"])

	crumbs := ld["BreadcrumbList"]["itemListElement"].([]any)
	require.Len(t, crumbs, 2)
}

func TestLocationPageZeroListings(t *testing.T) {
	t.Parallel()
	parsed := parseDoc(t, LocationPage(testSite(), testLocation()))

	assert.Contains(t, parsed.Find(".location-empty").Text(), "onboarding")
	assert.Zero(t, parsed.Find(`meta[name="robots"]`).Length(), "empty location stays indexable")

	ld := schemas(t, parsed)
	list := ld["ItemList"]
	assert.Nil(t, list["itemListElement"])
}

func TestHomePageLinksEveryCity(t *testing.T) {
	t.Parallel()
	locations := []directory.LocationRecord{
		{CitySlug: "austin", CityName: "Austin", State: "TX"},
		{CitySlug: "chicago", CityName: "Chicago", State: "IL"},
	}
	parsed := parseDoc(t, HomePage(testSite(), locations))

	links := parsed.Find(".home-cities a")
	require.Equal(t, 2, links.Length())
	first, _ := links.First().Attr("href")
	assert.Equal(t, "https://art-appraisers.example.com/location/austin/", first)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	unbroken := strings.Repeat("画廊鑑定", 80)
	got := truncate(unbroken, 160)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 161, len([]rune(got)), "160 runes plus ellipsis")

	spaced := strings.TrimSpace(strings.Repeat("estate appraisal ", 30))
	got = truncate(spaced, 160)
	require.True(t, strings.HasSuffix(got, "…"))
	trimmed := strings.TrimSuffix(got, "…")
	lastWord := trimmed[strings.LastIndex(trimmed, " ")+1:]
	assert.Contains(t, []string{"estate", "appraisal", ""}, lastWord,
		"must cut at a word boundary")

	assert.Equal(t, "short", truncate("short", 160))
}

func TestListingPageDescriptionValidUTF8(t *testing.T) {
	t.Parallel()
	listing := testListing()
	listing.Content.About = strings.Repeat("美術品の鑑定と評価を提供します。", 40)
	parsed := parseDoc(t, ListingPage(testSite(), testLocation(), listing))

	desc, ok := parsed.Find(`meta[name="description"]`).Attr("content")
	require.True(t, ok)
	assert.True(t, utf8.ValidString(desc))
	assert.NotContains(t, desc, "�")
}

func TestDocumentEscapesContent(t *testing.T) {
	t.Parallel()
	doc := NewDocument(`Art <&> "Co"`, "", "https://example.com/x/", Manifest{})
	html, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "Art &lt;&amp;&gt;")
	assert.NotContains(t, html, "<&>")
}

func TestNoindexMeta(t *testing.T) {
	t.Parallel()
	doc := NewDocument("t", "", "https://example.com/", Manifest{}).Noindex()
	parsed := parseDoc(t, doc)
	content, ok := parsed.Find(`meta[name="robots"]`).Attr("content")
	require.True(t, ok)
	assert.Contains(t, content, "noindex")
}

func TestSiteConfigValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		cfg  SiteConfig
		ok   bool
	}{
		{"valid", SiteConfig{BaseURL: "https://a.example.com", Name: "A"}, true},
		{"missing base", SiteConfig{Name: "A"}, false},
		{"relative base", SiteConfig{BaseURL: "/just/a/path", Name: "A"}, false},
		{"missing name", SiteConfig{BaseURL: "https://a.example.com"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPageURLNormalization(t *testing.T) {
	t.Parallel()
	cfg := SiteConfig{BaseURL: "https://a.example.com/", Name: "A"}
	assert.Equal(t, "https://a.example.com/", cfg.HomeURL())
	assert.Equal(t, "https://a.example.com/location/austin/", cfg.PageURL("location", "austin"))
	assert.Equal(t, "https://a.example.com/location/austin/", cfg.PageURL("/location/", "/austin/"))
	assert.Equal(t, "https://a.example.com/", cfg.PageURL())
}
