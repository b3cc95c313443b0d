// Package directory defines the canonical data model shared by every
// pipeline stage: listings, locations, and the small interfaces the
// stages depend on.
package directory

import "time"

// Address is the decomposed postal address of a listing. Formatted is
// always derivable from the other four fields; the standardizer keeps
// them in sync.
type Address struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Formatted string `json:"formatted"`
}

// Contact holds the ways a listing can be reached. Every field is
// optional, but a publishable listing carries at least one of them.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// HoursRange is one display row of business hours, e.g.
// {"Mon-Fri", "9:00 AM - 5:00 PM"}.
type HoursRange struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

// Business captures operational facts about a listing. Rating is
// independent of the curated Reviews slice; callers must not derive one
// from the other.
type Business struct {
	YearsInBusiness int          `json:"yearsInBusiness"`
	Hours           []HoursRange `json:"hours"`
	Pricing         string       `json:"pricing"`
	Rating          float64      `json:"rating"`
	ReviewCount     int          `json:"reviewCount"`
}

// Expertise groups the skill-related string sets of a listing. The
// slices are deduplicated but keep insertion order for display.
type Expertise struct {
	Specialties    []string `json:"specialties"`
	Certifications []string `json:"certifications"`
	Services       []string `json:"services"`
}

// Content holds the free-text copy for a listing page.
type Content struct {
	About string `json:"about"`
	Notes string `json:"notes,omitempty"`
}

// Review is one curated customer review, most-recent-first within
// ListingRecord.Reviews. Business.ReviewCount may exceed len(Reviews).
type Review struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date"`
	Content string  `json:"content"`
}

// Metadata records bookkeeping facts about a listing record.
type Metadata struct {
	LastUpdated string `json:"lastUpdated"`
	InService   bool   `json:"inService"`
}

// Provenance marks which listing fields were synthesized by the
// standardizer rather than present in the raw input. Synthesized data is
// plausible filler and must never be mistaken for authoritative content.
type Provenance struct {
	AddressGenerated bool `json:"addressGenerated,omitempty"`
	HoursGenerated   bool `json:"hoursGenerated,omitempty"`
	ReviewsGenerated bool `json:"reviewsGenerated,omitempty"`
}

// ListingRecord is the canonical shape of one appraiser profile after
// standardization. Every field is populated; downstream stages never
// check for absence of a required field.
type ListingRecord struct {
	ID      string  `json:"id"`
	Slug    string  `json:"slug"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
	Contact Contact `json:"contact"`

	Business  Business  `json:"business"`
	Expertise Expertise `json:"expertise"`
	Content   Content   `json:"content"`
	Reviews   []Review  `json:"reviews"`
	Metadata  Metadata  `json:"metadata"`

	// ImageURL is the raw declared image from the input, if any. It is
	// input to the image resolver, never rendered directly.
	ImageURL string `json:"imageUrl,omitempty"`
	// ResolvedImage is injected by the image resolver before rendering
	// so the renderer stays a pure function of its inputs.
	ResolvedImage string `json:"resolvedImage,omitempty"`

	Provenance Provenance `json:"provenance,omitempty"`
}

// Publishable reports whether the listing carries at least one contact
// method and may therefore be published.
func (l ListingRecord) Publishable() bool {
	return l.Contact.Phone != "" || l.Contact.Email != "" || l.Contact.Website != ""
}

// LocationRecord aggregates every listing of one city. Listings may be
// empty; location pages must still render. Records are loaded once per
// build and never mutated after standardization.
type LocationRecord struct {
	CitySlug string          `json:"citySlug"`
	CityName string          `json:"cityName"`
	State    string          `json:"state"`
	Listings []ListingRecord `json:"appraisers"`
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
