// Package standardize normalizes heterogeneous raw per-city listing
// files into the canonical directory model. Every output field is
// populated: absent data is synthesized deterministically and marked as
// fallback-generated so it can be corrected later.
package standardize

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
)

// RunStats summarizes one standardization pass for the CLI summary.
type RunStats struct {
	FilesSeen    int
	FilesLoaded  int
	FilesSkipped int
	Listings     int
	Synthesized  int
}

// Standardizer converts raw city files into LocationRecords.
type Standardizer struct {
	clock  directory.Clock
	logger *zap.Logger
}

// New constructs a Standardizer.
func New(clock directory.Clock, logger *zap.Logger) *Standardizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Standardizer{clock: clock, logger: logger}
}

// Run loads every *.json city file under dataDir, in lexical order.
// A malformed file is logged and skipped; the run continues for the
// remaining cities. A missing data directory is a fatal error.
func (s *Standardizer) Run(dataDir string) ([]directory.LocationRecord, RunStats, error) {
	stats := RunStats{}
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, stats, fmt.Errorf("read data dir %s: %w", dataDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	locations := make([]directory.LocationRecord, 0, len(names))
	for _, name := range names {
		stats.FilesSeen++
		path := filepath.Join(dataDir, name)
		loc, synth, err := s.LoadCityFile(path)
		if err != nil {
			stats.FilesSkipped++
			s.logger.Error("skipping malformed city file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		stats.FilesLoaded++
		stats.Listings += len(loc.Listings)
		stats.Synthesized += synth
		locations = append(locations, loc)
	}
	return locations, stats, nil
}

// LoadCityFile standardizes one per-city file. The city slug is the file
// name without extension. The returned count reports how many fields
// were fallback-generated.
func (s *Standardizer) LoadCityFile(path string) (directory.LocationRecord, int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from our own data dir walk
	if err != nil {
		return directory.LocationRecord{}, 0, fmt.Errorf("read city file: %w", err)
	}

	var raw rawCity
	if err := json.Unmarshal(data, &raw); err != nil {
		return directory.LocationRecord{}, 0, fmt.Errorf("decode city file: %w", err)
	}

	citySlug := strings.TrimSuffix(filepath.Base(path), ".json")
	cityName := string(raw.City)
	if cityName == "" {
		cityName = titleFromSlug(citySlug)
	}
	state := strings.ToUpper(string(raw.State))
	if state == "" {
		state = firstListingState(raw.Appraisers)
	}

	loc := directory.LocationRecord{
		CitySlug: citySlug,
		CityName: cityName,
		State:    state,
		Listings: make([]directory.ListingRecord, 0, len(raw.Appraisers)),
	}

	slugs := newSlugSet()
	synthesized := 0
	for _, rl := range raw.Appraisers {
		listing := s.standardizeListing(rl, cityName, state, slugs)
		if listing.Provenance.AddressGenerated {
			synthesized++
		}
		if listing.Provenance.HoursGenerated {
			synthesized++
		}
		if listing.Provenance.ReviewsGenerated {
			synthesized++
		}
		loc.Listings = append(loc.Listings, listing)
	}
	return loc, synthesized, nil
}

func (s *Standardizer) standardizeListing(
	raw rawListing,
	cityName string,
	state string,
	slugs *slugSet,
) directory.ListingRecord {
	name := string(raw.Name)
	if name == "" {
		name = "Art Appraiser"
	}
	slug := slugs.Claim(Slugify(name))
	rng := synthRand(name, cityName)

	listing := directory.ListingRecord{
		ID:   string(raw.ID),
		Slug: slug,
		Name: name,
		Contact: directory.Contact{
			Phone:   string(raw.Phone),
			Email:   string(raw.Email),
			Website: string(raw.Website),
		},
		Business: directory.Business{
			YearsInBusiness: int(raw.YearsInBusiness),
			Pricing:         string(raw.Pricing),
			Rating:          clampRating(float64(raw.Rating)),
			ReviewCount:     int(raw.ReviewCount),
		},
		Expertise: directory.Expertise{
			Specialties:    orDefault(raw.Specialties, []string{"Fine Art"}),
			Certifications: orDefault(raw.Certifications, []string{"Professional Appraiser"}),
			Services:       orDefault(raw.Services, []string{"Appraisal Services"}),
		},
		Content: directory.Content{
			About: string(raw.About),
			Notes: string(raw.Notes),
		},
		ImageURL: firstNonEmpty(string(raw.ImageURL), string(raw.ImageAlt)),
		Metadata: directory.Metadata{
			LastUpdated: s.clock.Now().Format("2006-01-02"),
			InService:   raw.InService == nil || *raw.InService,
		},
	}

	if listing.ID == "" {
		listing.ID = deterministicID(cityName, slug)
	}

	listing.Address = s.standardizeAddress(raw, cityName, state, rng, &listing.Provenance)
	listing.Business.Hours = standardizeHours(raw.Hours, &listing.Provenance)

	if listing.Business.YearsInBusiness <= 0 {
		listing.Business.YearsInBusiness = 5 + rng.Intn(25)
	}
	if listing.Business.Rating == 0 {
		listing.Business.Rating = synthRating(rng)
	}
	if listing.Business.ReviewCount <= 0 {
		listing.Business.ReviewCount = 5 + rng.Intn(35)
	}

	listing.Reviews = standardizeReviews(raw.Reviews, rng, &listing.Provenance)

	if listing.Content.About == "" {
		listing.Content.About = fmt.Sprintf(
			"%s provides professional %s appraisal services in %s.",
			name, strings.ToLower(listing.Expertise.Specialties[0]), cityName,
		)
	}
	if listing.Business.Pricing == "" {
		listing.Business.Pricing = "Contact for pricing information"
	}
	return listing
}

// standardizeAddress decomposes whatever address data the raw record
// carries and synthesizes the rest. Formatted is always rebuilt from the
// four parts, never taken verbatim.
func (s *Standardizer) standardizeAddress(
	raw rawListing,
	cityName string,
	state string,
	rng *rand.Rand,
	prov *directory.Provenance,
) directory.Address {
	addr := directory.Address{
		Street: string(raw.Street),
		City:   string(raw.City),
		State:  strings.ToUpper(string(raw.State)),
		Zip:    string(raw.Zip),
	}
	if formatted := string(raw.Address); formatted != "" {
		street, city, st, zip := parseFormattedAddress(formatted)
		if addr.Street == "" {
			addr.Street = street
		}
		if addr.City == "" {
			addr.City = city
		}
		if addr.State == "" {
			addr.State = st
		}
		if addr.Zip == "" {
			addr.Zip = zip
		}
	}
	if addr.City == "" {
		addr.City = cityName
	}
	if addr.State == "" {
		addr.State = state
	}
	if addr.Street == "" {
		addr.Street = synthStreet(rng)
		prov.AddressGenerated = true
	}
	if addr.Zip == "" {
		addr.Zip = synthZip(addr.State, rng)
		prov.AddressGenerated = true
	}
	addr.Formatted = fmt.Sprintf("%s, %s, %s %s", addr.Street, addr.City, addr.State, addr.Zip)
	return addr
}

func standardizeHours(raw flexStrings, prov *directory.Provenance) []directory.HoursRange {
	if len(raw) == 0 {
		prov.HoursGenerated = true
		return append([]directory.HoursRange(nil), defaultHours...)
	}
	hours := make([]directory.HoursRange, 0, len(raw))
	for _, line := range raw {
		days, span, found := strings.Cut(line, ":")
		if !found {
			days, span = line, "By appointment"
		}
		hours = append(hours, directory.HoursRange{
			Days:  strings.TrimSpace(days),
			Hours: strings.TrimSpace(span),
		})
	}
	return hours
}

func standardizeReviews(raw []rawReview, rng *rand.Rand, prov *directory.Provenance) []directory.Review {
	if len(raw) == 0 {
		prov.ReviewsGenerated = true
		return synthReviews(rng)
	}
	reviews := make([]directory.Review, 0, len(raw))
	for _, rr := range raw {
		reviews = append(reviews, directory.Review{
			Author:  firstNonEmpty(string(rr.Author), "Verified Client"),
			Rating:  clampRating(float64(rr.Rating)),
			Date:    string(rr.Date),
			Content: string(rr.Content),
		})
	}
	// Most-recent-first by date string; ISO dates sort lexically.
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Date > reviews[j].Date
	})
	return reviews
}

var addressTail = regexp.MustCompile(`^([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)$`)

// parseFormattedAddress splits "123 Main St, Springfield, IL 62701" into
// its parts. Missing pieces come back empty.
func parseFormattedAddress(formatted string) (street, city, state, zip string) {
	parts := strings.Split(formatted, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	street = parts[0]
	rest := parts[1:]
	if len(rest) > 0 {
		if m := addressTail.FindStringSubmatch(rest[len(rest)-1]); m != nil {
			state = strings.ToUpper(m[1])
			zip = m[2]
			rest = rest[:len(rest)-1]
		}
	}
	if len(rest) > 0 {
		city = rest[len(rest)-1]
	}
	return street, city, state, zip
}

func deterministicID(cityName, slug string) string {
	h := fnv.New32a()
	h.Write([]byte(cityName))
	h.Write([]byte{0})
	h.Write([]byte(slug))
	return fmt.Sprintf("app-%08x", h.Sum32())
}

func firstListingState(listings []rawListing) string {
	for _, l := range listings {
		if st := strings.ToUpper(string(l.State)); st != "" {
			return st
		}
		if formatted := string(l.Address); formatted != "" {
			if _, _, st, _ := parseFormattedAddress(formatted); st != "" {
				return st
			}
		}
	}
	return "NY"
}

func titleFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	default:
		return r
	}
}

func orDefault(values []string, fallback []string) []string {
	if len(values) > 0 {
		return values
	}
	return append([]string(nil), fallback...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
