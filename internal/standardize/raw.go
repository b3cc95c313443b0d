package standardize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The raw per-city files are heterogeneous: scraped and hand-edited data
// mixed together, with fields appearing as scalars, arrays, or not at
// all. The flex* types absorb that variance at decode time so the rest
// of the standardizer works with one shape.

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", string(data))
}

// flexStrings decodes a JSON string, a comma-separated string, or an
// array of strings into a []string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*f = cleanStrings(many)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = cleanStrings(strings.Split(one, ","))
		return nil
	}
	return fmt.Errorf("value %s is neither string nor string array", string(data))
}

// flexFloat decodes a JSON number or numeric string into a float64.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("parse %q as number: %w", s, err)
		}
		*f = flexFloat(parsed)
		return nil
	}
	return fmt.Errorf("value %s is not numeric", string(data))
}

// flexInt decodes a JSON integer, float, or numeric string into an int.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var ff flexFloat
	if err := ff.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexInt(ff)
	return nil
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// rawReview mirrors one review entry in the input files.
type rawReview struct {
	Author  flexString `json:"author"`
	Rating  flexFloat  `json:"rating"`
	Date    flexString `json:"date"`
	Content flexString `json:"content"`
}

// rawListing mirrors one appraiser entry in the input files. Field names
// cover the naming variants observed across city files.
type rawListing struct {
	ID   flexString `json:"id"`
	Name flexString `json:"name"`

	Address   flexString `json:"address"`
	Street    flexString `json:"street"`
	City      flexString `json:"city"`
	State     flexString `json:"state"`
	Zip       flexString `json:"zip"`
	Phone     flexString `json:"phone"`
	Email     flexString `json:"email"`
	Website   flexString `json:"website"`
	ImageURL  flexString `json:"imageUrl"`
	ImageAlt  flexString `json:"image"`
	About     flexString `json:"about"`
	Notes     flexString `json:"notes"`
	Pricing   flexString `json:"pricing"`
	InService *bool      `json:"inService"`

	YearsInBusiness flexInt     `json:"yearsInBusiness"`
	Rating          flexFloat   `json:"rating"`
	ReviewCount     flexInt     `json:"reviewCount"`
	Specialties     flexStrings `json:"specialties"`
	Certifications  flexStrings `json:"certifications"`
	Services        flexStrings `json:"services"`
	Hours           flexStrings `json:"hours"`
	Reviews         []rawReview `json:"reviews"`
}

// rawCity mirrors one per-city input file.
type rawCity struct {
	City       flexString   `json:"city"`
	State      flexString   `json:"state"`
	Appraisers []rawListing `json:"appraisers"`
}
