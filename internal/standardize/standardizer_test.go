package standardize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testClock() fixedClock {
	return fixedClock{t: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func writeCityFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const springfieldJSON = `{
  "appraisers": [
    {
      "name": "Jane Doe Appraisals",
      "address": "12 Gallery Row, Springfield, IL 62701",
      "phone": "555-0100",
      "email": "jane@example.com",
      "website": "https://janedoe.example.com",
      "imageUrl": "https://images.example.com/jane.jpg",
      "specialties": ["Painting", "painting", "Antique"],
      "rating": "4.8",
      "reviewCount": 12,
      "reviews": [
        {"author": "A", "rating": 5, "date": "2025-01-01", "content": "Great."},
        {"author": "B", "rating": 4, "date": "2025-03-01", "content": "Solid."}
      ]
    },
    {
      "name": "Jane Doe Appraisals",
      "phone": "555-0101"
    }
  ]
}`

// TestLoadCityFileStandardizesHeterogeneousInput checks decomposition,
// dedup, and flexible scalar handling end to end.
func TestLoadCityFileStandardizesHeterogeneousInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeCityFile(t, dir, "springfield.json", springfieldJSON)

	s := New(testClock(), zap.NewNop())
	loc, _, err := s.LoadCityFile(path)
	require.NoError(t, err)

	assert.Equal(t, "springfield", loc.CitySlug)
	assert.Equal(t, "Springfield", loc.CityName)
	assert.Equal(t, "IL", loc.State)
	require.Len(t, loc.Listings, 2)

	first := loc.Listings[0]
	assert.Equal(t, "jane-doe-appraisals", first.Slug)
	assert.Equal(t, "12 Gallery Row", first.Address.Street)
	assert.Equal(t, "Springfield", first.Address.City)
	assert.Equal(t, "IL", first.Address.State)
	assert.Equal(t, "62701", first.Address.Zip)
	assert.Equal(t, "12 Gallery Row, Springfield, IL 62701", first.Address.Formatted)
	assert.Equal(t, 4.8, first.Business.Rating) // numeric string accepted
	assert.Equal(t, []string{"Painting", "Antique"}, first.Expertise.Specialties)
	assert.False(t, first.Provenance.ReviewsGenerated)
	// Reviews re-ordered most-recent-first.
	assert.Equal(t, "2025-03-01", first.Reviews[0].Date)
	assert.Equal(t, "2025-08-01", first.Metadata.LastUpdated)
	assert.True(t, first.Publishable())

	second := loc.Listings[1]
	assert.Equal(t, "jane-doe-appraisals-2", second.Slug)
	assert.True(t, second.Provenance.AddressGenerated)
	assert.True(t, second.Provenance.HoursGenerated)
	assert.True(t, second.Provenance.ReviewsGenerated)
	assert.NotEmpty(t, second.Address.Zip)
	assert.NotEmpty(t, second.Reviews)
	assert.NotZero(t, second.Business.Rating)
}

// TestStandardizerIdempotence runs the standardizer twice over the same
// input and requires byte-identical output (LastUpdated is pinned by the
// fixed clock, so even that field matches here).
func TestStandardizerIdempotence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCityFile(t, dir, "springfield.json", springfieldJSON)
	writeCityFile(t, dir, "portland.json", `{"state":"OR","appraisers":[{"name":"Rose City Art"}]}`)

	s := New(testClock(), zap.NewNop())
	first, _, err := s.Run(dir)
	require.NoError(t, err)
	second, _, err := s.Run(dir)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// TestRunSkipsMalformedFiles verifies the partial-success policy: one
// bad file must not abort the other cities.
func TestRunSkipsMalformedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCityFile(t, dir, "bad.json", `{"appraisers": [`)
	writeCityFile(t, dir, "good.json", `{"appraisers": []}`)

	s := New(testClock(), zap.NewNop())
	locations, stats, err := s.Run(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesSeen)
	assert.Equal(t, 1, stats.FilesLoaded)
	assert.Equal(t, 1, stats.FilesSkipped)
	require.Len(t, locations, 1)
	assert.Equal(t, "good", locations[0].CitySlug)
	assert.Empty(t, locations[0].Listings)
}

// TestRunMissingDataDirIsFatal ensures a missing source dir fails the run.
func TestRunMissingDataDirIsFatal(t *testing.T) {
	t.Parallel()

	s := New(testClock(), zap.NewNop())
	_, _, err := s.Run(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// TestZipMatchesState checks synthesized ZIPs use the state prefix table.
func TestZipMatchesState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeCityFile(t, dir, "austin.json",
		`{"state":"TX","appraisers":[{"name":"Lone Star Appraisals","phone":"555"}]}`)

	s := New(testClock(), zap.NewNop())
	loc, _, err := s.LoadCityFile(path)
	require.NoError(t, err)
	require.Len(t, loc.Listings, 1)

	zip := loc.Listings[0].Address.Zip
	require.Len(t, zip, 5)
	assert.Equal(t, "75", zip[:2], "TX zips should start from the 752xx base")
}

func TestParseFormattedAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in                       string
		street, city, state, zip string
	}{
		{"12 Gallery Row, Springfield, IL 62701", "12 Gallery Row", "Springfield", "IL", "62701"},
		{"12 Gallery Row, Springfield", "12 Gallery Row", "Springfield", "", ""},
		{"Suite 4, 12 Gallery Row, Springfield, IL 62701-1234", "Suite 4", "Springfield", "IL", "62701-1234"},
		{"", "", "", "", ""},
	}
	for _, tc := range cases {
		street, city, state, zip := parseFormattedAddress(tc.in)
		assert.Equal(t, tc.street, street, tc.in)
		assert.Equal(t, tc.city, city, tc.in)
		assert.Equal(t, tc.state, state, tc.in)
		assert.Equal(t, tc.zip, zip, tc.in)
	}
}

var _ directory.Clock = fixedClock{}
