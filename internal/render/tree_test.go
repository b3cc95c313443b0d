package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artappraisal/sitegen/internal/directory"
)

func TestWriteTreeLayout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	locations := []directory.LocationRecord{
		testLocation(testListing()),
		{CitySlug: "chicago", CityName: "Chicago", State: "IL"},
	}

	stats, err := WriteTree(dir, testSite(), locations, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.LocationPages)
	assert.Equal(t, 1, stats.ListingPages)
	assert.Equal(t, 4, stats.Pages())

	for _, rel := range []string{
		"index.html",
		"location/austin/index.html",
		"location/chicago/index.html",
		"appraiser/prestige-estate-services/index.html",
	} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}
}

func TestWriteTreeDeterministic(t *testing.T) {
	t.Parallel()
	locations := []directory.LocationRecord{testLocation(testListing())}

	first := t.TempDir()
	second := t.TempDir()
	_, err := WriteTree(first, testSite(), locations, nil)
	require.NoError(t, err)
	_, err = WriteTree(second, testSite(), locations, nil)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(first, "appraiser", "prestige-estate-services", "index.html"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(second, "appraiser", "prestige-estate-services", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestLoadManifestMissingFile(t *testing.T) {
	t.Parallel()
	m, err := LoadManifest(filepath.Join(t.TempDir(), "assets.json"))
	require.NoError(t, err)
	assert.Empty(t, m.Styles)
	assert.Empty(t, m.Scripts)
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"styles":["/a.css"],"scripts":["/a.js"]}`), 0o644))
	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.css"}, m.Styles)
	assert.Equal(t, []string{"/a.js"}, m.Scripts)
}
