package standardize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL slug from a display name: lowercase, strip
// everything but word characters, spaces, and hyphens, then collapse
// whitespace runs to single hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// slugSet allocates unique slugs within one city. Collisions get a
// numeric suffix; allocation order follows input order so the same input
// always yields the same suffixes.
type slugSet struct {
	taken map[string]struct{}
}

func newSlugSet() *slugSet {
	return &slugSet{taken: make(map[string]struct{})}
}

// Claim returns base if free, otherwise base-2, base-3, ... and marks
// the returned slug as taken.
func (s *slugSet) Claim(base string) string {
	if base == "" {
		base = "appraiser"
	}
	candidate := base
	for n := 2; ; n++ {
		if _, exists := s.taken[candidate]; !exists {
			s.taken[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
