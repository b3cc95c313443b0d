package images

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
	"github.com/artappraisal/sitegen/internal/progress"
)

// Config captures every knob that influences image resolution. Values
// originate from Viper so the resolver can be configured via files, env
// vars, or CLI flags.
type Config struct {
	HostBaseURL       string
	DefaultURL        string
	GeneratorEndpoint string
	Placeholders      map[string]string
	ProbeTimeout      time.Duration
	GenerateTimeout   time.Duration
	Concurrency       int
	CacheDir          string
	CacheTTL          time.Duration
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		HostBaseURL:       v.GetString("images.host_base_url"),
		DefaultURL:        v.GetString("images.default_url"),
		GeneratorEndpoint: v.GetString("images.generator_endpoint"),
		Placeholders:      v.GetStringMapString("images.placeholders"),
		ProbeTimeout:      v.GetDuration("images.probe_timeout"),
		GenerateTimeout:   v.GetDuration("images.generate_timeout"),
		Concurrency:       v.GetInt("images.concurrency"),
		CacheDir:          v.GetString("images.cache_dir"),
		CacheTTL:          v.GetDuration("images.cache_ttl"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.DefaultURL == "" {
		return fmt.Errorf("images.default_url must be set")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("images.probe_timeout must be > 0")
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("images.generate_timeout must be > 0")
	}
	if c.Concurrency <= 0 || c.Concurrency > 20 {
		return fmt.Errorf("images.concurrency must be in 1..20 to respect image host rate limits")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("images.cache_ttl must be > 0")
	}
	return nil
}

// Resolution is the outcome of resolving one listing's image.
type Resolution struct {
	URL  string
	Tier progress.Tier
	// Notes records the errors absorbed on the way down the chain.
	Notes []string
}

// Resolver walks the fallback chain for a listing. The chain is attempted
// strictly in priority order; a later tier is never preferred over an
// earlier unvalidated one. Resolve always succeeds because the final
// tier is a static default.
type Resolver struct {
	cfg       Config
	cache     *Cache
	prober    Prober
	generator Generator
	logger    *zap.Logger
}

// NewResolver constructs a Resolver. generator may be nil to skip the
// generation tier entirely.
func NewResolver(cfg Config, cache *Cache, prober Prober, generator Generator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:       cfg,
		cache:     cache,
		prober:    prober,
		generator: generator,
		logger:    logger,
	}
}

// Resolve returns a working image URL for the listing. It never returns
// an empty URL: the default tier cannot fail.
func (r *Resolver) Resolve(ctx context.Context, citySlug string, listing directory.ListingRecord) Resolution {
	notes := []string(nil)

	// Tier 1: the declared image, if any.
	if listing.ImageURL != "" {
		if err := r.probeCached(ctx, listing.ImageURL); err == nil {
			return Resolution{URL: listing.ImageURL, Tier: progress.TierDeclared, Notes: notes}
		} else {
			notes = append(notes, fmt.Sprintf("declared: %v", err))
		}
	}

	// Tier 2: conventional URLs on the image host.
	for _, candidate := range r.alternateURLs(citySlug, listing) {
		if err := r.probeCached(ctx, candidate); err == nil {
			return Resolution{URL: candidate, Tier: progress.TierAlternate, Notes: notes}
		} else {
			notes = append(notes, fmt.Sprintf("alternate: %v", err))
		}
	}

	// Tier 3: generate a fresh image, then validate it like any other URL.
	if r.generator != nil {
		generated, err := r.generator.Generate(ctx, GenerateRequest{
			Name:        listing.Name,
			City:        citySlug,
			Specialties: listing.Expertise.Specialties,
		})
		switch {
		case err == nil:
			TotalGenerations.WithLabelValues(outcomeOK).Inc()
			if probeErr := r.probeCached(ctx, generated); probeErr == nil {
				return Resolution{URL: generated, Tier: progress.TierGenerated, Notes: notes}
			} else {
				notes = append(notes, fmt.Sprintf("generated: %v", probeErr))
			}
		case errors.Is(err, ErrGeneratorDisabled):
			// Not an error; the tier simply is not configured.
		default:
			TotalGenerations.WithLabelValues(outcomeFailed).Inc()
			notes = append(notes, fmt.Sprintf("generate: %v", err))
		}
	}

	// Tier 4: specialty-matched stock placeholder.
	if url := r.placeholderFor(listing); url != "" {
		return Resolution{URL: url, Tier: progress.TierPlaceholder, Notes: notes}
	}

	// Tier 5: the global default. Cannot fail.
	return Resolution{URL: r.cfg.DefaultURL, Tier: progress.TierDefault, Notes: notes}
}

// probeCached consults the TTL cache before hitting the network, and
// records the verdict afterwards.
func (r *Resolver) probeCached(ctx context.Context, url string) error {
	if valid, ok := r.cache.Lookup(url); ok {
		TotalCacheHits.Inc()
		if valid {
			return nil
		}
		return fmt.Errorf("cached invalid verdict for %s", url)
	}
	err := r.prober.Probe(ctx, url)
	if err != nil {
		TotalProbes.WithLabelValues(outcomeFailed).Inc()
	} else {
		TotalProbes.WithLabelValues(outcomeOK).Inc()
	}
	r.cache.Record(url, err == nil)
	return err
}

// alternateURLs generates candidate URLs following the common naming
// conventions on the image host: slug, slug-city, and a compacted
// business name.
func (r *Resolver) alternateURLs(citySlug string, listing directory.ListingRecord) []string {
	base := strings.TrimRight(r.cfg.HostBaseURL, "/")
	if base == "" {
		return nil
	}
	compactName := strings.ToLower(strings.ReplaceAll(listing.Name, " ", "-"))
	compactName = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, compactName)

	seen := make(map[string]struct{}, 3)
	candidates := make([]string, 0, 3)
	for _, path := range []string{
		fmt.Sprintf("%s/appraisers/%s.jpg", base, listing.Slug),
		fmt.Sprintf("%s/appraisers/%s-%s.jpg", base, listing.Slug, citySlug),
		fmt.Sprintf("%s/business/%s.jpg", base, compactName),
	} {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}
	return candidates
}

// placeholderFor matches listing specialties against the configured
// placeholder keywords. Keywords are checked in sorted order so the
// match is deterministic when several apply.
func (r *Resolver) placeholderFor(listing directory.ListingRecord) string {
	keywords := make([]string, 0, len(r.cfg.Placeholders))
	for keyword := range r.cfg.Placeholders {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, specialty := range listing.Expertise.Specialties {
		lower := strings.ToLower(specialty)
		for _, keyword := range keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return r.cfg.Placeholders[keyword]
			}
		}
	}
	return ""
}
