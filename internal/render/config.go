// Package render turns canonical directory records into complete HTML
// documents. Rendering is a pure function of the records plus the site
// configuration: any randomness (image choice) is resolved upstream and
// injected as a value before these functions run.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// SiteConfig is the single source of truth for site-wide values used in
// every rendered document, most importantly the canonical origin.
type SiteConfig struct {
	BaseURL     string
	Name        string
	Description string
	Assets      Manifest
}

// LoadSiteConfig constructs a SiteConfig by reading from Viper.
func LoadSiteConfig(v *viper.Viper) (SiteConfig, error) {
	cfg := SiteConfig{
		BaseURL:     v.GetString("site.base_url"),
		Name:        v.GetString("site.name"),
		Description: v.GetString("site.description"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration is usable for canonical URLs.
func (c SiteConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url %q must be an absolute URL", c.BaseURL)
	}
	if c.Name == "" {
		return fmt.Errorf("site.name must be set")
	}
	return nil
}

// Origin returns the base URL without a trailing slash.
func (c SiteConfig) Origin() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// HomeURL is the canonical URL of the home page.
func (c SiteConfig) HomeURL() string {
	return c.Origin() + "/"
}

// PageURL computes the canonical URL for a directory-style route,
// normalized to a trailing slash: PageURL("location", "austin") yields
// "<origin>/location/austin/".
func (c SiteConfig) PageURL(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return c.HomeURL()
	}
	return c.Origin() + "/" + strings.Join(cleaned, "/") + "/"
}
