// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup so that configuration is loaded and available
// to all other packages.
func InitConfig() {
	// --- Set Search Paths ---
	viper.SetConfigName("config")
	viper.AddConfigPath(".")              // Current working directory
	viper.AddConfigPath("/etc/sitegen/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.sitegen") // User-specific configuration

	// --- Set Defaults ---
	// Sensible defaults for every pipeline knob. These apply when the
	// values are not provided in a config file or via environment variables.
	viper.SetDefault("log.development", false)

	viper.SetDefault("site.base_url", "https://art-appraisers.example.com")
	viper.SetDefault("site.name", "Art Appraisers Directory")
	viper.SetDefault("site.description", "Find certified art appraisers near you.")

	viper.SetDefault("build.data_dir", "data/cities")
	viper.SetDefault("build.output_dir", "public")
	viper.SetDefault("build.asset_manifest", "assets.json")

	viper.SetDefault("images.host_base_url", "https://images.art-appraisers.example.com")
	viper.SetDefault("images.default_url", "https://images.art-appraisers.example.com/defaults/appraiser.jpg")
	viper.SetDefault("images.generator_endpoint", "")
	viper.SetDefault("images.probe_timeout", "5s")
	viper.SetDefault("images.generate_timeout", "20s")
	viper.SetDefault("images.concurrency", 8)
	viper.SetDefault("images.cache_dir", "data/image-cache")
	viper.SetDefault("images.cache_ttl", "24h")
	viper.SetDefault("images.placeholders", map[string]string{
		"painting": "https://images.art-appraisers.example.com/placeholders/painting.jpg",
		"antique":  "https://images.art-appraisers.example.com/placeholders/antique.jpg",
		"jewelry":  "https://images.art-appraisers.example.com/placeholders/jewelry.jpg",
	})

	viper.SetDefault("publish.release_root", "releases")
	viper.SetDefault("publish.keep_releases", 5)
	viper.SetDefault("publish.restart_container", false)
	viper.SetDefault("publish.container", "")
	viper.SetDefault("publish.legacy_hosts", []string{"scripts.legacy-analytics.example.net"})

	viper.SetDefault("serve.addr", ":8080")

	// --- Environment Variables ---
	viper.SetEnvPrefix("SITEGEN") // e.g., SITEGEN_SITE_BASE_URL=https://...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; not fatal since defaults and
			// environment variables can carry a full run.
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
