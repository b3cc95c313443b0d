package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/logging"
	"github.com/artappraisal/sitegen/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegen",
		Short: "Static site builder and publisher for the art appraiser directory.",
		Long: `sitegen builds the art appraiser directory from raw per-city data files:
it standardizes listings, resolves and caches listing images, renders the
full page tree with structured data, derives the sitemap, and publishes
releases atomically behind a current symlink.`,

		// Config is loaded by cobra.OnInitialize before this hook, so
		// the logger can honor the configured mode.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logging.Init(viper.GetBool("log.development"))
			return nil
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/sitegen, $HOME/.sitegen)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
