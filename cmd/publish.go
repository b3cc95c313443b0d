package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/clock/system"
	"github.com/artappraisal/sitegen/internal/logging"
	"github.com/artappraisal/sitegen/internal/publish"
)

// newPublishCmd creates and configures the 'publish' subcommand, which
// copies a built tree into a timestamped release and cuts traffic over
// with an atomic symlink swap.
func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publishes a built site atomically behind the current symlink",
		Long: `Copies the built output directory into releases/<timestamp>/ under the
release root, verifies the copy (required files present, no references to
retired hosts), then atomically repoints the current symlink. Old releases
beyond the retention count are pruned; the live release is never pruned.`,

		RunE: runPublishCommand,
	}
	cmd.Flags().String("public-dir", "", "built site directory to publish (overrides config)")
	cmd.Flags().String("release-root", "", "directory holding releases/ and the current symlink (overrides config)")
	cmd.Flags().String("base-url", "", "site base URL recorded for this publish (overrides config)")
	cmd.Flags().Bool("dry-run", false, "report what would be published without changing anything")
	cmd.Flags().Bool("restart-container", false, "restart the serving container after cut-over")
	cmd.Flags().Bool("no-restart", false, "skip the container restart even if configured")
	cmd.Flags().String("container", "", "container name to restart (overrides config)")
	return cmd
}

func runPublishCommand(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	logger := logging.L

	if baseURL := stringFlagOr(cmd, "base-url", ""); baseURL != "" {
		v.Set("site.base_url", baseURL)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noRestart, _ := cmd.Flags().GetBool("no-restart")
	restartFlag, _ := cmd.Flags().GetBool("restart-container")

	cfg := publish.Config{
		SourceDir:        stringFlagOr(cmd, "public-dir", v.GetString("build.output_dir")),
		ReleaseRoot:      stringFlagOr(cmd, "release-root", v.GetString("publish.release_root")),
		KeepReleases:     v.GetInt("publish.keep_releases"),
		DryRun:           dryRun,
		RestartContainer: (restartFlag || v.GetBool("publish.restart_container")) && !noRestart,
		Container:        stringFlagOr(cmd, "container", v.GetString("publish.container")),
		LegacyHosts:      v.GetStringSlice("publish.legacy_hosts"),
	}

	publisher, err := publish.New(cfg, system.Clock{}, logger)
	if err != nil {
		return fmt.Errorf("publish config: %w", err)
	}

	res, err := publisher.Run(cmd.Context())
	if err != nil {
		logger.Error("Publish failed; current release unchanged",
			zap.String("state", string(res.State)), zap.Error(err))
		return err
	}

	if cfg.DryRun {
		fmt.Fprintf(os.Stdout, "dry run: would publish %s as %s\n", cfg.SourceDir, res.ReleaseDir)
		return nil
	}
	fmt.Fprintf(os.Stdout, "published %s (state %s", res.ReleaseDir, res.State)
	if len(res.Pruned) > 0 {
		fmt.Fprintf(os.Stdout, ", pruned %d old releases", len(res.Pruned))
	}
	fmt.Fprintln(os.Stdout, ")")
	logging.L.Info("Publish command finished.")
	return nil
}
