package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/logging"
)

// newServeCmd creates and configures the 'serve' subcommand, a small
// preview server for the published (or freshly built) tree.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the current release for local preview",
		Long: `Serves the current symlink under the release root (falling back to the
build output directory when no release exists) with health and metrics
endpoints. Meant for local preview and smoke tests, not production traffic.`,

		RunE: runServeCommand,
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("dir", "", "directory to serve (overrides release root/current)")
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	logger := logging.L

	addr := stringFlagOr(cmd, "addr", v.GetString("serve.addr"))
	dir := stringFlagOr(cmd, "dir", "")
	if dir == "" {
		dir = resolveServeDir(v)
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("serve dir %s: %w", dir, err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/*", http.FileServer(http.Dir(dir)))

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview server listening",
			zap.String("addr", addr), zap.String("dir", dir))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// resolveServeDir prefers the live release and falls back to the build
// output so serve works before the first publish.
func resolveServeDir(v *viper.Viper) string {
	current := filepath.Join(v.GetString("publish.release_root"), "current")
	if _, err := os.Stat(current); err == nil {
		return current
	}
	return v.GetString("build.output_dir")
}
