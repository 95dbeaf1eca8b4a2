package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/logging"
)

var previewPort int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the generated site for local preview",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewPort, "port", 8000, "Port to bind")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, true)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", previewPort),
		Handler:           http.FileServer(http.Dir(cfg.SiteRoot)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logging.Info().
		Str("site_root", cfg.SiteRoot).
		Str("url", fmt.Sprintf("http://localhost:%d", previewPort)).
		Msg("serving site preview")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info().Msg("preview stopped")
	return nil
}
