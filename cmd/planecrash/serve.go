package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/planecrash-geodata/internal/adapter/http"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve geolocations and flight paths over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	catalog := pipeline.NewCatalog(dataStore(), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, catalog, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// /readyz reports not ready until the catalog is loaded.
	if err := catalog.Load(); err != nil {
		logger.Error("catalog load failed", "error", err)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server error", "error", err)
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
