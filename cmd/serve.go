package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/observability"
	"github.com/xkilldash9x/fleetimport/internal/service"
)

// newServeCmd creates the `serve` command: the long-running HTTP front door.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP server exposing the import workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			server := service.NewServer(components.runner, logger)
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening.", zap.String("addr", addr))
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			select {
			case <-ctx.Done():
				logger.Info("Shutdown signal received, draining.")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("server shutdown: %w", err)
				}
				return <-errCh
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			}
		},
	}
}
