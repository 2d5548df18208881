package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/api"
	"github.com/JakeFAU/menu-catalog/internal/catalog"
	"github.com/JakeFAU/menu-catalog/internal/query"
)

func newServeCmd() *cobra.Command {
	var port int
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the product catalog over HTTP",
		Long: `Loads the catalog file once at startup and serves it read-only.
A missing or malformed file yields an empty catalog rather than an error.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := app.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			if catalogPath != "" {
				cfg.Catalog.Path = catalogPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return serve(ctx, ln, app, cfg.Catalog.Path, cfg.RequestTimeout(), cfg.ShutdownTimeout())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (overrides catalog.path)")
	return cmd
}

// serve runs the API on ln until ctx is canceled, then drains in-flight
// requests for at most shutdownTimeout.
func serve(ctx context.Context, ln net.Listener, app *App, catalogPath string, requestTimeout, shutdownTimeout time.Duration) error {
	logger := app.Logger

	products := catalog.Load(catalogPath, logger.Named("catalog"))
	apiServer := api.NewServer(query.NewService(products), api.Config{RequestTimeout: requestTimeout}, logger)

	srv := &http.Server{
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	apiServer.MarkReady()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http server error", zap.Error(err))
			return fmt.Errorf("serve http: %w", err)
		}
	}
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
