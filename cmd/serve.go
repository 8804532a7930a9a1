package main

import (
	"context"
	"errors"
	"fmt"
	"mapslinks/internal/api"
	"mapslinks/internal/api/handler/webhandler"
	"mapslinks/internal/config"
	"mapslinks/pkg/browser/pwbrowser"
	"mapslinks/pkg/logger"
	"mapslinks/pkg/metrics"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) (func(ctx context.Context), error) {
	mp, err := metrics.NewMeterProvider(nil)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	runner, err := newRunner(cfg, mp.Meter("mapslinks"))
	if err != nil {
		return nil, err
	}

	server := api.NewServer(api.Deps{Deps: webhandler.Deps{Runner: runner}}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not stop meter provider", zap.Error(err))
		}
	}, nil
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Browser.InstallOnStart && cfg.Browser.Driver == config.DriverPlaywright {
				logger.Info(ctx, "installing playwright browser...")
				if err := pwbrowser.Install(ctx); err != nil {
					return err //nolint: wrapcheck
				}
			}

			stopWebserver, err := setupServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("could not create webserver: %w", err)
			}

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			return nil
		},
	}

	return cmd
}
