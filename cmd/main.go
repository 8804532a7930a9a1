// Package main provides the CLI entrypoint for the maps link extractor.
// It wires subcommands (serve, resolve, install-browser), loads configuration
// and initializes logging.
package main

import (
	"context"
	"fmt"
	"log"
	"mapslinks/internal/batch"
	"mapslinks/internal/config"
	"mapslinks/internal/resolver"
	"mapslinks/pkg/browser"
	"mapslinks/pkg/browser/chromedpbrowser"
	"mapslinks/pkg/browser/pwbrowser"
	"mapslinks/pkg/logger"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// newLauncher returns the browser launcher selected by cfg.Browser.Driver.
func newLauncher(cfg *config.Config) browser.Launcher {
	if cfg.Browser.Driver == config.DriverPlaywright {
		return pwbrowser.New(pwbrowser.Options{
			Headless:  cfg.Browser.Headless,
			ExecPath:  cfg.Browser.ExecPath,
			UserAgent: cfg.Browser.UserAgent,
		})
	}

	return chromedpbrowser.New(chromedpbrowser.Options{
		Headless:  cfg.Browser.Headless,
		ExecPath:  cfg.Browser.ExecPath,
		UserAgent: cfg.Browser.UserAgent,
		NoSandbox: cfg.Browser.NoSandbox,
	})
}

// newRunner wires the launcher and resolver into a batch runner. A nil meter
// uses the global otel meter provider.
func newRunner(cfg *config.Config, meter metric.Meter) (batch.Runner, error) {
	runner, err := batch.New(newLauncher(cfg),
		resolver.New(resolver.NewOptions(cfg)),
		batch.Options{Meter: meter})
	if err != nil {
		return nil, fmt.Errorf("could not create batch runner: %w", err)
	}

	return runner, nil
}

// main sets up the root Cobra command. Configuration and logging are loaded
// once the flags are parsed, before any subcommand runs.
func main() {
	var configPath string
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:          "mapslinks",
		Short:        "Resolves Google Maps short links and extracts their coordinates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// deployment targets inject PORT and friends through .env files
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("could not load .env file: %w", err)
			}

			log.Println("loading config ...")
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			*cfg = *loaded

			logger.Setup(cfg.Environment, cfg.LogLevel)

			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Config File Path")

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		resolveCommand(cfg),
		installBrowserCommand(),
	)

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
