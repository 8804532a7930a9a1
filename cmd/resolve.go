package main

import (
	"fmt"
	"io"
	"mapslinks/internal/batch"
	"mapslinks/internal/config"
	"mapslinks/internal/export"
	"mapslinks/pkg/domain"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

// writeResults prints results in the requested format.
func writeResults(w io.Writer, format string, results []domain.ResolvedLocation) error {
	switch format {
	case formatCSV:
		return export.WriteCSV(w, results) //nolint: wrapcheck
	case formatJSON:
		if _, err := fmt.Fprintf(w, "%s\n", domain.EncodeLocations(results)); err != nil {
			return fmt.Errorf("could not write results: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("unknown format %q, want %s or %s", format, formatCSV, formatJSON)
	}
}

func resolveCommand(cfg *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve [links...]",
		Short: "Resolves links given as arguments or on stdin (one per line)",
		RunE: func(cmd *cobra.Command, args []string) error {
			links := batch.NormalizeLinks(args)
			if len(args) == 0 {
				in, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("could not read links: %w", err)
				}
				links = batch.ParseLinks(string(in))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := newRunner(cfg, nil)
			if err != nil {
				return err
			}

			results, err := runner.Run(ctx, links)
			if err != nil {
				return err //nolint: wrapcheck
			}

			return writeResults(cmd.OutOrStdout(), format, results)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatCSV, "Output format: csv or json")

	return cmd
}
