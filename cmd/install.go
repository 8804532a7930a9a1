package main

import (
	"mapslinks/pkg/browser/pwbrowser"

	"github.com/spf13/cobra"
)

func installBrowserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install-browser",
		Short: "Installs the Playwright driver and Chromium used by the playwright browser driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return pwbrowser.Install(cmd.Context()) //nolint: wrapcheck
		},
	}
}
