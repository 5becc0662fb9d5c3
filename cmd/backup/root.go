package main

import (
	"context"
	"fmt"

	"github.com/semmidev/odoodrive/internal/app"
	"github.com/semmidev/odoodrive/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "odoodrive",
	Short: "Back up an Odoo database to remote storage",
	Long: `odoodrive downloads a backup archive from an Odoo server, uploads it to
Google Drive (and optionally S3 or a local directory) and keeps only the
newest archives on every target.`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx. Errors are printed by cobra.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "path to config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pruneCmd)
}

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize app: %w", err)
	}
	return application, nil
}
