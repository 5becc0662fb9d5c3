package main

import (
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old archives beyond max_backups on every target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		application, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		return application.Prune(ctx)
	},
}
