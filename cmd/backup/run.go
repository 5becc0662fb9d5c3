package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup, upload and prune cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		application, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		_, err = application.RunOnce(ctx)
		return err
	},
}
