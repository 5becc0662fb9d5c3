package main

import (
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run backups on backup.schedule until interrupted",
	Long: `Run backups on the cron schedule from backup.schedule. Five-field,
six-field (with seconds) and descriptor schedules such as @daily are
accepted. A run that is still in progress when the next one is due makes
that tick a no-op. Stop with Ctrl+C or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		application, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		return application.RunScheduled(ctx)
	},
}
