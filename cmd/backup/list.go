package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the archives held by every target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		application, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		var failed bool
		for _, listing := range application.List(ctx) {
			fmt.Printf("%s (keeping %d)\n", listing.Name, listing.MaxBackups)
			if listing.Err != nil {
				fmt.Printf("  error: %v\n\n", listing.Err)
				failed = true
				continue
			}
			if len(listing.Files) == 0 {
				fmt.Println("  no backups found")
				fmt.Println()
				continue
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  NAME\tCREATED\tSIZE")
			for _, f := range listing.Files {
				fmt.Fprintf(w, "  %s\t%s\t%s\n",
					f.Name,
					humanize.Time(f.CreatedTime),
					humanize.Bytes(uint64(f.Size)),
				)
			}
			w.Flush()
			fmt.Println()
		}

		if failed {
			return fmt.Errorf("failed to list one or more targets")
		}
		return nil
	},
}
