package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMaintenanceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run scheduled maintenance jobs by hand",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "run <job>",
		Short:     "Run one job now (session_cleanup, insight_cache_purge, audit_purge)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"session_cleanup", "insight_cache_purge", "audit_purge"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, log, err := opts.connect(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := svc.Maintenance.RunNow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			log.WithField("job", args[0]).WithField("affected", n).Debug("Maintenance job finished")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d affected\n", args[0], n)
			return nil
		},
	})

	return cmd
}
