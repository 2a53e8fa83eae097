package main

import (
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Drop zone references to missing aliases and refresh alias snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.coord.PruneOrphans(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range report.Orphans {
				a.log.WithField("zone", o.ZoneName).WithField("alias_id", o.AliasID).Info("Dropped orphan reference")
			}
			a.log.Infof("✓ Reconciled: %d orphans dropped, %d snapshots refreshed", len(report.Orphans), report.Refreshed)
			return nil
		},
	}
}
