package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cdc_zoning/internal/remote"
	"cdc_zoning/internal/zoning"
)

func newSyncCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Apply the registered node inventory to aliases and zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var result zoning.SyncResult
			if file != "" {
				nodes, err := remote.FileRegistry{Path: file}.Nodes(cmd.Context())
				if err != nil {
					return err
				}
				result, err = a.coord.SyncNodes(cmd.Context(), nodes)
				if err != nil {
					return err
				}
			} else if result, err = a.coord.SyncFromRegistry(cmd.Context()); err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"aliases_created": len(result.AliasesCreated),
				"aliases_updated": len(result.AliasesUpdated),
				"zones_created":   len(result.ZonesCreated),
				"linked":          len(result.Linked),
				"moved":           len(result.Moved),
				"forced_inactive": len(result.ForcedInactive),
			}).Info("✓ Nodes synchronised")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the inventory from this file instead of the configured registry")
	return cmd
}
