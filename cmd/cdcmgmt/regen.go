package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdc_zoning/internal/storage"
)

func newRegenCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "regen",
		Short: "Rewrite zone_config.json from the zoning documents and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			cfg, err := a.coord.Regenerate(cmd.Context())
			if err != nil {
				return err
			}
			var out []byte
			if asYAML {
				out, err = storage.EncodeYAML(cfg)
			} else {
				out, err = storage.Encode(cfg)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the config as YAML")
	return cmd
}
