// cdcmgmt is the zoning console of an NVMe-oF centralized discovery controller.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "cdcmgmt",
		Short:         "Zoning console for an NVMe-oF centralized discovery controller",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to an INI configuration file (environment only when empty)")

	rootCmd.AddCommand(
		newServeCmd(),
		newRegenCmd(),
		newSyncCmd(),
		newReconcileCmd(),
		newHashPasswordCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
