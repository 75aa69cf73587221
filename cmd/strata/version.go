package main

import (
	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of strata",
	// version needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		cli.Banner(cmd.OutOrStdout(), strata.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
