package main

import (
	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the revisions for consistency",
	Long:  `Loads every revision document and reports dangling parents, duplicate ids, cycles and invalid operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
