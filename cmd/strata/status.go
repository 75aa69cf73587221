package main

import (
	"context"

	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the store's current revision and pending steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.Status(ctx)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List revisions, newest first, marking the applied ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.History(ctx)
		})
	},
}

var headsCmd = &cobra.Command{
	Use:   "heads",
	Short: "List the heads of the revision graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Heads(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, historyCmd, headsCmd)
}
