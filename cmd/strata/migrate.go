package main

import (
	"context"

	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up [target]",
	Short: "Upgrade the store (default: head)",
	Long: `Applies revisions forward until the store reaches target.
Target may be a revision id, a unique prefix, "head", "heads" or "+N".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.Up(ctx, argOrEmpty(args))
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [target]",
	Short: "Downgrade the store (default: one revision)",
	Long: `Reverts revisions until the store reaches target.
Target may be a revision id, a unique prefix, "base" or "-N".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.Down(ctx, argOrEmpty(args))
		})
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <target>",
	Short: "Show the steps a migration to target would run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.Plan(ctx, args[0])
		})
	},
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, planCmd)
}
