package main

import (
	"context"

	"github.com/aretw0/strata/internal/cli"
	"github.com/spf13/cobra"
)

var graphOverlay bool

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the revision graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the revisions. With --overlay, marks what the store has applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !graphOverlay {
			return cli.Graph(cmd.Context(), cfg, cmd.OutOrStdout())
		}
		return withSession(func(ctx context.Context, s *cli.Session) error {
			return s.Graph(ctx, cmd.OutOrStdout())
		})
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphOverlay, "overlay", false, "Highlight applied and current revisions from the store")
	rootCmd.AddCommand(graphCmd)
}
