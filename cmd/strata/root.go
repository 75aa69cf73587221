package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/config"
	"github.com/spf13/cobra"
)

// cfg is resolved once per invocation, before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "strata moves database schemas between revisions",
	Long: `strata applies and reverts schema revisions kept as Markdown, YAML or JSON
documents, one committed step at a time, under an exclusive migration lock.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &loaded); err != nil {
			return err
		}
		cfg = loaded
		return cfg.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	f.String("driver", "", "Store driver: sqlite, postgres, file or memory")
	f.String("dsn", "", "Store location (file path, SQLite DSN or PostgreSQL URL)")
	f.String("revisions", "", "Directory containing the revision documents")
	f.Duration("lock-timeout", 0, "How long to wait for a held migration lock")
	f.Bool("block", false, "Wait for a held migration lock until interrupted")
	f.String("default-head", "", "Revision whose branch \"head\" follows when the graph has several heads")
	f.String("redis", "", "Redis address or URL for the migration lock")
	f.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	f.Bool("debug", false, "Log engine activity to stderr")
}

// applyFlags overlays the flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	var err error
	str := func(name string, dst *string) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetBool(name)
		}
	}

	str("driver", &c.Driver)
	str("dsn", &c.DSN)
	str("revisions", &c.Revisions)
	str("default-head", &c.DefaultHead)
	str("redis", &c.Redis)
	str("metrics-file", &c.MetricsFile)
	boolean("block", &c.Block)
	boolean("debug", &c.Debug)
	if err == nil && f.Changed("lock-timeout") {
		c.LockTimeout, err = f.GetDuration("lock-timeout")
	}
	return err
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(fn func(ctx context.Context, s *cli.Session) error) error {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	s, err := cli.OpenSession(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	runErr := fn(ctx, s)
	if closeErr := s.Close(); closeErr != nil && runErr == nil {
		return closeErr
	}
	return runErr
}
