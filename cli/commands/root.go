// Package commands provides the CLI command implementations for eventcore.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command for the eventcore CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventcore",
		Short: "Event store inspection and management",
		Long: `eventcore is an event-sourcing toolkit built around an append-only
event store with optimistic concurrency control.

This CLI inspects and manages an event store described by an
eventcore.yaml configuration file.

Quick start:

  eventcore init              Create a configuration file
  eventcore migrate up        Create the database schema
  eventcore resources list    List resources in the store
  eventcore events list       Show committed events
  eventcore stats             Show store statistics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewResourcesCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewStatsCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	return nil
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eventcore %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
