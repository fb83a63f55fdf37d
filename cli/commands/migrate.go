package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the event store schema",
		Long: `Manage the event store database schema.

Examples:
  eventcore migrate up       # Create the schema and tables
  eventcore migrate status   # Check connectivity and schema state`,
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateStatusCommand())

	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create the event store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := adapter.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity and schema state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := adapter.Ping(ctx); err != nil {
				return fmt.Errorf("store is unreachable: %w", err)
			}

			pos, err := adapter.GetLastPosition(ctx)
			if err != nil {
				return fmt.Errorf("failed to read last position: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Store reachable. Last global position: %d\n", pos)
			return nil
		},
	}
}
