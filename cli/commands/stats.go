package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show event store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			pos, err := adapter.GetLastPosition(ctx)
			if err != nil {
				return err
			}

			resources, err := adapter.ListResources(ctx, 0)
			if err != nil {
				return err
			}

			var eventCount int64
			var maxVersion int64
			for _, r := range resources {
				eventCount += r.EventCount
				if r.Version > maxVersion {
					maxVersion = r.Version
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resources:            %d\n", len(resources))
			fmt.Fprintf(out, "Events:               %d\n", eventCount)
			fmt.Fprintf(out, "Last global position: %d\n", pos)
			fmt.Fprintf(out, "Longest stream:       %d events\n", maxVersion)

			return nil
		},
	}
}
