package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command.
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect committed events",
		Long: `Inspect committed events across all resources, in global order.

Examples:
  eventcore events list                    # Show the most recent events
  eventcore events list --from 100         # Events after global position 100
  eventcore events list --resource <id>    # One resource's events`,
	}

	cmd.AddCommand(newEventsListCommand())

	return cmd
}

func newEventsListCommand() *cobra.Command {
	var (
		from       uint64
		limit      int
		resourceID string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List committed events in global order",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := adapter.LoadAll(ctx, from, limit)
			if err != nil {
				return err
			}

			if resourceID != "" {
				filtered := events[:0]
				for _, e := range events {
					if e.ResourceID == resourceID {
						filtered = append(filtered, e)
					}
				}
				events = filtered
			}

			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POSITION\tRESOURCE\tVERSION\tTYPE\tCOMMITTED")
			for _, e := range events {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					e.GlobalPosition, e.ResourceID, e.Version, e.Type,
					e.Timestamp.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Uint64Var(&from, "from", 0, "Only events after this global position")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events to list")
	cmd.Flags().StringVar(&resourceID, "resource", "", "Only events for this resource")

	return cmd
}
