package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewResourcesCommand creates the resources command.
func NewResourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Inspect resources in the event store",
		Long: `Inspect resources in the event store.

Examples:
  eventcore resources list              # List resources
  eventcore resources show <id>         # Show a resource's event stream`,
		Aliases: []string{"resource"},
	}

	cmd.AddCommand(newResourcesListCommand())
	cmd.AddCommand(newResourcesShowCommand())

	return cmd
}

func newResourcesListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List resources",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			resources, err := adapter.ListResources(ctx, limit)
			if err != nil {
				return err
			}

			if len(resources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No resources found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RESOURCE ID\tVERSION\tEVENTS\tUPDATED")
			for _, r := range resources {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
					r.ResourceID, r.Version, r.EventCount, r.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of resources to list (0 for all)")

	return cmd
}

func newResourcesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource-id>",
		Short: "Show a resource's event stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resourceID := args[0]

			adapter, cleanup, err := getAdapter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := adapter.GetResourceInfo(ctx, resourceID)
			if err != nil {
				return err
			}
			if info == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Resource %s has no events.\n", resourceID)
				return nil
			}

			events, err := adapter.Load(ctx, resourceID, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resource: %s\n", info.ResourceID)
			fmt.Fprintf(out, "Version:  %d\n", info.Version)
			fmt.Fprintf(out, "Created:  %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Updated:  %s\n\n", info.UpdatedAt.Format("2006-01-02 15:04:05"))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tTYPE\tCOMMITTED\tDATA")
			for _, e := range events {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					e.Version, e.Type, e.Timestamp.Format("2006-01-02 15:04:05"), string(e.Data))
			}
			return w.Flush()
		},
	}
}
