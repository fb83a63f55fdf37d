package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PREreview/eventcore/cli/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var (
		name   string
		driver string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an eventcore configuration file",
		Long: `Create an eventcore.yaml configuration file.

Examples:
  eventcore init                    # Initialize in current directory
  eventcore init my-project         # Initialize in a new directory
  eventcore init --driver=memory    # Use the in-memory driver`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			if config.Exists(absDir) && !force {
				return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.ConfigFileName, absDir)
			}

			if err := os.MkdirAll(absDir, 0755); err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			if name == "" {
				name = filepath.Base(absDir)
			}
			cfg.Project.Name = name
			if driver != "" {
				cfg.Database.Driver = driver
			}

			if errs := cfg.Validate(); len(errs) > 0 && cfg.Database.Driver != "postgres" {
				return fmt.Errorf("invalid configuration: %v", errs)
			}

			path := filepath.Join(absDir, config.ConfigFileName)
			if err := os.WriteFile(path, []byte(config.GenerateYAML(cfg)), 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			if cfg.Database.Driver == "postgres" {
				fmt.Fprintln(cmd.OutOrStdout(), "Set DATABASE_URL, then run 'eventcore migrate up' to create the schema.")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to directory name)")
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver: postgres or memory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}
