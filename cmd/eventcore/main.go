// eventcore is the command-line interface for the eventcore library.
//
// Usage:
//
//	eventcore <command> [flags]
//
// Commands:
//
//	init        Create an eventcore.yaml configuration file
//	migrate     Manage the event store schema
//	resources   Inspect resources in the event store
//	events      Inspect committed events
//	stats       Show event store statistics
//	version     Show version information
//
// Examples:
//
//	# Create a configuration file
//	eventcore init my-project
//
//	# Create the database schema
//	eventcore migrate up
//
//	# Inspect a resource's event stream
//	eventcore resources show 4f0c71f2-9c91-4c4e-9f51-8a40a99d6dbe
package main

import (
	"os"

	"github.com/PREreview/eventcore/cli/commands"

	// Register PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build information (set via ldflags).
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.BuildDate = buildDate

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
