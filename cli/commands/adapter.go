package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PREreview/eventcore/adapters"
	"github.com/PREreview/eventcore/adapters/memory"
	"github.com/PREreview/eventcore/adapters/postgres"
	"github.com/PREreview/eventcore/cli/config"
)

// CLIAdapter combines the adapter interfaces needed by CLI commands.
type CLIAdapter interface {
	adapters.EventStoreAdapter
	adapters.HealthChecker
	adapters.ResourceLister
}

// AdapterFactory creates the appropriate adapter based on configuration.
type AdapterFactory struct {
	config *config.Config
	dbURL  string
}

// NewAdapterFactory creates a new adapter factory.
func NewAdapterFactory(cfg *config.Config) (*AdapterFactory, error) {
	dbURL := os.ExpandEnv(cfg.Database.URL)
	if cfg.Database.Driver != "memory" && (dbURL == "" || dbURL == "${DATABASE_URL}") {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	return &AdapterFactory{
		config: cfg,
		dbURL:  dbURL,
	}, nil
}

// CreateAdapter creates the adapter for the configured driver. For
// PostgreSQL the connection is validated with a short timeout so invalid
// URLs fail fast.
func (f *AdapterFactory) CreateAdapter(ctx context.Context) (CLIAdapter, error) {
	switch f.config.Database.Driver {
	case "postgres", "postgresql":
		var opts []postgres.Option
		if f.config.Database.Schema != "" {
			opts = append(opts, postgres.WithSchema(f.config.Database.Schema))
		}

		adapter, err := postgres.NewAdapter(f.dbURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres adapter: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := adapter.Ping(pingCtx); err != nil {
			_ = adapter.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		return adapter, nil

	case "memory":
		return memory.NewAdapter(), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.config.Database.Driver)
	}
}

// IsMemoryDriver returns true if using the memory driver.
func (f *AdapterFactory) IsMemoryDriver() bool {
	return f.config.Database.Driver == "memory"
}

// loadConfig loads config from the current working directory upward.
func loadConfig() (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	_, cfg, err := config.FindConfig(cwd)
	if err != nil {
		return nil, cwd, err
	}

	return cfg, cwd, nil
}

// getAdapter loads config and creates an adapter with a cleanup function.
func getAdapter(ctx context.Context) (CLIAdapter, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("no %s found: %w", config.ConfigFileName, err)
	}

	factory, err := NewAdapterFactory(cfg)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := factory.CreateAdapter(ctx)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = adapter.Close()
	}

	return adapter, cleanup, nil
}
