// Package postgres provides a PostgreSQL implementation of the event store
// adapter, backed by pgx.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/PREreview/eventcore/adapters"
)

// Sentinel errors re-exported from the adapters package for errors.Is
// compatibility.
var (
	ErrAdapterClosed      = adapters.ErrAdapterClosed
	ErrEmptyResourceID    = adapters.ErrEmptyResourceID
	ErrNoEvents           = adapters.ErrNoEvents
	ErrResourceHasChanged = adapters.ErrResourceHasChanged
	ErrInvalidVersion     = adapters.ErrInvalidVersion
)

// uniqueViolation is the PostgreSQL error code raised when the
// (resource_id, version) uniqueness constraint trips: a concurrent writer
// landed first even though our in-transaction version check passed.
const uniqueViolation = "23505"

// Ensure PostgresAdapter implements the required interfaces.
var (
	_ adapters.EventStoreAdapter = (*PostgresAdapter)(nil)
	_ adapters.HealthChecker     = (*PostgresAdapter)(nil)
	_ adapters.ResourceLister    = (*PostgresAdapter)(nil)
)

// PostgresAdapter is a PostgreSQL implementation of EventStoreAdapter.
type PostgresAdapter struct {
	db     *sql.DB
	schema string
	closed bool
}

// Option configures a PostgresAdapter.
type Option func(*PostgresAdapter)

// WithSchema sets the database schema name. Defaults to "prereview".
func WithSchema(schema string) Option {
	return func(a *PostgresAdapter) {
		a.schema = schema
	}
}

// WithMaxConnections sets the maximum number of open connections.
func WithMaxConnections(n int) Option {
	return func(a *PostgresAdapter) {
		a.db.SetMaxOpenConns(n)
	}
}

// WithConnectionMaxLifetime sets the maximum connection lifetime.
func WithConnectionMaxLifetime(d time.Duration) Option {
	return func(a *PostgresAdapter) {
		a.db.SetConnMaxLifetime(d)
	}
}

// NewAdapter creates a new PostgreSQL event store adapter.
func NewAdapter(connStr string, opts ...Option) (*PostgresAdapter, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to open database: %w", err)
	}

	return NewAdapterWithDB(db, opts...), nil
}

// NewAdapterWithDB creates a new adapter with an existing database handle.
func NewAdapterWithDB(db *sql.DB, opts ...Option) *PostgresAdapter {
	adapter := &PostgresAdapter{
		db:     db,
		schema: "prereview",
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// Initialize creates the required schema and tables.
func (a *PostgresAdapter) Initialize(ctx context.Context) error {
	if a.closed {
		return ErrAdapterClosed
	}

	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, a.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.resources (
				resource_id  UUID PRIMARY KEY,
				version      BIGINT NOT NULL DEFAULT 0,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, a.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.events (
				global_position  BIGSERIAL PRIMARY KEY,
				resource_id      UUID NOT NULL,
				version          BIGINT NOT NULL,
				event_id         UUID NOT NULL DEFAULT gen_random_uuid(),
				event_type       VARCHAR(500) NOT NULL,
				data             JSONB NOT NULL,
				metadata         JSONB,
				committed_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (resource_id, version)
			)`, a.schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_events_resource ON %s.events (resource_id, version)`, a.schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_events_type ON %s.events (event_type)`, a.schema),
	}

	for _, statement := range statements {
		if _, err := a.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("eventcore/postgres: failed to initialize schema: %w", err)
		}
	}

	return nil
}

// Append atomically commits events to the resource's stream. The version
// check runs inside a transaction holding a row lock on the resource; the
// (resource_id, version) uniqueness constraint backstops the check, so a
// conflict surfaces as ErrResourceHasChanged either way.
func (a *PostgresAdapter) Append(ctx context.Context, resourceID string, events []adapters.EventRecord, expectedVersion int64) ([]adapters.StoredEvent, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}

	if resourceID == "" {
		return nil, ErrEmptyResourceID
	}

	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var currentVersion int64
	var resourceExists bool

	err = tx.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT version FROM %s.resources
		WHERE resource_id = $1
		FOR UPDATE`, a.schema), resourceID).Scan(&currentVersion)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		currentVersion = 0
	case err != nil:
		return nil, fmt.Errorf("eventcore/postgres: failed to read resource version: %w", err)
	default:
		resourceExists = true
	}

	if err := adapters.CheckVersion(resourceID, expectedVersion, currentVersion); err != nil {
		return nil, err
	}

	if !resourceExists {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.resources (resource_id, version)
			VALUES ($1, 0)`, a.schema), resourceID)
		if err != nil {
			return nil, a.translateError(ctx, resourceID, expectedVersion,
				fmt.Errorf("eventcore/postgres: failed to create resource: %w", err))
		}
	}

	storedEvents := make([]adapters.StoredEvent, len(events))
	for i, event := range events {
		currentVersion++

		metadataJSON, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("eventcore/postgres: failed to marshal metadata: %w", err)
		}

		var globalPosition uint64
		var eventID string
		var committedAt time.Time

		err = tx.QueryRowContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.events (resource_id, version, event_type, data, metadata)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING global_position, event_id, committed_at`, a.schema),
			resourceID, currentVersion, event.Type, event.Data, metadataJSON,
		).Scan(&globalPosition, &eventID, &committedAt)

		if err != nil {
			return nil, a.translateError(ctx, resourceID, expectedVersion,
				fmt.Errorf("eventcore/postgres: failed to insert event: %w", err))
		}

		storedEvents[i] = adapters.StoredEvent{
			ID:             eventID,
			ResourceID:     resourceID,
			Type:           event.Type,
			Data:           event.Data,
			Metadata:       event.Metadata,
			Version:        currentVersion,
			GlobalPosition: globalPosition,
			Timestamp:      committedAt,
		}
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s.resources
		SET version = $1, updated_at = NOW()
		WHERE resource_id = $2`, a.schema), currentVersion, resourceID)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to update resource version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, a.translateError(ctx, resourceID, expectedVersion,
			fmt.Errorf("eventcore/postgres: failed to commit transaction: %w", err))
	}

	return storedEvents, nil
}

// translateError maps a unique-constraint violation onto the concurrency
// conflict so callers see one error regardless of which check tripped. A
// violation means another writer got there first, so the version this
// transaction saw is stale; the actual version is re-read outside the
// aborted transaction. If that read fails the actual version is reported
// as the expected one, meaning unknown.
func (a *PostgresAdapter) translateError(ctx context.Context, resourceID string, expected int64, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	actual := expected
	_ = a.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(MAX(version), 0) FROM %s.events
		WHERE resource_id = $1`, a.schema), resourceID).Scan(&actual)

	return adapters.NewResourceHasChangedError(resourceID, expected, actual)
}

// Load retrieves events for a resource with Version > fromVersion, in
// version order.
func (a *PostgresAdapter) Load(ctx context.Context, resourceID string, fromVersion int64) ([]adapters.StoredEvent, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}

	if resourceID == "" {
		return nil, ErrEmptyResourceID
	}

	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT global_position, event_id, resource_id, version, event_type, data, metadata, committed_at
		FROM %s.events
		WHERE resource_id = $1 AND version > $2
		ORDER BY version`, a.schema), resourceID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to load events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LoadAll retrieves events across all resources in global insertion order.
func (a *PostgresAdapter) LoadAll(ctx context.Context, fromPosition uint64, limit int) ([]adapters.StoredEvent, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}

	limit = adapters.DefaultLimit(limit, 1000)

	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT global_position, event_id, resource_id, version, event_type, data, metadata, committed_at
		FROM %s.events
		WHERE global_position > $1
		ORDER BY global_position
		LIMIT $2`, a.schema), fromPosition, limit)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to load events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]adapters.StoredEvent, error) {
	events := make([]adapters.StoredEvent, 0)
	for rows.Next() {
		var event adapters.StoredEvent
		var metadataJSON []byte

		err := rows.Scan(
			&event.GlobalPosition,
			&event.ID,
			&event.ResourceID,
			&event.Version,
			&event.Type,
			&event.Data,
			&metadataJSON,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("eventcore/postgres: failed to scan event: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, fmt.Errorf("eventcore/postgres: failed to unmarshal metadata: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventcore/postgres: error iterating events: %w", err)
	}

	return events, nil
}

// GetResourceInfo returns metadata about a resource's stream, or nil for a
// resource with no committed events.
func (a *PostgresAdapter) GetResourceInfo(ctx context.Context, resourceID string) (*adapters.ResourceInfo, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}

	var info adapters.ResourceInfo
	err := a.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT r.resource_id, r.version, COUNT(e.version), r.created_at, r.updated_at
		FROM %s.resources r
		LEFT JOIN %s.events e ON e.resource_id = r.resource_id
		WHERE r.resource_id = $1
		GROUP BY r.resource_id, r.version, r.created_at, r.updated_at`, a.schema, a.schema),
		resourceID).Scan(
		&info.ResourceID,
		&info.Version,
		&info.EventCount,
		&info.CreatedAt,
		&info.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to get resource info: %w", err)
	}

	return &info, nil
}

// GetLastPosition returns the global position of the last committed event.
func (a *PostgresAdapter) GetLastPosition(ctx context.Context) (uint64, error) {
	if a.closed {
		return 0, ErrAdapterClosed
	}

	var pos sql.NullInt64
	err := a.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT MAX(global_position) FROM %s.events`, a.schema)).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("eventcore/postgres: failed to get last position: %w", err)
	}

	if pos.Valid {
		return uint64(pos.Int64), nil
	}
	return 0, nil
}

// ListResources returns summaries for up to limit resources, ordered by
// resource ID.
func (a *PostgresAdapter) ListResources(ctx context.Context, limit int) ([]adapters.ResourceInfo, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}

	limit = adapters.DefaultLimit(limit, 100)

	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT r.resource_id, r.version, COUNT(e.version), r.created_at, r.updated_at
		FROM %s.resources r
		LEFT JOIN %s.events e ON e.resource_id = r.resource_id
		GROUP BY r.resource_id, r.version, r.created_at, r.updated_at
		ORDER BY r.resource_id
		LIMIT $1`, a.schema, a.schema), limit)
	if err != nil {
		return nil, fmt.Errorf("eventcore/postgres: failed to list resources: %w", err)
	}
	defer rows.Close()

	infos := make([]adapters.ResourceInfo, 0)
	for rows.Next() {
		var info adapters.ResourceInfo
		err := rows.Scan(&info.ResourceID, &info.Version, &info.EventCount, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("eventcore/postgres: failed to scan resource: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventcore/postgres: error iterating resources: %w", err)
	}

	return infos, nil
}

// Ping checks database connectivity.
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	if a.closed {
		return ErrAdapterClosed
	}
	return a.db.PingContext(ctx)
}

// Close releases the database connection.
func (a *PostgresAdapter) Close() error {
	a.closed = true
	return a.db.Close()
}
