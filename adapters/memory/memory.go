// Package memory provides an in-memory implementation of the event store
// adapter. It is intended for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PREreview/eventcore/adapters"
)

// Version constants re-exported from the adapters package for convenience.
const (
	AnyVersion = adapters.AnyVersion
	NoHistory  = adapters.NoHistory
)

// Ensure MemoryAdapter implements the required interfaces.
var (
	_ adapters.EventStoreAdapter = (*MemoryAdapter)(nil)
	_ adapters.HealthChecker     = (*MemoryAdapter)(nil)
	_ adapters.ResourceLister    = (*MemoryAdapter)(nil)
)

// MemoryAdapter is an in-memory implementation of EventStoreAdapter.
// It is thread-safe; commits and reads are serialized under one mutex, so
// every Append is atomic exactly as the adapter contract requires.
type MemoryAdapter struct {
	mu             sync.RWMutex
	resources      map[string]*resourceData
	globalEvents   []adapters.StoredEvent
	globalPosition uint64
	closed         bool
}

type resourceData struct {
	info   adapters.ResourceInfo
	events []adapters.StoredEvent
}

// NewAdapter creates a new in-memory event store adapter.
func NewAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		resources:    make(map[string]*resourceData),
		globalEvents: make([]adapters.StoredEvent, 0),
	}
}

// Initialize is a no-op for the memory adapter.
func (a *MemoryAdapter) Initialize(_ context.Context) error {
	return nil
}

// Append atomically commits events to the resource's stream, enforcing the
// optimistic concurrency check.
func (a *MemoryAdapter) Append(ctx context.Context, resourceID string, events []adapters.EventRecord, expectedVersion int64) ([]adapters.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, adapters.ErrAdapterClosed
	}

	if resourceID == "" {
		return nil, adapters.ErrEmptyResourceID
	}

	if len(events) == 0 {
		return nil, adapters.ErrNoEvents
	}

	resource, exists := a.resources[resourceID]
	currentVersion := int64(0)
	if exists {
		currentVersion = resource.info.Version
	}

	if err := adapters.CheckVersion(resourceID, expectedVersion, currentVersion); err != nil {
		return nil, err
	}

	now := time.Now()
	if !exists {
		resource = &resourceData{
			info: adapters.ResourceInfo{
				ResourceID: resourceID,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
			events: make([]adapters.StoredEvent, 0),
		}
		a.resources[resourceID] = resource
	}

	storedEvents := make([]adapters.StoredEvent, len(events))
	for i, event := range events {
		a.globalPosition++
		currentVersion++

		stored := adapters.StoredEvent{
			ID:             uuid.New().String(),
			ResourceID:     resourceID,
			Type:           event.Type,
			Data:           event.Data,
			Metadata:       event.Metadata,
			Version:        currentVersion,
			GlobalPosition: a.globalPosition,
			Timestamp:      now,
		}

		resource.events = append(resource.events, stored)
		a.globalEvents = append(a.globalEvents, stored)
		storedEvents[i] = stored
	}

	resource.info.Version = currentVersion
	resource.info.EventCount = int64(len(resource.events))
	resource.info.UpdatedAt = now

	return storedEvents, nil
}

// Load retrieves events for a resource with Version > fromVersion, in
// version order. An unknown resource yields an empty slice.
func (a *MemoryAdapter) Load(ctx context.Context, resourceID string, fromVersion int64) ([]adapters.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, adapters.ErrAdapterClosed
	}

	if resourceID == "" {
		return nil, adapters.ErrEmptyResourceID
	}

	resource, exists := a.resources[resourceID]
	if !exists {
		return []adapters.StoredEvent{}, nil
	}

	events := make([]adapters.StoredEvent, 0, len(resource.events))
	for _, event := range resource.events {
		if event.Version > fromVersion {
			events = append(events, event)
		}
	}

	return events, nil
}

// LoadAll retrieves events across all resources in global insertion order.
func (a *MemoryAdapter) LoadAll(ctx context.Context, fromPosition uint64, limit int) ([]adapters.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, adapters.ErrAdapterClosed
	}

	limit = adapters.DefaultLimit(limit, 1000)

	var events []adapters.StoredEvent
	for _, event := range a.globalEvents {
		if event.GlobalPosition > fromPosition {
			events = append(events, event)
			if len(events) >= limit {
				break
			}
		}
	}

	return events, nil
}

// GetResourceInfo returns metadata about a resource's stream, or nil for a
// resource with no committed events.
func (a *MemoryAdapter) GetResourceInfo(ctx context.Context, resourceID string) (*adapters.ResourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, adapters.ErrAdapterClosed
	}

	resource, exists := a.resources[resourceID]
	if !exists {
		return nil, nil
	}

	info := resource.info
	return &info, nil
}

// GetLastPosition returns the global position of the last committed event.
func (a *MemoryAdapter) GetLastPosition(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return 0, adapters.ErrAdapterClosed
	}

	return a.globalPosition, nil
}

// ListResources returns summaries for up to limit resources, ordered by
// resource ID.
func (a *MemoryAdapter) ListResources(ctx context.Context, limit int) ([]adapters.ResourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, adapters.ErrAdapterClosed
	}

	infos := make([]adapters.ResourceInfo, 0, len(a.resources))
	for _, resource := range a.resources {
		infos = append(infos, resource.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ResourceID < infos[j].ResourceID })

	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}

	return infos, nil
}

// Ping reports whether the adapter is usable.
func (a *MemoryAdapter) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return adapters.ErrAdapterClosed
	}

	return nil
}

// Close marks the adapter as closed. Subsequent operations fail with
// ErrAdapterClosed.
func (a *MemoryAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	return nil
}

// Reset clears all data. Useful for tests.
func (a *MemoryAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resources = make(map[string]*resourceData)
	a.globalEvents = make([]adapters.StoredEvent, 0)
	a.globalPosition = 0
}

// EventCount returns the total number of committed events.
func (a *MemoryAdapter) EventCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.globalEvents)
}

// ResourceCount returns the number of resources with at least one event.
func (a *MemoryAdapter) ResourceCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.resources)
}
