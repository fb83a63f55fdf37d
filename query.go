package eventcore

import "context"

// Projection folds one resource's stream into a read model.
type Projection[R any] func(stream ResourceStream) R

// RunProjection reads a resource's stream and applies the projection to it.
func RunProjection[R any](ctx context.Context, store *EventStore, resourceID ResourceID, project Projection[R]) (R, error) {
	stream, err := store.GetEvents(ctx, resourceID)
	if err != nil {
		var zero R
		return zero, err
	}
	return project(stream), nil
}

// GroupByResource splits a globally ordered event list into per-resource
// streams. Each stream keeps its events in commit order; LatestVersion is
// taken from the last event.
func GroupByResource(events []Event) map[ResourceID]ResourceStream {
	streams := make(map[ResourceID]ResourceStream)
	for _, event := range events {
		stream := streams[event.ResourceID]
		stream.ResourceID = event.ResourceID
		stream.Events = append(stream.Events, event)
		stream.LatestVersion = event.Version
		streams[event.ResourceID] = stream
	}
	return streams
}

// CrossProjection folds events drawn from every resource into one read
// model, for queries that span resources.
type CrossProjection[R any] func(streams map[ResourceID]ResourceStream) R

// RunCrossProjection reads the full global stream, groups it by resource and
// applies the projection.
func RunCrossProjection[R any](ctx context.Context, store *EventStore, project CrossProjection[R]) (R, error) {
	events, err := store.GetAllEvents(ctx)
	if err != nil {
		var zero R
		return zero, err
	}
	return project(GroupByResource(events)), nil
}
