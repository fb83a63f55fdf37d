// Package eventcore provides the event-sourced aggregate core used by
// PREreview's stateful resources: an append-only, per-resource event store
// with optimistic concurrency, and the fold/decide machinery that turns an
// event stream into aggregate state and validated commands into new events.
//
// # Quick start
//
// Create an event store with the in-memory adapter for development:
//
//	import (
//	    "github.com/PREreview/eventcore"
//	    "github.com/PREreview/eventcore/adapters/memory"
//	)
//
//	store := eventcore.New(memory.NewAdapter())
//
// For production, use the PostgreSQL adapter:
//
//	import "github.com/PREreview/eventcore/adapters/postgres"
//
//	adapter, err := postgres.NewAdapter(connStr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := eventcore.New(adapter)
//
// # Events and aggregates
//
// Domain events are plain structs registered with the store's serializer;
// each aggregate package (see domain/comment, domain/feedback,
// domain/datasetreview) defines a closed set of events, a pure Fold that
// reduces an ordered event list into a state, and pure Decide functions
// that validate commands against that state.
//
// An Executor wires the three together: it reads a resource's stream,
// folds it, runs the command's decide function, and commits any new events
// at the expected version, retrying the whole read-fold-decide-commit cycle
// a bounded number of times when a concurrent writer wins the version race.
package eventcore
