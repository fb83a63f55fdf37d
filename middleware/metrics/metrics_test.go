package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PREreview/eventcore"
	"github.com/PREreview/eventcore/adapters"
	"github.com/PREreview/eventcore/adapters/memory"
)

var _ adapters.EventStoreAdapter = (*AdapterMiddleware)(nil)

type testCommand struct {
	resourceID eventcore.ResourceID
}

func (c testCommand) CommandType() string              { return "TestCommand" }
func (c testCommand) ResourceID() eventcore.ResourceID { return c.resourceID }
func (c testCommand) Validate() error                  { return nil }

type rejection struct{}

func (rejection) Error() string { return "not allowed" }
func (rejection) DomainError()  {}

func TestNew(t *testing.T) {
	t.Run("creates metrics with defaults", func(t *testing.T) {
		m := New()

		assert.NotNil(t, m)
		assert.Equal(t, "eventcore", m.namespace)
		assert.Equal(t, "unknown", m.serviceName)
	})

	t.Run("with custom options", func(t *testing.T) {
		m := New(WithNamespace("custom"), WithServiceName("prereview"))

		assert.Equal(t, "custom", m.namespace)
		assert.Equal(t, "prereview", m.serviceName)
	})
}

func TestMetrics_Register(t *testing.T) {
	t.Run("registers with custom registry", func(t *testing.T) {
		m := New()
		registry := prometheus.NewRegistry()

		require.NoError(t, m.Register(registry))
	})

	t.Run("returns error on duplicate registration", func(t *testing.T) {
		m := New()
		registry := prometheus.NewRegistry()

		require.NoError(t, m.Register(registry))
		require.Error(t, m.Register(registry))
	})
}

func TestMetrics_CommandMiddleware(t *testing.T) {
	cmd := testCommand{resourceID: eventcore.NewResourceID()}

	t.Run("records successful command", func(t *testing.T) {
		m := New(WithServiceName("test"))

		next := func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			return eventcore.CommandResult{Version: 1, Committed: 1}, nil
		}

		_, err := m.CommandMiddleware()(next)(context.Background(), cmd)
		require.NoError(t, err)

		count := testutil.ToFloat64(m.commandsTotal.WithLabelValues("test", "TestCommand", StatusSuccess))
		assert.Equal(t, float64(1), count)
	})

	t.Run("counts domain rejection separately", func(t *testing.T) {
		m := New(WithServiceName("test"))

		next := func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			return eventcore.CommandResult{}, rejection{}
		}

		_, err := m.CommandMiddleware()(next)(context.Background(), cmd)
		require.Error(t, err)

		rejected := testutil.ToFloat64(m.commandsTotal.WithLabelValues("test", "TestCommand", StatusRejected))
		assert.Equal(t, float64(1), rejected)

		failed := testutil.ToFloat64(m.commandsTotal.WithLabelValues("test", "TestCommand", StatusError))
		assert.Equal(t, float64(0), failed)

		errCount := testutil.ToFloat64(m.errorsTotal.WithLabelValues("test", "domain_rejection"))
		assert.Equal(t, float64(1), errCount)
	})

	t.Run("records infrastructure failure", func(t *testing.T) {
		m := New(WithServiceName("test"))

		next := func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			return eventcore.CommandResult{}, eventcore.NewUnavailableError("append", errors.New("connection refused"))
		}

		_, err := m.CommandMiddleware()(next)(context.Background(), cmd)
		require.Error(t, err)

		failed := testutil.ToFloat64(m.commandsTotal.WithLabelValues("test", "TestCommand", StatusError))
		assert.Equal(t, float64(1), failed)

		errCount := testutil.ToFloat64(m.errorsTotal.WithLabelValues("test", "store_unavailable"))
		assert.Equal(t, float64(1), errCount)
	})

	t.Run("tracks in-flight commands", func(t *testing.T) {
		m := New(WithServiceName("test"))

		var during float64
		next := func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			during = testutil.ToFloat64(m.commandsInFlight.WithLabelValues("test", "TestCommand"))
			return eventcore.CommandResult{}, nil
		}

		_, err := m.CommandMiddleware()(next)(context.Background(), cmd)
		require.NoError(t, err)

		assert.Equal(t, float64(1), during)
		after := testutil.ToFloat64(m.commandsInFlight.WithLabelValues("test", "TestCommand"))
		assert.Equal(t, float64(0), after)
	})
}

func TestMetrics_WrapAdapter(t *testing.T) {
	ctx := context.Background()

	record := func(eventType string) adapters.EventRecord {
		return adapters.EventRecord{Type: eventType, Data: []byte(`{}`)}
	}

	t.Run("counts committed events by type", func(t *testing.T) {
		m := New(WithServiceName("test"))
		adapter := m.WrapAdapter(memory.NewAdapter())

		_, err := adapter.Append(ctx, "resource-1", []adapters.EventRecord{
			record("CommentWasStarted"),
			record("CommentWasEntered"),
			record("CommentWasEntered"),
		}, adapters.NoHistory)
		require.NoError(t, err)

		started := testutil.ToFloat64(m.eventsCommittedTotal.WithLabelValues("test", "CommentWasStarted"))
		assert.Equal(t, float64(1), started)

		entered := testutil.ToFloat64(m.eventsCommittedTotal.WithLabelValues("test", "CommentWasEntered"))
		assert.Equal(t, float64(2), entered)

		ok := testutil.ToFloat64(m.storeOperationsTotal.WithLabelValues("test", OperationAppend, StatusSuccess))
		assert.Equal(t, float64(1), ok)
	})

	t.Run("counts version conflicts", func(t *testing.T) {
		m := New(WithServiceName("test"))
		adapter := m.WrapAdapter(memory.NewAdapter())

		_, err := adapter.Append(ctx, "resource-1", []adapters.EventRecord{record("CommentWasStarted")}, adapters.NoHistory)
		require.NoError(t, err)

		_, err = adapter.Append(ctx, "resource-1", []adapters.EventRecord{record("CommentWasEntered")}, adapters.NoHistory)
		require.ErrorIs(t, err, adapters.ErrResourceHasChanged)

		conflicts := testutil.ToFloat64(m.versionConflictsTotal.WithLabelValues("test"))
		assert.Equal(t, float64(1), conflicts)

		failed := testutil.ToFloat64(m.storeOperationsTotal.WithLabelValues("test", OperationAppend, StatusError))
		assert.Equal(t, float64(0), failed)
	})

	t.Run("counts loaded events", func(t *testing.T) {
		m := New(WithServiceName("test"))
		adapter := m.WrapAdapter(memory.NewAdapter())

		_, err := adapter.Append(ctx, "resource-1", []adapters.EventRecord{
			record("CommentWasStarted"),
			record("CommentWasEntered"),
		}, adapters.NoHistory)
		require.NoError(t, err)

		events, err := adapter.Load(ctx, "resource-1", 0)
		require.NoError(t, err)
		require.Len(t, events, 2)

		loaded := testutil.ToFloat64(m.eventsLoadedTotal.WithLabelValues("test"))
		assert.Equal(t, float64(2), loaded)
	})

	t.Run("works end to end with the store and executor", func(t *testing.T) {
		m := New(WithServiceName("test"))
		store := eventcore.New(m.WrapAdapter(memory.NewAdapter()))
		require.NoError(t, store.RegisterEvents(noteStarted{}))

		decider := eventcore.Decider[bool, testCommand]{
			Fold: func(events []any) bool { return len(events) > 0 },
			Decide: func(started bool, cmd testCommand) ([]any, error) {
				if started {
					return nil, nil
				}
				return []any{noteStarted{}}, nil
			},
		}

		executor := eventcore.NewExecutor(store, decider)
		id := eventcore.NewResourceID()

		_, err := executor.Execute(ctx, testCommand{resourceID: id})
		require.NoError(t, err)

		committed := testutil.ToFloat64(m.eventsCommittedTotal.WithLabelValues("test", "noteStarted"))
		assert.Equal(t, float64(1), committed)
	})
}

type noteStarted struct{}

func TestErrorTypeName(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"domain rejection", rejection{}, "domain_rejection"},
		{"retries exhausted", &eventcore.RetriesExhaustedError{Attempts: 3}, "retries_exhausted"},
		{"resource has changed", adapters.ErrResourceHasChanged, "resource_has_changed"},
		{"store unavailable", eventcore.ErrStoreUnavailable, "store_unavailable"},
		{"unregistered event type", eventcore.ErrEventTypeNotRegistered, "event_type_not_registered"},
		{"empty resource id", adapters.ErrEmptyResourceID, "empty_resource_id"},
		{"unknown", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorTypeName(tt.err))
		})
	}
}
