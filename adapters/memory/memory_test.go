package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PREreview/eventcore/adapters"
)

func record(eventType string) adapters.EventRecord {
	return adapters.EventRecord{
		Type: eventType,
		Data: []byte(fmt.Sprintf(`{"type":%q}`, eventType)),
	}
}

func TestMemoryAdapter_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with gapless versions starting at 1", func(t *testing.T) {
		adapter := NewAdapter()

		stored, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, int64(1), stored[0].Version)
		assert.NotEmpty(t, stored[0].ID)

		stored, err = adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored[0].Version)
	})

	t.Run("rejects stale expected version and commits nothing", func(t *testing.T) {
		adapter := NewAdapter()

		_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
		require.NoError(t, err)

		_, err = adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, NoHistory)
		assert.ErrorIs(t, err, adapters.ErrResourceHasChanged)

		events, err := adapter.Load(ctx, "comment-1", 0)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("reports expected and actual versions on conflict", func(t *testing.T) {
		adapter := NewAdapter()

		_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
		require.NoError(t, err)

		_, err = adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, 3)

		var changed *adapters.ResourceHasChangedError
		require.True(t, errors.As(err, &changed))
		assert.Equal(t, int64(3), changed.ExpectedVersion)
		assert.Equal(t, int64(1), changed.ActualVersion)
	})

	t.Run("any version skips the check", func(t *testing.T) {
		adapter := NewAdapter()

		_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
		require.NoError(t, err)

		stored, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, AnyVersion)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored[0].Version)
	})

	t.Run("rejects empty resource ID and empty event list", func(t *testing.T) {
		adapter := NewAdapter()

		_, err := adapter.Append(ctx, "", []adapters.EventRecord{record("X")}, NoHistory)
		assert.ErrorIs(t, err, adapters.ErrEmptyResourceID)

		_, err = adapter.Append(ctx, "comment-1", nil, NoHistory)
		assert.ErrorIs(t, err, adapters.ErrNoEvents)
	})
}

func TestMemoryAdapter_ResourceIsolation(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter()

	_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
	require.NoError(t, err)
	_, err = adapter.Append(ctx, "comment-2", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
	require.NoError(t, err)
	_, err = adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, 1)
	require.NoError(t, err)

	first, err := adapter.Load(ctx, "comment-1", 0)
	require.NoError(t, err)
	second, err := adapter.Load(ctx, "comment-2", 0)
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Len(t, second, 1)
	for _, e := range first {
		assert.Equal(t, "comment-1", e.ResourceID)
	}

	// Version counters evolve independently.
	info1, err := adapter.GetResourceInfo(ctx, "comment-1")
	require.NoError(t, err)
	info2, err := adapter.GetResourceInfo(ctx, "comment-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info1.Version)
	assert.Equal(t, int64(1), info2.Version)
}

func TestMemoryAdapter_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter()

	_, err := adapter.Append(ctx, "review-1", []adapters.EventRecord{record("DatasetReviewWasStarted")}, NoHistory)
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = adapter.Append(ctx, "review-1", []adapters.EventRecord{record("PublicationWasRequested")}, 1)
		}(i)
	}
	wg.Wait()

	// Exactly one writer wins the version race.
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, adapters.ErrResourceHasChanged)
		}
	}
	assert.Equal(t, 1, successes)

	events, err := adapter.Load(ctx, "review-1", 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMemoryAdapter_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown resource yields empty slice", func(t *testing.T) {
		adapter := NewAdapter()

		events, err := adapter.Load(ctx, "missing", 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("filters by from version", func(t *testing.T) {
		adapter := NewAdapter()

		for i := 0; i < 4; i++ {
			_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, int64(i))
			require.NoError(t, err)
		}

		events, err := adapter.Load(ctx, "comment-1", 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, int64(3), events[0].Version)
		assert.Equal(t, int64(4), events[1].Version)
	})
}

func TestMemoryAdapter_LoadAll(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter()

	_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
	require.NoError(t, err)
	_, err = adapter.Append(ctx, "comment-2", []adapters.EventRecord{record("CommentWasStarted")}, NoHistory)
	require.NoError(t, err)
	_, err = adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("CommentWasEntered")}, 1)
	require.NoError(t, err)

	events, err := adapter.LoadAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Insertion order, monotonically increasing global positions.
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].GlobalPosition, events[i-1].GlobalPosition)
	}
	assert.Equal(t, "comment-1", events[0].ResourceID)
	assert.Equal(t, "comment-2", events[1].ResourceID)
	assert.Equal(t, "comment-1", events[2].ResourceID)

	t.Run("respects from position and limit", func(t *testing.T) {
		events, err := adapter.LoadAll(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, uint64(2), events[0].GlobalPosition)
	})
}

func TestMemoryAdapter_Close(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter()

	require.NoError(t, adapter.Close())

	_, err := adapter.Append(ctx, "comment-1", []adapters.EventRecord{record("X")}, NoHistory)
	assert.ErrorIs(t, err, adapters.ErrAdapterClosed)

	_, err = adapter.Load(ctx, "comment-1", 0)
	assert.ErrorIs(t, err, adapters.ErrAdapterClosed)

	assert.ErrorIs(t, adapter.Ping(ctx), adapters.ErrAdapterClosed)
}

func TestMemoryAdapter_ListResources(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter()

	for _, id := range []string{"b", "c", "a"} {
		_, err := adapter.Append(ctx, id, []adapters.EventRecord{record("X")}, NoHistory)
		require.NoError(t, err)
	}

	infos, err := adapter.ListResources(ctx, 0)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "a", infos[0].ResourceID)
	assert.Equal(t, "b", infos[1].ResourceID)
	assert.Equal(t, "c", infos[2].ResourceID)

	infos, err = adapter.ListResources(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}
