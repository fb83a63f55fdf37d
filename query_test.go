package eventcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByResource(t *testing.T) {
	first := NewResourceID()
	second := NewResourceID()

	events := []Event{
		{ResourceID: first, Version: 1, GlobalPosition: 1, Data: NoteStarted{AuthorID: "a"}},
		{ResourceID: second, Version: 1, GlobalPosition: 2, Data: NoteStarted{AuthorID: "b"}},
		{ResourceID: first, Version: 2, GlobalPosition: 3, Data: NotePublished{}},
	}

	streams := GroupByResource(events)
	require.Len(t, streams, 2)

	assert.Len(t, streams[first].Events, 2)
	assert.Equal(t, int64(2), streams[first].LatestVersion)
	assert.Equal(t, NoteStarted{AuthorID: "a"}, streams[first].Events[0].Data)
	assert.Equal(t, NotePublished{}, streams[first].Events[1].Data)

	assert.Len(t, streams[second].Events, 1)
	assert.Equal(t, int64(1), streams[second].LatestVersion)
}

func TestRunProjection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := startedNote(t, store)

	_, err := store.CommitEvent(ctx, id, 1, NoteTextEntered{Text: "draft"})
	require.NoError(t, err)

	text, err := RunProjection(ctx, store, id, func(stream ResourceStream) string {
		state := foldNote(stream.Payloads())
		return state.Text
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", text)
}

func TestRunCrossProjection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		startedNote(t, store)
	}
	published := startedNote(t, store)
	_, err := store.CommitEvent(ctx, published, 1, NotePublished{})
	require.NoError(t, err)

	unpublished, err := RunCrossProjection(ctx, store, func(streams map[ResourceID]ResourceStream) int {
		count := 0
		for _, stream := range streams {
			state := foldNote(stream.Payloads())
			if state.Started && !state.Published {
				count++
			}
		}
		return count
	})
	require.NoError(t, err)
	assert.Equal(t, 3, unpublished)
}
