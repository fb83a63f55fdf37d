package datasetreview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PREreview/eventcore"
	"github.com/PREreview/eventcore/adapters/memory"
)

const reviewID = eventcore.ResourceID("review-1")

func TestDecideAnswerQuestion(t *testing.T) {
	answer := func(a Answer) AnswerQuestion {
		return AnswerQuestion{ReviewID: reviewID, AuthorID: "author-a", Question: QuestionHasEnoughMetadata, Answer: a}
	}
	answered := Fold([]any{started(), AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes}})

	tests := []struct {
		name   string
		state  State
		cmd    AnswerQuestion
		events []any
		err    error
	}{
		{
			name:  "not started",
			state: NotStarted{},
			cmd:   answer(AnswerYes),
			err:   NotStartedError{},
		},
		{
			name:   "not answered yet",
			state:  Fold([]any{started()}),
			cmd:    answer(AnswerYes),
			events: []any{AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes}},
		},
		{
			name:  "identical answer is a no-op",
			state: answered,
			cmd:   answer(AnswerYes),
		},
		{
			name:   "different answer supersedes",
			state:  answered,
			cmd:    answer(AnswerPartly),
			events: []any{AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerPartly}},
		},
		{
			name:  "being published",
			state: Fold([]any{started(), AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes}, PublicationWasRequested{}}),
			cmd:   answer(AnswerNo),
			err:   IsBeingPublishedError{},
		},
		{
			name:  "already published",
			state: Fold(append(publishable(), DatasetReviewWasPublished{})),
			cmd:   answer(AnswerNo),
			err:   HasBeenPublishedError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := DecideAnswerQuestion(tt.state, tt.cmd)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.events, events)
		})
	}

	t.Run("another author cannot answer", func(t *testing.T) {
		cmd := answer(AnswerYes)
		cmd.AuthorID = "author-b"

		_, err := DecideAnswerQuestion(Fold([]any{started()}), cmd)
		assert.Equal(t, StartedByAnotherAuthorError{AuthorID: "author-a"}, err)
	})
}

func TestDecideRequestPublication(t *testing.T) {
	cmd := RequestPublication{ReviewID: reviewID, AuthorID: "author-a"}

	t.Run("needs at least one answered question", func(t *testing.T) {
		_, err := DecideRequestPublication(Fold([]any{started()}), cmd)
		assert.Equal(t, NotReadyError{Missing: []string{MissingAnsweredQuestion}}, err)
	})

	t.Run("one answer is enough", func(t *testing.T) {
		state := Fold([]any{started(), AnsweredIfTheDatasetHasTrackedChanges{Answer: AnswerUnsure}})

		events, err := DecideRequestPublication(state, cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{PublicationWasRequested{}}, events)
	})

	t.Run("repeat request is a no-op", func(t *testing.T) {
		state := Fold([]any{started(), AnsweredIfTheDatasetHasTrackedChanges{Answer: AnswerUnsure}, PublicationWasRequested{}})

		events, err := DecideRequestPublication(state, cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestDecideMarkAsPublished(t *testing.T) {
	cmd := MarkAsPublished{ReviewID: reviewID}

	t.Run("enumerates every missing prerequisite", func(t *testing.T) {
		requested := Fold([]any{started(), AnsweredIfTheDatasetFollowsFairAndCarePrinciples{Answer: AnswerYes}, PublicationWasRequested{}})
		_, err := DecideMarkAsPublished(requested, cmd)
		assert.Equal(t, NotReadyError{Missing: []string{MissingAssignedDoi, MissingActiveDoi}}, err)

		inactive := Fold([]any{
			started(),
			AnsweredIfTheDatasetFollowsFairAndCarePrinciples{Answer: AnswerYes},
			PublicationWasRequested{},
			DoiWasAssigned{ID: 42, Doi: "10.5072/zenodo.42"},
		})
		_, err = DecideMarkAsPublished(inactive, cmd)
		assert.Equal(t, NotReadyError{Missing: []string{MissingActiveDoi}}, err)
	})

	t.Run("publishes once the DOI is active", func(t *testing.T) {
		events, err := DecideMarkAsPublished(Fold(publishable()), cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{DatasetReviewWasPublished{}}, events)
	})

	t.Run("publishing twice is a no-op", func(t *testing.T) {
		events, err := DecideMarkAsPublished(Fold(append(publishable(), DatasetReviewWasPublished{})), cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("publication must be requested first", func(t *testing.T) {
		_, err := DecideMarkAsPublished(Fold([]any{started()}), cmd)
		assert.Equal(t, NotReadyError{Missing: []string{MissingPublicationRequest}}, err)
	})
}

func TestDecideMarkDoiAsActivated(t *testing.T) {
	cmd := MarkDoiAsActivated{ReviewID: reviewID}

	t.Run("needs an assigned DOI", func(t *testing.T) {
		state := Fold([]any{started(), AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes}, PublicationWasRequested{}})
		_, err := DecideMarkDoiAsActivated(state, cmd)
		assert.Equal(t, NotReadyError{Missing: []string{MissingAssignedDoi}}, err)
	})

	t.Run("activates once", func(t *testing.T) {
		assigned := Fold([]any{
			started(),
			AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes},
			PublicationWasRequested{},
			DoiWasAssigned{ID: 42, Doi: "10.5072/zenodo.42"},
		})

		events, err := DecideMarkDoiAsActivated(assigned, cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{DoiWasActivated{}}, events)

		events, err = DecideMarkDoiAsActivated(Fold(publishable()), cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestReviewLifecycleThroughBus(t *testing.T) {
	ctx := context.Background()
	store := eventcore.New(memory.NewAdapter())
	bus := eventcore.NewCommandBus(eventcore.WithMiddleware(eventcore.ValidationMiddleware()))
	require.NoError(t, RegisterHandlers(bus, store))

	id := eventcore.NewResourceID()
	commands := []eventcore.Command{
		StartDatasetReview{ReviewID: id, DatasetID: "dataset-1", AuthorID: "author-a"},
		AnswerQuestion{ReviewID: id, AuthorID: "author-a", Question: QuestionFollowsFairAndCarePrinciples, Answer: AnswerYes},
		AnswerQuestion{ReviewID: id, AuthorID: "author-a", Question: QuestionHasEnoughMetadata, Answer: AnswerPartly},
		RequestPublication{ReviewID: id, AuthorID: "author-a"},
		MarkDoiAsAssigned{ReviewID: id, ID: 42, Doi: "10.5072/zenodo.42"},
		MarkDoiAsActivated{ReviewID: id},
		MarkAsPublished{ReviewID: id},
	}
	for _, cmd := range commands {
		_, err := bus.Dispatch(ctx, cmd)
		require.NoError(t, err)
	}

	stream, err := store.GetEvents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stream.LatestVersion)
	assert.IsType(t, HasBeenPublished{}, CurrentState(stream))
	assert.Equal(t, HasAnActiveDoi{ID: 42, Doi: "10.5072/zenodo.42"}, FoldDoi(stream.Payloads()))
}

func TestUnpublishedReviewsByAuthor(t *testing.T) {
	ctx := context.Background()
	store := eventcore.New(memory.NewAdapter())
	require.NoError(t, store.RegisterEvents(Events()...))

	inFlight := eventcore.NewResourceID()
	_, err := store.CommitEvent(ctx, inFlight, 0, DatasetReviewWasStarted{DatasetID: "dataset-1", AuthorID: "author-a"})
	require.NoError(t, err)

	other := eventcore.NewResourceID()
	_, err = store.CommitEvent(ctx, other, 0, DatasetReviewWasStarted{DatasetID: "dataset-1", AuthorID: "author-b"})
	require.NoError(t, err)

	events, err := store.GetAllEvents(ctx)
	require.NoError(t, err)

	result := UnpublishedReviewsByAuthor(events, "author-a")
	require.Len(t, result, 1)
	assert.Contains(t, result, inFlight)
}

func TestUnansweredQuestions(t *testing.T) {
	state := Fold([]any{started(), AnsweredIfTheDatasetHasEnoughMetadata{Answer: AnswerYes}})
	assert.Equal(t, []Question{QuestionFollowsFairAndCarePrinciples, QuestionHasTrackedChanges}, UnansweredQuestions(state))

	assert.Nil(t, UnansweredQuestions(NotStarted{}))
}
