package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PREreview/eventcore"
)

const commentID = eventcore.ResourceID("comment-1")

func inProgressState(extra ...any) State {
	return Fold(append([]any{started()}, extra...), Policy{})
}

func readyState() State {
	return Fold(append([]any{started()}, completeDraftEvents()...), Policy{})
}

func beingPublishedState(extra ...any) State {
	events := append([]any{started()}, completeDraftEvents()...)
	events = append(events, PublicationWasRequested{})
	return Fold(append(events, extra...), Policy{})
}

func publishedState() State {
	return beingPublishedState(DoiWasAssigned{ID: 101, Doi: "10.5072/zenodo.101"}, CommentWasPublished{})
}

func TestDecideStartComment(t *testing.T) {
	cmd := StartComment{CommentID: commentID, PrereviewID: "prereview-123", AuthorID: "author-a"}

	t.Run("starts a fresh comment", func(t *testing.T) {
		events, err := DecideStartComment(NotStarted{}, cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{CommentWasStarted{PrereviewID: "prereview-123", AuthorID: "author-a"}}, events)
	})

	t.Run("resubmission by the same author is a no-op", func(t *testing.T) {
		events, err := DecideStartComment(inProgressState(), cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("another author cannot start the same comment", func(t *testing.T) {
		other := cmd
		other.AuthorID = "author-b"

		_, err := DecideStartComment(inProgressState(), other)
		assert.Equal(t, AlreadyStartedError{AuthorID: "author-a"}, err)
	})
}

func TestDecideEnterText(t *testing.T) {
	cmd := EnterText{CommentID: commentID, AuthorID: "author-a", Text: "a thoughtful comment"}

	tests := []struct {
		name   string
		state  State
		cmd    EnterText
		events []any
		err    error
	}{
		{
			name:  "not started",
			state: NotStarted{},
			cmd:   cmd,
			err:   NotStartedError{},
		},
		{
			name:   "sets the text",
			state:  inProgressState(),
			cmd:    cmd,
			events: []any{CommentWasEntered{Text: "a thoughtful comment"}},
		},
		{
			name:  "identical text is a no-op",
			state: inProgressState(CommentWasEntered{Text: "a thoughtful comment"}),
			cmd:   cmd,
		},
		{
			name:   "different text supersedes",
			state:  inProgressState(CommentWasEntered{Text: "first draft"}),
			cmd:    cmd,
			events: []any{CommentWasEntered{Text: "a thoughtful comment"}},
		},
		{
			name:  "identical text on a ready comment is a no-op",
			state: readyState(),
			cmd:   cmd,
		},
		{
			name:  "another author is rejected",
			state: inProgressState(),
			cmd:   EnterText{CommentID: commentID, AuthorID: "author-b", Text: "x"},
			err:   StartedByAnotherAuthorError{AuthorID: "author-a"},
		},
		{
			name:  "being published",
			state: beingPublishedState(),
			cmd:   cmd,
			err:   BeingPublishedError{},
		},
		{
			name:  "already published",
			state: publishedState(),
			cmd:   cmd,
			err:   AlreadyPublishedError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := DecideEnterText(tt.state, tt.cmd)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.events, events)
		})
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	// Deciding twice against the same state yields the same outcome, and a
	// state that already reflects the command yields zero events.
	state := inProgressState()
	cmd := ChoosePersona{CommentID: commentID, AuthorID: "author-a", Persona: PersonaPseudonym}

	first, err := DecideChoosePersona(state, cmd)
	require.NoError(t, err)
	second, err := DecideChoosePersona(state, cmd)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	applied := inProgressState(first...)
	events, err := DecideChoosePersona(applied, cmd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecideAgreeToCodeOfConduct(t *testing.T) {
	cmd := AgreeToCodeOfConduct{CommentID: commentID, AuthorID: "author-a"}

	events, err := DecideAgreeToCodeOfConduct(inProgressState(), cmd)
	require.NoError(t, err)
	assert.Equal(t, []any{CodeOfConductWasAgreed{}}, events)

	events, err = DecideAgreeToCodeOfConduct(inProgressState(CodeOfConductWasAgreed{}), cmd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecideRequestPublication(t *testing.T) {
	cmd := RequestPublication{CommentID: commentID, AuthorID: "author-a"}

	t.Run("incomplete comment names every missing prerequisite", func(t *testing.T) {
		_, err := DecideRequestPublication(inProgressState(CommentWasEntered{Text: "text"}), cmd)

		var incomplete IncompleteError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, []string{MissingPersona, MissingCompetingInterests, MissingCodeOfConduct}, incomplete.Missing)
	})

	t.Run("ready comment moves into publishing", func(t *testing.T) {
		events, err := DecideRequestPublication(readyState(), cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{PublicationWasRequested{}}, events)
	})

	t.Run("repeat request while publishing is a no-op", func(t *testing.T) {
		events, err := DecideRequestPublication(beingPublishedState(), cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("published comment rejects the request", func(t *testing.T) {
		_, err := DecideRequestPublication(publishedState(), cmd)
		assert.Equal(t, AlreadyPublishedError{}, err)
	})

	t.Run("another author is rejected", func(t *testing.T) {
		_, err := DecideRequestPublication(readyState(), RequestPublication{CommentID: commentID, AuthorID: "author-b"})
		assert.Equal(t, StartedByAnotherAuthorError{AuthorID: "author-a"}, err)
	})
}

func TestDecideMarkDoiAsAssigned(t *testing.T) {
	cmd := MarkDoiAsAssigned{CommentID: commentID, ID: 101, Doi: "10.5072/zenodo.101"}

	tests := []struct {
		name   string
		state  State
		cmd    MarkDoiAsAssigned
		events []any
		err    error
	}{
		{
			name:  "not started",
			state: NotStarted{},
			cmd:   cmd,
			err:   NotStartedError{},
		},
		{
			name:  "publication not yet requested",
			state: readyState(),
			cmd:   cmd,
			err:   PublicationNotRequestedError{},
		},
		{
			name:   "assigns the DOI",
			state:  beingPublishedState(),
			cmd:    cmd,
			events: []any{DoiWasAssigned{ID: 101, Doi: "10.5072/zenodo.101"}},
		},
		{
			name:  "same DOI again is a no-op",
			state: beingPublishedState(DoiWasAssigned{ID: 101, Doi: "10.5072/zenodo.101"}),
			cmd:   cmd,
		},
		{
			name:  "different DOI is rejected",
			state: beingPublishedState(DoiWasAssigned{ID: 101, Doi: "10.5072/zenodo.101"}),
			cmd:   MarkDoiAsAssigned{CommentID: commentID, ID: 102, Doi: "10.5072/zenodo.102"},
			err:   DoiAlreadyAssignedError{Doi: "10.5072/zenodo.101"},
		},
		{
			name:  "same DOI on a published comment is a no-op",
			state: publishedState(),
			cmd:   cmd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := DecideMarkDoiAsAssigned(tt.state, tt.cmd)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.events, events)
		})
	}
}

func TestDecideMarkAsPublished(t *testing.T) {
	cmd := MarkAsPublished{CommentID: commentID}

	t.Run("needs a DOI first", func(t *testing.T) {
		_, err := DecideMarkAsPublished(beingPublishedState(), cmd)
		assert.Equal(t, DoiNotAssignedError{}, err)
	})

	t.Run("publishes once the DOI is assigned", func(t *testing.T) {
		state := beingPublishedState(DoiWasAssigned{ID: 101, Doi: "10.5072/zenodo.101"})
		events, err := DecideMarkAsPublished(state, cmd)
		require.NoError(t, err)
		assert.Equal(t, []any{CommentWasPublished{}}, events)
	})

	t.Run("publishing twice is a no-op", func(t *testing.T) {
		events, err := DecideMarkAsPublished(publishedState(), cmd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("publication must be requested first", func(t *testing.T) {
		_, err := DecideMarkAsPublished(readyState(), cmd)
		assert.Equal(t, PublicationNotRequestedError{}, err)
	})
}
